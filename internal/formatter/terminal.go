package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"
	"github.com/yildizm/movierec/internal/emoji"
	"github.com/yildizm/movierec/internal/form"
)

// terminalFormatter renders recommendations as a tree using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, report)

	if len(report.Movies) == 0 {
		symbol := termfmt.GetEmoji("info", f.opts)
		b.WriteString(symbol + " " + form.MsgEmpty + "\n")
		return []byte(b.String()), nil
	}

	f.writeMovies(&b, report)
	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder, report *Report) {
	symbol := termfmt.GetEmoji("recommendations", f.opts)
	fmt.Fprintf(b, "%s Recommendations for user %s\n", symbol, report.UserID)

	items := []termfmt.TreeItem{
		{Label: "Algorithm", Value: report.Algorithm.String()},
		{Label: "Movies", Value: fmt.Sprintf("%d", len(report.Movies)), Last: true},
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

// writeMovies lists movies in server order
func (f *terminalFormatter) writeMovies(b *strings.Builder, report *Report) {
	items := make([]termfmt.TreeItem, 0, len(report.Movies))
	for i, movie := range report.Movies {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%d. %s", i+1, movie.Title),
			Value: fmt.Sprintf("#%d", movie.MovieID),
			Last:  i == len(report.Movies)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}
