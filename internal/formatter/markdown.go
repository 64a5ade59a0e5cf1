package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/movierec/internal/form"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Movie Recommendations\n\n")
	f.writeSummaryTable(&b, report)

	b.WriteString("## Movies\n\n")
	if len(report.Movies) == 0 {
		b.WriteString("_" + form.MsgEmpty + "_\n")
		return []byte(b.String()), nil
	}

	b.WriteString("| # | Movie ID | Title |\n")
	b.WriteString("|---|----------|-------|\n")
	for i, movie := range report.Movies {
		fmt.Fprintf(&b, "| %d | %d | %s |\n", i+1, movie.MovieID, escapeMarkdown(movie.Title))
	}

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, report *Report) {
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| User ID | %s |\n", escapeMarkdown(report.UserID))
	fmt.Fprintf(b, "| Algorithm | %s |\n", report.Algorithm)
	fmt.Fprintf(b, "| Movies | %d |\n", len(report.Movies))
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(b, "| Generated | %s |\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")
}

// escapeMarkdown keeps table cells on one row
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
