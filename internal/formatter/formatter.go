package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/movierec/internal/recommend"
)

// Supported output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Report is one completed recommendation request
type Report struct {
	UserID      string
	Algorithm   recommend.Algorithm
	Movies      []recommend.Movie
	GeneratedAt time.Time
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// Formats lists the accepted format names
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatMarkdown, FormatCSV}
}

// New returns the formatter for format; color only affects text output
func New(format string, color bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return NewTerminal(color), nil
	case FormatJSON:
		return NewJSON(), nil
	case FormatMarkdown, "md":
		return NewMarkdown(), nil
	case FormatCSV:
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (must be one of: %s)", format, strings.Join(Formats(), ", "))
	}
}
