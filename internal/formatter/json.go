package formatter

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/yildizm/movierec/internal/recommend"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	UserID      string            `json:"user_id"`
	Algorithm   string            `json:"algorithm"`
	GeneratedAt time.Time         `json:"generated_at"`
	Count       int               `json:"count"`
	Movies      []recommend.Movie `json:"movies"`
}

func (f *jsonFormatter) Format(report *Report) ([]byte, error) {
	movies := report.Movies
	if movies == nil {
		movies = []recommend.Movie{}
	}

	output := &JSONOutput{
		UserID:      report.UserID,
		Algorithm:   report.Algorithm.String(),
		GeneratedAt: report.GeneratedAt,
		Count:       len(movies),
		Movies:      movies,
	}

	return json.MarshalIndent(output, "", "  ")
}
