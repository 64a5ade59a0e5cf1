package formatter

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/yildizm/movierec/internal/form"
	"github.com/yildizm/movierec/internal/recommend"
)

func sampleReport() *Report {
	return &Report{
		UserID:    "42",
		Algorithm: recommend.AlgorithmKNNItem,
		Movies: []recommend.Movie{
			{MovieID: 318, Title: "Shawshank Redemption, The (1994)"},
			{MovieID: 858, Title: "Godfather, The (1972)"},
			{MovieID: 50, Title: "Usual Suspects, The (1995)"},
		},
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	for _, format := range append(Formats(), "", "md", "JSON") {
		if _, err := New(format, false); err != nil {
			t.Errorf("New(%q) failed: %v", format, err)
		}
	}

	if _, err := New("xml", false); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTerminalFormatter(t *testing.T) {
	out, err := NewTerminal(false).Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{"Recommendations for user 42", "KNN Item", "Godfather, The (1972)", "#858"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, output)
		}
	}

	// Server order is preserved
	first := strings.Index(output, "Shawshank")
	second := strings.Index(output, "Godfather")
	third := strings.Index(output, "Usual Suspects")
	if first > second || second > third {
		t.Errorf("Movies out of order:\n%s", output)
	}
}

func TestTerminalFormatterEmpty(t *testing.T) {
	report := sampleReport()
	report.Movies = nil

	out, err := NewTerminal(false).Format(report)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(string(out), form.MsgEmpty) {
		t.Errorf("Expected empty message, got:\n%s", out)
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSON().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var got JSONOutput
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if got.UserID != "42" || got.Algorithm != "KNN Item" || got.Count != 3 {
		t.Errorf("Unexpected summary: %+v", got)
	}
	if diff := cmp.Diff(sampleReport().Movies, got.Movies); diff != "" {
		t.Errorf("Movies mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(out), `"movieId": 318`) {
		t.Errorf("Expected backend field names in output:\n%s", out)
	}
}

func TestJSONFormatterEmptyIsArray(t *testing.T) {
	report := sampleReport()
	report.Movies = nil

	out, err := NewJSON().Format(report)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(string(out), `"movies": []`) {
		t.Errorf("Expected empty movies array, got:\n%s", out)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	report := sampleReport()
	report.Movies = append(report.Movies, recommend.Movie{MovieID: 7, Title: "Pipe | Dream"})

	out, err := NewMarkdown().Format(report)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	if !strings.HasPrefix(output, "# Movie Recommendations") {
		t.Errorf("Missing title:\n%s", output)
	}
	if !strings.Contains(output, "| 2 | 858 | Godfather, The (1972) |") {
		t.Errorf("Missing movie row:\n%s", output)
	}
	if !strings.Contains(output, `Pipe \| Dream`) {
		t.Errorf("Expected pipe to be escaped:\n%s", output)
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := NewCSV().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(records))
	}

	want := []string{"1", "318", "Shawshank Redemption, The (1994)", "42", "KNN Item"}
	if diff := cmp.Diff(want, records[1]); diff != "" {
		t.Errorf("First row mismatch (-want +got):\n%s", diff)
	}
}
