// Package history reads past recommendation requests back out of the
// JSON diagnostic log.
package history

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yildizm/go-logparser"
	"github.com/yildizm/movierec/internal/recommend"
)

// Outcome is one logged recommendation request
type Outcome struct {
	Time      time.Time
	UserID    string
	Algorithm string
	Success   bool
	Count     int
	Kind      string
	Status    int
	Duration  time.Duration
	Error     string
}

// Read parses a log stream and returns the request outcomes it
// contains, oldest first. Lines that are not JSON are skipped.
func Read(r io.Reader) ([]Outcome, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "{") {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	p := logparser.NewWithFormat(logparser.FormatJSON)
	entries, err := p.ParseString(strings.Join(lines, "\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse log: %w", err)
	}

	outcomes := make([]Outcome, 0, len(entries))
	for i := range entries {
		if outcome, ok := fromEntry(&entries[i]); ok {
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes, nil
}

// fromEntry converts a request log entry; other entries report false
func fromEntry(entry *logparser.LogEntry) (Outcome, bool) {
	msg := entry.Message
	if msg == "" {
		msg = stringField(entry.Fields, "message")
	}

	var outcome Outcome
	switch msg {
	case recommend.LogMsgFetched:
		outcome.Success = true
	case recommend.LogMsgFailed:
	default:
		return Outcome{}, false
	}

	outcome.Time = entry.Timestamp
	outcome.UserID = stringField(entry.Fields, "user_id")
	outcome.Algorithm = stringField(entry.Fields, "algo")
	outcome.Count = intField(entry.Fields, "count")
	outcome.Kind = stringField(entry.Fields, "kind")
	outcome.Status = intField(entry.Fields, "status")
	outcome.Error = stringField(entry.Fields, "error")
	// Requests the user abandoned say nothing about the backend
	if outcome.Kind == string(recommend.ErrKindCanceled) {
		return Outcome{}, false
	}
	// zerolog writes durations as float milliseconds
	if ms, ok := numberField(entry.Fields, "duration"); ok {
		outcome.Duration = time.Duration(ms * float64(time.Millisecond))
	}
	return outcome, true
}

// Filter returns the most recent outcomes first, keeping at most limit
// of them. limit <= 0 keeps everything.
func Filter(outcomes []Outcome, failuresOnly bool, limit int) []Outcome {
	filtered := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if failuresOnly && o.Success {
			continue
		}
		filtered = append(filtered, o)
	}

	// Stable on equal timestamps, newest log line first
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Time.After(filtered[j].Time)
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func intField(fields map[string]interface{}, key string) int {
	n, _ := numberField(fields, key)
	return int(n)
}

func numberField(fields map[string]interface{}, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
