package history

import (
	"sort"
	"time"

	"github.com/yildizm/movierec/internal/recommend"
)

// AlgorithmStats aggregates the logged requests for one algorithm
type AlgorithmStats struct {
	Algorithm    string
	Count        int
	SuccessCount int
	ErrorCount   int
	MinTime      time.Duration
	MaxTime      time.Duration
	TotalTime    time.Duration
	timed        int
}

// record adds one outcome; outcomes without a duration only count
func (s *AlgorithmStats) record(o *Outcome) {
	s.Count++
	if o.Success {
		s.SuccessCount++
	} else {
		s.ErrorCount++
	}

	if o.Duration <= 0 {
		return
	}
	if s.timed == 0 || o.Duration < s.MinTime {
		s.MinTime = o.Duration
	}
	if o.Duration > s.MaxTime {
		s.MaxTime = o.Duration
	}
	s.TotalTime += o.Duration
	s.timed++
}

// AvgTime returns the mean duration of the timed requests
func (s *AlgorithmStats) AvgTime() time.Duration {
	if s.timed == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.timed)
}

// SuccessRate returns the share of successful requests in [0, 1]
func (s *AlgorithmStats) SuccessRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.Count)
}

// Summarize groups outcomes by algorithm. Known algorithms come first in
// selector order, anything else follows alphabetically.
func Summarize(outcomes []Outcome) []AlgorithmStats {
	byAlgo := make(map[string]*AlgorithmStats)
	for i := range outcomes {
		name := outcomes[i].Algorithm
		if name == "" {
			name = "unknown"
		}
		stats, ok := byAlgo[name]
		if !ok {
			stats = &AlgorithmStats{Algorithm: name}
			byAlgo[name] = stats
		}
		stats.record(&outcomes[i])
	}

	result := make([]AlgorithmStats, 0, len(byAlgo))
	for _, algo := range recommend.Algorithms() {
		if stats, ok := byAlgo[string(algo)]; ok {
			result = append(result, *stats)
			delete(byAlgo, string(algo))
		}
	}

	rest := make([]string, 0, len(byAlgo))
	for name := range byAlgo {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		result = append(result, *byAlgo[name])
	}
	return result
}
