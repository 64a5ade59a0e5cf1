package recommend

import (
	"fmt"
	"strings"
)

// Algorithm names a recommendation method known to the server
type Algorithm string

const (
	AlgorithmSVD          Algorithm = "SVD"
	AlgorithmKNNBasic     Algorithm = "KNN Basic"
	AlgorithmKNNItem      Algorithm = "KNN Item"
	AlgorithmSlopeOne     Algorithm = "Slope One"
	AlgorithmBaselineOnly Algorithm = "BaselineOnly"
	AlgorithmCoClustering Algorithm = "CoClustering"
)

// DefaultAlgorithm is selected when nothing else is configured
const DefaultAlgorithm = AlgorithmSVD

var algorithms = []Algorithm{
	AlgorithmSVD,
	AlgorithmKNNBasic,
	AlgorithmKNNItem,
	AlgorithmSlopeOne,
	AlgorithmBaselineOnly,
	AlgorithmCoClustering,
}

// Algorithms returns the selectable algorithms in display order
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithms))
	copy(out, algorithms)
	return out
}

// ParseAlgorithm resolves a label, ignoring case and surrounding space
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.TrimSpace(s)
	for _, a := range algorithms {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be one of: %s)", ErrUnknownAlgorithm, s, algorithmList())
}

// Valid reports whether a is one of the known algorithms
func (a Algorithm) Valid() bool {
	return a.index() >= 0
}

func (a Algorithm) String() string {
	return string(a)
}

// Next returns the following algorithm, wrapping around
func (a Algorithm) Next() Algorithm {
	i := a.index()
	return algorithms[(i+1)%len(algorithms)]
}

// Prev returns the preceding algorithm, wrapping around
func (a Algorithm) Prev() Algorithm {
	i := a.index()
	if i <= 0 {
		return algorithms[len(algorithms)-1]
	}
	return algorithms[i-1]
}

func (a Algorithm) index() int {
	for i, candidate := range algorithms {
		if candidate == a {
			return i
		}
	}
	return -1
}

func algorithmList() string {
	names := make([]string, len(algorithms))
	for i, a := range algorithms {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// Movie is one recommended title
type Movie struct {
	MovieID int64  `json:"movieId" yaml:"movie_id"`
	Title   string `json:"title" yaml:"title"`
}
