// Package form holds the recommendation form's state and its request
// action, independent of how the form is drawn.
package form

import (
	"context"

	"github.com/yildizm/movierec/internal/recommend"
)

// User-visible messages
const (
	MsgMissingUserID = "Please enter a user ID."
	MsgFetchFailed   = "Failed to fetch recommendations. Please check backend or input."
	MsgEmpty         = "No recommendations yet. Try a different user ID."
)

// Phase is what the result region shows
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseError
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseError:
		return "error"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// Recommender fetches recommendations; *recommend.Client satisfies it
type Recommender interface {
	Recommend(ctx context.Context, userID string, algo recommend.Algorithm) ([]recommend.Movie, error)
}

// Request is one triggered fetch
type Request struct {
	Seq       uint64
	UserID    string
	Algorithm recommend.Algorithm
}

// Result is the outcome of a Request
type Result struct {
	Seq    uint64
	Movies []recommend.Movie
	Err    error
}

// State is the form's four values plus the bookkeeping needed to
// ignore superseded requests.
type State struct {
	UserID    string
	Algorithm recommend.Algorithm

	movies  []recommend.Movie
	errMsg  string
	seq     uint64
	pending bool
}

// New creates a form with an empty identifier and algo selected.
// An invalid algo falls back to recommend.DefaultAlgorithm.
func New(algo recommend.Algorithm) *State {
	if !algo.Valid() {
		algo = recommend.DefaultAlgorithm
	}
	return &State{Algorithm: algo}
}

// Submit triggers the request action. Prior error and results are cleared
// immediately. It returns false, with the validation error set, when the
// identifier is empty; no request must be issued in that case.
func (s *State) Submit() (Request, bool) {
	s.errMsg = ""
	s.movies = nil
	s.seq++

	if s.UserID == "" {
		s.errMsg = MsgMissingUserID
		s.pending = false
		return Request{}, false
	}

	s.pending = true
	return Request{
		Seq:       s.seq,
		UserID:    s.UserID,
		Algorithm: s.Algorithm,
	}, true
}

// Resolve applies a finished request. Results of superseded requests are
// dropped and Resolve reports false.
func (s *State) Resolve(r Result) bool {
	if r.Seq != s.seq || !s.pending {
		return false
	}

	s.pending = false
	if r.Err != nil {
		s.errMsg = MsgFetchFailed
		s.movies = nil
		return true
	}

	s.errMsg = ""
	s.movies = make([]recommend.Movie, len(r.Movies))
	copy(s.movies, r.Movies)
	return true
}

// Phase reports which of the three mutually exclusive regions to show
func (s *State) Phase() Phase {
	switch {
	case s.errMsg != "":
		return PhaseError
	case len(s.movies) > 0:
		return PhaseResults
	default:
		return PhaseEmpty
	}
}

// Movies returns the current results in server order
func (s *State) Movies() []recommend.Movie {
	return s.movies
}

// Err returns the current error message, or ""
func (s *State) Err() string {
	return s.errMsg
}

// Pending reports whether the latest request is still outstanding
func (s *State) Pending() bool {
	return s.pending
}

// Seq returns the sequence number of the latest submission
func (s *State) Seq() uint64 {
	return s.seq
}

// Fetch runs req against r. It is safe to call off the UI goroutine.
func Fetch(ctx context.Context, r Recommender, req Request) Result {
	movies, err := r.Recommend(ctx, req.UserID, req.Algorithm)
	return Result{Seq: req.Seq, Movies: movies, Err: err}
}
