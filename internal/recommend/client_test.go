package recommend

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yildizm/movierec/internal/logger"
	"go.uber.org/goleak"
)

func testConfig(baseURL string) *Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.RateLimit = 0
	cfg.Breaker.FailureThreshold = 0
	return cfg
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestClient_RequestURL(t *testing.T) {
	client := newTestClient(t, testConfig("http://backend.local:5000"))

	tests := []struct {
		name   string
		userID string
		algo   Algorithm
		want   string
	}{
		{"plain", "42", AlgorithmSVD, "http://backend.local:5000/recommend?algo=SVD&user_id=42"},
		{"space in algorithm", "7", AlgorithmKNNBasic, "http://backend.local:5000/recommend?algo=KNN+Basic&user_id=7"},
		{"reserved characters in user", "a&b=c", AlgorithmSlopeOne, "http://backend.local:5000/recommend?algo=Slope+One&user_id=a%26b%3Dc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.RequestURL(tt.userID, tt.algo); got != tt.want {
				t.Errorf("RequestURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_RecommendIssuesSingleGet(t *testing.T) {
	for _, algo := range Algorithms() {
		t.Run(string(algo), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)

				if r.Method != http.MethodGet {
					t.Errorf("Expected GET, got %s", r.Method)
				}
				if r.URL.Path != RecommendPath {
					t.Errorf("Expected path %s, got %s", RecommendPath, r.URL.Path)
				}
				if got := r.URL.Query().Get("user_id"); got != "42" {
					t.Errorf("Expected user_id 42, got %q", got)
				}
				if got := r.URL.Query().Get("algo"); got != string(algo) {
					t.Errorf("Expected algo %q, got %q", algo, got)
				}
				if strings.Contains(r.URL.RawQuery, " ") {
					t.Errorf("Raw query is not escaped: %q", r.URL.RawQuery)
				}

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			}))
			defer server.Close()

			client := newTestClient(t, testConfig(server.URL))
			if _, err := client.Recommend(context.Background(), "42", algo); err != nil {
				t.Fatalf("Recommend failed: %v", err)
			}

			if n := calls.Load(); n != 1 {
				t.Errorf("Expected exactly 1 request, got %d", n)
			}
		})
	}
}

func TestClient_RecommendPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"movieId": 318, "title": "Shawshank Redemption, The (1994)"},
			{"movieId": 858, "title": "Godfather, The (1972)"},
			{"movieId": 50, "title": "Usual Suspects, The (1995)"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))
	got, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	want := []Movie{
		{MovieID: 318, Title: "Shawshank Redemption, The (1994)"},
		{MovieID: 858, Title: "Godfather, The (1972)"},
		{MovieID: 50, Title: "Usual Suspects, The (1995)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_RecommendEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))
	got, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

func TestClient_RecommendMissingUserID(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))
	_, err := client.Recommend(context.Background(), "", AlgorithmSVD)
	if !errors.Is(err, ErrMissingUserID) {
		t.Errorf("Expected ErrMissingUserID, got %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("Expected no requests, got %d", n)
	}
}

func TestClient_RecommendFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantStatus int
		wantServer string
	}{
		{"server error", http.StatusInternalServerError, `oops`, ErrKindStatus, 500, ""},
		{"unknown algorithm", http.StatusBadRequest, `{"error": "Algorithm 'X' not found."}`, ErrKindStatus, 400, "Algorithm 'X' not found."},
		{"malformed json", http.StatusOK, `[{"movieId": 1,`, ErrKindDecode, 0, ""},
		{"object instead of array", http.StatusOK, `{"movieId": 1, "title": "x"}`, ErrKindDecode, 0, ""},
		{"null body", http.StatusOK, `null`, ErrKindDecode, 0, ""},
		{"empty body", http.StatusOK, ``, ErrKindDecode, 0, ""},
		{"wrong field type", http.StatusOK, `[{"movieId": "one", "title": "x"}]`, ErrKindDecode, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, testConfig(server.URL))
			movies, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
			if err == nil {
				t.Fatalf("Expected error, got movies %v", movies)
			}
			if movies != nil {
				t.Errorf("Expected nil movies on failure, got %v", movies)
			}

			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected *FetchError, got %T", err)
			}
			if fe.Kind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, fe.Kind)
			}
			if fe.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, fe.StatusCode)
			}
			if fe.ServerMessage != tt.wantServer {
				t.Errorf("Expected server message %q, got %q", tt.wantServer, fe.ServerMessage)
			}
		})
	}
}

func TestClient_RecommendNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, testConfig(url))
	_, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
	if KindOf(err) != ErrKindNetwork {
		t.Errorf("Expected network error, got %v", err)
	}
}

func TestClient_RecommendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond

	client := newTestClient(t, cfg)
	_, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
	if KindOf(err) != ErrKindTimeout {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestClient_RecommendCanceledContext(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RateLimit = 1
	cfg.Burst = 1
	client := newTestClient(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Recommend(ctx, "1", AlgorithmSVD)
	if KindOf(err) != ErrKindCanceled {
		t.Errorf("Expected canceled error, got %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("Expected no requests after cancellation, got %d", n)
	}
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Breaker = BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}
	client := newTestClient(t, cfg)

	for i := 0; i < 2; i++ {
		if _, err := client.Recommend(context.Background(), "1", AlgorithmSVD); KindOf(err) != ErrKindStatus {
			t.Fatalf("call %d: expected status error, got %v", i, err)
		}
	}

	if state := client.BreakerState(); state != "open" {
		t.Errorf("Expected breaker open, got %s", state)
	}

	_, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
	if KindOf(err) != ErrKindUnavailable {
		t.Errorf("Expected unavailable error, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("Expected 2 requests to reach the server, got %d", n)
	}
}

func TestClient_BreakerOpensOnTimeouts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 30 * time.Millisecond
	cfg.Breaker = BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}
	client := newTestClient(t, cfg)

	for i := 0; i < 2; i++ {
		if _, err := client.Recommend(context.Background(), "1", AlgorithmSVD); KindOf(err) != ErrKindTimeout {
			t.Fatalf("call %d: expected timeout error, got %v", i, err)
		}
	}

	if state := client.BreakerState(); state != "open" {
		t.Errorf("Expected breaker open after hung requests, got %s", state)
	}

	_, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
	if KindOf(err) != ErrKindUnavailable {
		t.Errorf("Expected unavailable error, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("Expected 2 requests to reach the server, got %d", n)
	}
}

func TestClient_BreakerIgnoresCancellation(t *testing.T) {
	const (
		failing = iota
		hanging
		healthy
	)
	var mode atomic.Int32
	started := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch mode.Load() {
		case failing:
			w.WriteHeader(http.StatusServiceUnavailable)
		case hanging:
			started <- struct{}{}
			<-r.Context().Done()
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Breaker = BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          20 * time.Millisecond,
		FailureThreshold: 1,
	}
	client := newTestClient(t, cfg)

	if _, err := client.Recommend(context.Background(), "1", AlgorithmSVD); KindOf(err) != ErrKindStatus {
		t.Fatalf("Expected status error, got %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if state := client.BreakerState(); state != "half-open" {
		t.Fatalf("Expected half-open breaker, got %s", state)
	}

	// The user abandons the probe request
	mode.Store(hanging)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	if _, err := client.Recommend(ctx, "1", AlgorithmSVD); KindOf(err) != ErrKindCanceled {
		t.Fatalf("Expected canceled error, got %v", err)
	}
	if state := client.BreakerState(); state != "half-open" {
		t.Errorf("Canceled probe changed the breaker to %s", state)
	}

	mode.Store(healthy)
	if _, err := client.Recommend(context.Background(), "1", AlgorithmSVD); err != nil {
		t.Fatalf("Expected recovery, got %v", err)
	}
	if state := client.BreakerState(); state != "closed" {
		t.Errorf("Expected breaker closed after a real success, got %s", state)
	}
}

func TestClient_CanceledRequestIsNotLoggedAsFailure(t *testing.T) {
	started := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-r.Context().Done()
	}))
	defer server.Close()

	var buf bytes.Buffer
	log := logger.NewWithWriter("recommend", logger.VerboseFunc(func() bool { return false }), &buf)
	client, err := NewClient(testConfig(server.URL), WithLogger(log))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	if _, err := client.Recommend(ctx, "1", AlgorithmSVD); KindOf(err) != ErrKindCanceled {
		t.Fatalf("Expected canceled error, got %v", err)
	}

	if strings.Contains(buf.String(), LogMsgFailed) {
		t.Errorf("Abandoned request logged as a failure:\n%s", buf.String())
	}
}

func TestClient_RecommendDecodesEmptyRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{}, null, {"movieId": 3, "title": "Heat (1995)"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))
	movies, err := client.Recommend(context.Background(), "1", AlgorithmSVD)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	// Incomplete records are kept as zero values in server order
	want := []Movie{{}, {}, {MovieID: 3, Title: "Heat (1995)"}}
	if diff := cmp.Diff(want, movies); diff != "" {
		t.Errorf("Movies mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Breaker.FailureThreshold = 1
	client := newTestClient(t, cfg)

	for i := 0; i < 3; i++ {
		_, _ = client.Recommend(context.Background(), "1", AlgorithmSVD)
	}

	if state := client.BreakerState(); state != "closed" {
		t.Errorf("Expected breaker to stay closed on 4xx, got %s", state)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, true},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://host" }, true},
		{"no host", func(c *Config) { c.BaseURL = "http://" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"zero burst with limit", func(c *Config) { c.Burst = 0 }, true},
		{"zero burst without limit", func(c *Config) { c.Burst = 0; c.RateLimit = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_RecommendLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"movieId": 1, "title": "Heat (1995)"}]`))
	}))

	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	client, err := NewClient(testConfig(server.URL), WithHTTPClient(hc))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := client.Recommend(context.Background(), "5", AlgorithmSVD); err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
	}
	server.Close()
}
