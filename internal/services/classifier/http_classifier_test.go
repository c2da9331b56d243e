package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"StockPulse/internal/domain/models"
)

func newTestService(t *testing.T, scores map[string]float64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": scores})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifyArgmax(t *testing.T) {
	srv := newTestService(t, map[string]float64{
		"positive": 0.82, "neutral": 0.10, "negative": 0.08,
	})
	c := New(Config{ServiceURL: srv.URL, ConfidenceThreshold: 0.6, RetryAttempts: 1})

	got, err := c.Classify(context.Background(), "stock is mooning")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Label != models.SentimentPositive || got.Score != 0.82 {
		t.Fatalf("got %+v", got)
	}
	if got.LowConfidence {
		t.Fatalf("0.82 above threshold must not be low confidence")
	}
}

func TestClassifyLowConfidenceKeepsLabel(t *testing.T) {
	srv := newTestService(t, map[string]float64{
		"positive": 0.40, "neutral": 0.35, "negative": 0.25,
	})
	c := New(Config{ServiceURL: srv.URL, ConfidenceThreshold: 0.6, RetryAttempts: 1})

	got, err := c.Classify(context.Background(), "not sure about this one")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Label != models.SentimentPositive {
		t.Fatalf("raw label must be kept, got %q", got.Label)
	}
	if !got.LowConfidence {
		t.Fatalf("0.40 below threshold must be flagged")
	}
}

func TestClassifyBlankTextSkipsService(t *testing.T) {
	// No server at all: blank input must short-circuit.
	c := New(Config{ServiceURL: "http://127.0.0.1:1", RetryAttempts: 1})
	got, err := c.Classify(context.Background(), "   \n\t ")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Label != models.SentimentNeutral {
		t.Fatalf("got %q, want neutral", got.Label)
	}
}

func TestClassifyUnreachableIsDependencyError(t *testing.T) {
	c := New(Config{ServiceURL: "http://127.0.0.1:1", RetryAttempts: 1})
	_, err := c.Classify(context.Background(), "something")
	if !models.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if err = c.Ping(context.Background()); !models.IsDependency(err) {
		t.Fatalf("expected dependency error from ping, got %v", err)
	}
}

func TestClassifyRetriesThenSucceeds(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/classify", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"scores": map[string]float64{
			"positive": 0.1, "neutral": 0.2, "negative": 0.7,
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{ServiceURL: srv.URL, ConfidenceThreshold: 0.6, RetryAttempts: 3})
	got, err := c.Classify(context.Background(), "bankruptcy incoming")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Label != models.SentimentNegative {
		t.Fatalf("got %q", got.Label)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestTruncateHeadAtRuneBoundary(t *testing.T) {
	if got := Truncate("héllo wörld", 5); got != "héllo" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("short", 100); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Fatalf("zero max must disable truncation, got %q", got)
	}
}

func TestFromScoresRejectsMissingLabel(t *testing.T) {
	_, err := FromScores(map[string]float64{"positive": 0.5, "negative": 0.5}, 0.6)
	if !models.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestFromScoresRejectsBadSum(t *testing.T) {
	_, err := FromScores(map[string]float64{
		"positive": 0.5, "neutral": 0.5, "negative": 0.5,
	}, 0.6)
	if !models.IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestFromScoresToleratesRounding(t *testing.T) {
	got, err := FromScores(map[string]float64{
		"positive": 0.3334, "neutral": 0.3333, "negative": 0.3333,
	}, 0.6)
	if err != nil {
		t.Fatalf("sum within tolerance must pass: %v", err)
	}
	if got.Label != models.SentimentPositive {
		t.Fatalf("got %q", got.Label)
	}
}
