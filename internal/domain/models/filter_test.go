package models

import (
	"testing"
	"time"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestParseFilterUppercasesTicker(t *testing.T) {
	f, err := ParseFilter(FilterParams{Ticker: " gme "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Ticker != "GME" {
		t.Fatalf("got %q, want GME", f.Ticker)
	}
}

func TestParseFilterRejectsBadSentiment(t *testing.T) {
	_, err := ParseFilter(FilterParams{Sentiment: "bullish"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseFilterRejectsBadDate(t *testing.T) {
	_, err := ParseFilter(FilterParams{StartDate: "01/15/2026"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseFilterRejectsInvertedRange(t *testing.T) {
	_, err := ParseFilter(FilterParams{StartDate: "2026-02-01", EndDate: "2026-01-01"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFilterMatchesConjunction(t *testing.T) {
	p := &Post{
		SourceID:   "p1",
		CreatedAt:  time.Date(2026, 1, 10, 15, 30, 0, 0, time.UTC),
		Sentiment:  &Classification{Label: SentimentPositive, Score: 0.9},
		Tickers:    []string{"AAPL", "MSFT"},
		Industries: []string{"Consumer Electronics", "Software"},
		Sectors:    []string{"Technology"},
	}

	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"empty matches all", Filter{}, true},
		{"ticker hit", Filter{Ticker: "AAPL"}, true},
		{"ticker miss", Filter{Ticker: "TSLA"}, false},
		{"industry any-ticker", Filter{Industry: "Software"}, true},
		{"sector hit", Filter{Sector: "Technology"}, true},
		{"sentiment hit", Filter{Sentiment: SentimentPositive}, true},
		{"sentiment miss", Filter{Sentiment: SentimentNegative}, false},
		{"all criteria", Filter{Ticker: "MSFT", Sector: "Technology", Sentiment: SentimentPositive}, true},
		{"one criterion fails", Filter{Ticker: "MSFT", Sector: "Energy"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Matches(p); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	p := &Post{CreatedAt: time.Date(2026, 1, 10, 23, 59, 0, 0, time.UTC)}

	f := Filter{StartDate: datePtr(2026, 1, 10), EndDate: datePtr(2026, 1, 10)}
	if !f.Matches(p) {
		t.Fatalf("post on the end date must match")
	}

	f = Filter{EndDate: datePtr(2026, 1, 9)}
	if f.Matches(p) {
		t.Fatalf("post after the end date must not match")
	}

	f = Filter{StartDate: datePtr(2026, 1, 11)}
	if f.Matches(p) {
		t.Fatalf("post before the start date must not match")
	}
}

func TestFilterSentimentExcludesUnclassified(t *testing.T) {
	p := &Post{CreatedAt: time.Now(), Sentiment: nil}
	f := Filter{Sentiment: SentimentNeutral}
	if f.Matches(p) {
		t.Fatalf("unclassified post must not match a sentiment filter")
	}
}

func TestFilterCacheKeyStable(t *testing.T) {
	f := Filter{Ticker: "GME", Sentiment: SentimentNegative, StartDate: datePtr(2026, 1, 1)}
	if f.CacheKey() != f.CacheKey() {
		t.Fatalf("cache key must be stable")
	}
	g := Filter{Ticker: "GME", Sentiment: SentimentPositive, StartDate: datePtr(2026, 1, 1)}
	if f.CacheKey() == g.CacheKey() {
		t.Fatalf("different filters must not collide")
	}
}

func TestSignedScore(t *testing.T) {
	pos := Classification{Label: SentimentPositive, Score: 0.8}
	if pos.SignedScore() != 0.8 {
		t.Fatalf("got %v", pos.SignedScore())
	}
	neg := Classification{Label: SentimentNegative, Score: 0.7}
	if neg.SignedScore() != -0.7 {
		t.Fatalf("got %v", neg.SignedScore())
	}
	neu := Classification{Label: SentimentNeutral, Score: 0.9}
	if neu.SignedScore() != 0 {
		t.Fatalf("got %v", neu.SignedScore())
	}
}
