package models

import (
	"strings"
	"time"

	"StockPulse/pkg/util"
)

// Filter is the canonical predicate shared by ingestion date-scoping and
// every aggregation operation. All fields are optional and single-valued;
// date bounds are inclusive calendar days.
type Filter struct {
	Ticker    string
	Industry  string
	Sector    string
	Sentiment string
	StartDate *time.Time
	EndDate   *time.Time
}

// FilterParams are the raw, loosely-shaped filter inputs as they arrive at
// the boundary (query params, Kafka payloads). ParseFilter validates them
// once; nothing downstream sees unvalidated input.
type FilterParams struct {
	Ticker    string `query:"ticker" json:"ticker"`
	Industry  string `query:"industry" json:"industry"`
	Sector    string `query:"sector" json:"sector"`
	Sentiment string `query:"sentiment" json:"sentiment"`
	StartDate string `query:"start_date" json:"start_date"`
	EndDate   string `query:"end_date" json:"end_date"`
}

// ParseFilter validates raw params into a canonical Filter. Malformed dates
// and unknown sentiment labels yield a ValidationError, never a silent
// default.
func ParseFilter(p FilterParams) (Filter, error) {
	f := Filter{
		Ticker:   strings.ToUpper(strings.TrimSpace(p.Ticker)),
		Industry: strings.TrimSpace(p.Industry),
		Sector:   strings.TrimSpace(p.Sector),
	}

	if s := strings.ToLower(strings.TrimSpace(p.Sentiment)); s != "" {
		if !ValidSentiment(s) {
			return Filter{}, NewValidationError("sentiment", "must be one of positive, neutral, negative")
		}
		f.Sentiment = s
	}

	if p.StartDate != "" {
		t, err := util.ParseDate(p.StartDate)
		if err != nil {
			return Filter{}, NewValidationError("start_date", err.Error())
		}
		f.StartDate = &t
	}
	if p.EndDate != "" {
		t, err := util.ParseDate(p.EndDate)
		if err != nil {
			return Filter{}, NewValidationError("end_date", err.Error())
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return Filter{}, NewValidationError("end_date", "must not precede start_date")
	}

	return f, nil
}

// Matches evaluates the predicate against a post. Industry and sector match
// when any of the post's tickers belongs to them. The same semantics are
// compiled to WHERE clauses by the ClickHouse store.
func (f *Filter) Matches(p *Post) bool {
	if f.Ticker != "" && !p.HasTicker(f.Ticker) {
		return false
	}
	if f.Industry != "" && !containsString(p.Industries, f.Industry) {
		return false
	}
	if f.Sector != "" && !containsString(p.Sectors, f.Sector) {
		return false
	}
	if f.Sentiment != "" {
		if p.Sentiment == nil || p.Sentiment.Label != f.Sentiment {
			return false
		}
	}
	if f.StartDate != nil && p.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil {
		// Inclusive end bound: anything before the next midnight matches.
		if !p.CreatedAt.Before(f.EndDate.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

// CacheKey renders a stable identifier for caching aggregation results.
func (f *Filter) CacheKey() string {
	var b strings.Builder
	b.WriteString(f.Ticker)
	b.WriteByte('|')
	b.WriteString(f.Industry)
	b.WriteByte('|')
	b.WriteString(f.Sector)
	b.WriteByte('|')
	b.WriteString(f.Sentiment)
	b.WriteByte('|')
	if f.StartDate != nil {
		b.WriteString(f.StartDate.Format(util.DateLayout))
	}
	b.WriteByte('|')
	if f.EndDate != nil {
		b.WriteString(f.EndDate.Format(util.DateLayout))
	}
	return b.String()
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
