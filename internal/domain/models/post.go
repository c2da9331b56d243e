package models

import "time"

// Sentiment labels produced by the classifier.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentLabels lists all valid labels in a stable order.
var SentimentLabels = []string{SentimentPositive, SentimentNeutral, SentimentNegative}

// ValidSentiment reports whether s is a known sentiment label.
func ValidSentiment(s string) bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

// RawItem is a post as delivered by an external feed, before analysis.
type RawItem struct {
	SourceID  string    `json:"source_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

// Text returns the combined title+body text used for extraction and
// classification.
func (r *RawItem) Text() string {
	if r.Title == "" {
		return r.Body
	}
	if r.Body == "" {
		return r.Title
	}
	return r.Title + "\n\n" + r.Body
}

// Classification is the output of the sentiment classifier for one text.
// Scores holds one probability per label summing to ~1; Label is the argmax
// class and Score its probability. LowConfidence is set when Score falls
// below the configured threshold; the raw label is kept as-is.
type Classification struct {
	Label         string             `json:"label"`
	Score         float64            `json:"score"`
	Scores        map[string]float64 `json:"scores"`
	LowConfidence bool               `json:"low_confidence,omitempty"`
}

// SignedScore maps the classification onto [-1, 1]: positive contributes
// +score, negative -score, neutral 0.
func (c *Classification) SignedScore() float64 {
	switch c.Label {
	case SentimentPositive:
		return c.Score
	case SentimentNegative:
		return -c.Score
	default:
		return 0
	}
}

// Post is an analyzed, persisted item. Sentiment is nil when classification
// failed for the item; it is never partially populated. Ticker, industry and
// sector links are denormalized onto the post so a single insert commits the
// whole record.
type Post struct {
	SourceID   string          `json:"source_id"`
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	Author     string          `json:"author"`
	Channel    string          `json:"channel"`
	CreatedAt  time.Time       `json:"created_at"`
	URL        string          `json:"url"`
	Sentiment  *Classification `json:"sentiment,omitempty"`
	Tickers    []string        `json:"tickers"`
	Industries []string        `json:"industries"`
	Sectors    []string        `json:"sectors"`
	FetchedAt  time.Time       `json:"fetched_at"`
}

// HasTicker reports whether the post references symbol.
func (p *Post) HasTicker(symbol string) bool {
	for _, t := range p.Tickers {
		if t == symbol {
			return true
		}
	}
	return false
}

// Ticker is exchange-symbol metadata from the registry.
type Ticker struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	Company  string `json:"company" yaml:"company"`
	Sector   string `json:"sector" yaml:"sector"`
	Industry string `json:"industry" yaml:"industry"`
}

// IngestSummary is the outcome of one ingestion batch.
type IngestSummary struct {
	Ingested int `json:"ingested"`
	Skipped  int `json:"skipped"`
	Filtered int `json:"filtered"`
	Failed   int `json:"failed"`
}

// Total returns the number of items accounted for by the summary.
func (s *IngestSummary) Total() int {
	return s.Ingested + s.Skipped + s.Filtered + s.Failed
}
