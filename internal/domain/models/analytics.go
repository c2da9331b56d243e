package models

// SentimentBreakdown holds per-label counts and percentages. Percentages are
// computed against Total, rounded to two decimals, and sum to 100 within
// +-0.01 when Total is non-zero.
type SentimentBreakdown struct {
	Counts      map[string]int     `json:"counts"`
	Percentages map[string]float64 `json:"percentages"`
}

// Stats is the headline aggregation over a filtered post set.
type Stats struct {
	Total       int                `json:"total"`
	BySentiment SentimentBreakdown `json:"by_sentiment"`
}

// Granularity of trend buckets.
const (
	GranularityDay  = "day"
	GranularityWeek = "week"
)

// TrendBucket is one time bucket in a trend series. Label is the bucket's
// date (YYYY-MM-DD) for daily buckets or the ISO week label ("2026-w02")
// for weekly ones. Buckets are dense: zero-count buckets are present so
// chart series keep a stable length.
type TrendBucket struct {
	Label    string `json:"label"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
	Total    int    `json:"total"`
}

// TickerRank is one entry in a market-pulse ranking.
type TickerRank struct {
	Symbol   string  `json:"symbol"`
	Company  string  `json:"company,omitempty"`
	Posts    int     `json:"posts"`
	AvgScore float64 `json:"avg_score"`
}

// SectorSentiment aggregates sentiment counts for one sector.
type SectorSentiment struct {
	Sector string         `json:"sector"`
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// MarketPulse is the cross-ticker/sector snapshot over a filtered post set.
// MostPositive and MostNegative exclude tickers with fewer posts than the
// configured minimum sample size.
type MarketPulse struct {
	MostDiscussed []TickerRank       `json:"most_discussed"`
	MostPositive  []TickerRank       `json:"most_positive"`
	MostNegative  []TickerRank       `json:"most_negative"`
	BySector      []SectorSentiment  `json:"by_sector"`
	AvgScore      float64            `json:"avg_score"`
	Distribution  SentimentBreakdown `json:"distribution"`
	TotalPosts    int                `json:"total_posts"`
}

// IndustryHeat is one industry cell of the heatmap.
type IndustryHeat struct {
	Industry    string             `json:"industry"`
	Total       int                `json:"total"`
	BySentiment SentimentBreakdown `json:"by_sentiment"`
}

// TickerComparison holds per-ticker sentiment for a caller-ordered list of
// symbols; entries are returned in the requested order, never re-sorted.
type TickerComparison struct {
	Symbol    string             `json:"symbol"`
	Company   string             `json:"company,omitempty"`
	Total     int                `json:"total"`
	Counts    map[string]int     `json:"counts"`
	AvgScores map[string]float64 `json:"avg_scores"` // mean per-class confidence
}

// CorrelationPoint is one day of the volume/sentiment series.
type CorrelationPoint struct {
	Date         string  `json:"date"`
	Volume       int     `json:"volume"`
	AvgSentiment float64 `json:"avg_sentiment"`
	Positive     int     `json:"positive"`
	Neutral      int     `json:"neutral"`
	Negative     int     `json:"negative"`
}
