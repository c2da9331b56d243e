package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

type IngestRequest struct {
	Items     []RawItem `json:"items" validate:"required,min=1,dive"`
	StartDate string    `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string    `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type PostsRequest struct {
	FilterParams
	Page  int `query:"page" json:"page" default:"1" validate:"gte=1"`
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=200"`
}

type TrendsRequest struct {
	FilterParams
	Days        int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=365"`
	Granularity string `query:"granularity" json:"granularity" default:"day" validate:"oneof=day week"`
}

type ComparisonRequest struct {
	FilterParams
	Tickers string `query:"tickers" json:"tickers" validate:"required"`
}

type CorrelationRequest struct {
	FilterParams
	Days int `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}
