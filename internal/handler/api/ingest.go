package api

import (
	"StockPulse/internal/domain/models"
	"StockPulse/internal/extractor"
	xhttp "StockPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

// AnalyzeResponse is the ad-hoc analysis result: extracted tickers and the
// classified sentiment, nothing persisted.
type AnalyzeResponse struct {
	Tickers   []string              `json:"tickers"`
	Sentiment models.Classification `json:"sentiment"`
}

func (h *Handler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := h.registry.Snapshot()
	tickers := extractor.ExtractWith(snap, req.Text)
	if tickers == nil {
		tickers = []string{}
	}

	cl, err := h.cls.Classify(c.Request().Context(), req.Text)
	if err != nil {
		return h.respondError(c, "analyze", err)
	}
	return xhttp.SuccessResponse(c, &AnalyzeResponse{Tickers: tickers, Sentiment: cl})
}

func (h *Handler) Ingest(c echo.Context) error {
	req := &models.IngestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	window, err := models.ParseFilter(models.FilterParams{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return h.respondError(c, "ingest", err)
	}

	summary, err := h.ingestor.IngestBatch(c.Request().Context(), req.Items, window)
	if err != nil {
		return h.respondError(c, "ingest", err)
	}
	return xhttp.SuccessResponse(c, summary)
}

func (h *Handler) Posts(c echo.Context) error {
	req := &models.PostsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := models.ParseFilter(req.FilterParams)
	if err != nil {
		return h.respondError(c, "posts", err)
	}

	posts, total, err := h.agg.Posts(c.Request().Context(), f, req.Page, req.Limit)
	if err != nil {
		return h.respondError(c, "posts", err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return xhttp.ListResponse(c, posts, int64(total))
}
