package api

import (
	"strings"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Stats(c echo.Context) error {
	f, err := h.bindFilter(c)
	if err != nil {
		return h.respondError(c, "stats", err)
	}
	res, err := h.agg.Stats(c.Request().Context(), f)
	if err != nil {
		return h.respondError(c, "stats", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) Trends(c echo.Context) error {
	req := &models.TrendsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := models.ParseFilter(req.FilterParams)
	if err != nil {
		return h.respondError(c, "trends", err)
	}

	res, err := h.agg.Trends(c.Request().Context(), f, req.Days, req.Granularity)
	if err != nil {
		return h.respondError(c, "trends", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) MarketPulse(c echo.Context) error {
	f, err := h.bindFilter(c)
	if err != nil {
		return h.respondError(c, "market-pulse", err)
	}
	res, err := h.agg.Pulse(c.Request().Context(), f)
	if err != nil {
		return h.respondError(c, "market-pulse", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) IndustryHeatmap(c echo.Context) error {
	f, err := h.bindFilter(c)
	if err != nil {
		return h.respondError(c, "industry-heatmap", err)
	}
	res, err := h.agg.Heatmap(c.Request().Context(), f)
	if err != nil {
		return h.respondError(c, "industry-heatmap", err)
	}
	if res == nil {
		res = []models.IndustryHeat{}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) SentimentComparison(c echo.Context) error {
	req := &models.ComparisonRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := models.ParseFilter(req.FilterParams)
	if err != nil {
		return h.respondError(c, "sentiment-comparison", err)
	}

	symbols := splitSymbols(req.Tickers)
	if len(symbols) == 0 {
		return h.respondError(c, "sentiment-comparison",
			models.NewValidationError("tickers", "at least one ticker required"))
	}

	res, err := h.agg.Compare(c.Request().Context(), symbols, f)
	if err != nil {
		return h.respondError(c, "sentiment-comparison", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) VolumeSentimentCorrelation(c echo.Context) error {
	req := &models.CorrelationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := models.ParseFilter(req.FilterParams)
	if err != nil {
		return h.respondError(c, "volume-sentiment-correlation", err)
	}

	res, err := h.agg.Correlation(c.Request().Context(), f, req.Days)
	if err != nil {
		return h.respondError(c, "volume-sentiment-correlation", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) bindFilter(c echo.Context) (models.Filter, error) {
	params := models.FilterParams{}
	if err := c.Bind(&params); err != nil {
		return models.Filter{}, models.NewValidationError("", err.Error())
	}
	return models.ParseFilter(params)
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
