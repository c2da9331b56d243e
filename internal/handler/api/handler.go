package api

import (
	domrepo "StockPulse/internal/domain/repository"
	domsvc "StockPulse/internal/domain/service"
	"StockPulse/internal/extractor"
	"StockPulse/internal/usecase"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handler implements the Echo-based HTTP API.
type Handler struct {
	logger   *xlogger.Logger
	ingestor *usecase.Ingestor
	agg      *usecase.Aggregator
	cls      domsvc.Classifier
	registry *extractor.Registry
	store    domrepo.PostStore
}

func NewHandler(
	logger *xlogger.Logger,
	ingestor *usecase.Ingestor,
	agg *usecase.Aggregator,
	cls domsvc.Classifier,
	registry *extractor.Registry,
	store domrepo.PostStore,
) *Handler {
	return &Handler{
		logger:   logger,
		ingestor: ingestor,
		agg:      agg,
		cls:      cls,
		registry: registry,
		store:    store,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/v1")
	g.GET("/health", h.Health)

	g.POST("/analyze", h.Analyze)
	g.POST("/ingest", h.Ingest)
	g.GET("/posts", h.Posts)

	g.GET("/tickers", h.Tickers)
	g.GET("/industries", h.Industries)
	g.GET("/sectors", h.Sectors)

	g.GET("/stats", h.Stats)
	g.GET("/trends", h.Trends)
	g.GET("/market-pulse", h.MarketPulse)
	g.GET("/industry-heatmap", h.IndustryHeatmap)
	g.GET("/sentiment-comparison", h.SentimentComparison)
	g.GET("/volume-sentiment-correlation", h.VolumeSentimentCorrelation)

	g.POST("/admin/reload-registry", h.ReloadRegistry)
}
