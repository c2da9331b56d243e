package api

import (
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Tickers(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.registry.Snapshot().Tickers())
}

func (h *Handler) Industries(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.registry.Snapshot().Industries())
}

func (h *Handler) Sectors(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.registry.Snapshot().Sectors())
}

// ReloadRegistry re-reads the ticker registry files. The previous snapshot
// stays active when the reload fails.
func (h *Handler) ReloadRegistry(c echo.Context) error {
	if err := h.registry.Reload(); err != nil {
		h.logger.Error("registry reload failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("registry reload failed: %v", err))
	}
	snap := h.registry.Snapshot()
	h.logger.Info("registry reloaded", xlogger.Int("tickers", len(snap.Tickers())))
	return xhttp.SuccessResponse(c, map[string]int{"tickers": len(snap.Tickers())})
}
