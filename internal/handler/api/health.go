package api

import (
	"net/http"

	xhttp "StockPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

// Health reports readiness of the store and the classifier backend.
// Degraded dependencies are reported per-component with a 503.
func (h *Handler) Health(c echo.Context) error {
	ctx := c.Request().Context()
	components := map[string]string{
		"storage":    "ok",
		"classifier": "ok",
	}
	healthy := true

	if err := h.store.Health(ctx); err != nil {
		components["storage"] = err.Error()
		healthy = false
	}
	if err := h.cls.Ping(ctx); err != nil {
		components["classifier"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return xhttp.DataResponse(c, status, components)
}
