package api

import (
	"errors"
	"net/http"

	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// respondError maps domain errors to HTTP responses. Validation failures are
// the caller's fault, missing entities are 404, unavailable dependencies are
// 503, and everything else is an opaque 500.
func (h *Handler) respondError(c echo.Context, op string, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_VALIDATION",
			Field:   verr.Field,
			Message: verr.Message,
		}})
	}

	var nferr *models.NotFoundError
	if errors.As(err, &nferr) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("%s %q not found", nferr.Entity, nferr.Key))
	}

	var derr *models.DependencyError
	if errors.As(err, &derr) {
		h.logger.Error(op+" dependency error",
			xlogger.String("dependency", derr.Dependency),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"ERR_DEPENDENCY_UNAVAILABLE", "",
			derr.Dependency+" unavailable",
			http.StatusServiceUnavailable,
		).WithError(err))
	}

	h.logger.Error(op+" error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
