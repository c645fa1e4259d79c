package api

import (
	"errors"

	domrepo "FinStudies/internal/domain/repository"
	"FinStudies/internal/service/iex"
	"FinStudies/internal/service/ratelimit"
	"FinStudies/internal/studies"
	"FinStudies/internal/usecase"
	xhttp "FinStudies/pkg/http"
	"FinStudies/pkg/http/middleware"
	xlogger "FinStudies/pkg/logger"

	"github.com/labstack/echo/v4"
)

// EchoHandler serves the studies and reference-data endpoints.
type EchoHandler struct {
	logger  *xlogger.Logger
	studies *usecase.StudiesUseCase
	isin    *usecase.IsinUseCase
	limiter *ratelimit.Limiter
}

// NewEchoHandler wires the API; limiter may be nil to disable rate limiting.
func NewEchoHandler(logger *xlogger.Logger, st *usecase.StudiesUseCase, isin *usecase.IsinUseCase, limiter *ratelimit.Limiter) *EchoHandler {
	return &EchoHandler{logger: logger, studies: st, isin: isin, limiter: limiter}
}

func (h *EchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limiter != nil {
		g.Use(middleware.RateLimit(h.limiter.Allow))
	}
	g.GET("/studies", h.Catalog)
	g.GET("/studies/:name", h.Study)
	g.GET("/ref-data/isin", h.IsinLookup)
}

// studyError maps study and source failures to API errors.
func studyError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, studies.ErrUnknownStudy):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrDataUnavailable):
		return xhttp.NotFoundError("series data unavailable").WithError(err)
	case errors.Is(err, studies.ErrMissingColumn):
		appErr := xhttp.BadRequestError(err.Error()).WithError(err)
		var mc *studies.MissingColumnError
		if errors.As(err, &mc) {
			appErr.Field = "col"
			appErr.WithParam("column", mc.Column)
		}
		return appErr
	case errors.Is(err, studies.ErrPrimitiveFailure):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	default:
		return xhttp.InternalError("study failed").WithError(err)
	}
}

func isinError(err error) *xhttp.AppError {
	if iex.IsNotFound(err) {
		return xhttp.NotFoundError("isin not found").WithError(err)
	}
	return xhttp.BadGatewayError("reference data unavailable").WithError(err)
}

var _ xhttp.Handler = (*EchoHandler)(nil)
