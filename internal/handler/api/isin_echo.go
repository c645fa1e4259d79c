package api

import (
	models "FinStudies/internal/domain/models"
	xhttp "FinStudies/pkg/http"
	xlogger "FinStudies/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IsinLookup maps an ISIN to symbol records.
func (h *EchoHandler) IsinLookup(c echo.Context) error {
	req := &models.IsinRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	records, err := h.isin.Lookup(c.Request().Context(), req.Isin, req.Filter)
	if err != nil {
		h.logger.Error("isin usecase error", xlogger.String("isin", req.Isin), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, isinError(err))
	}

	if req.Format == "table" {
		return xhttp.SuccessResponse(c, models.NewIsinTable(records))
	}
	return xhttp.SuccessResponse(c, records)
}
