package api

import (
	"strconv"

	models "FinStudies/internal/domain/models"
	domrepo "FinStudies/internal/domain/repository"
	"FinStudies/internal/studies"
	xhttp "FinStudies/pkg/http"
	xlogger "FinStudies/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Catalog lists the available studies with their inputs and defaults.
func (h *EchoHandler) Catalog(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, h.studies.Catalog())
}

// Study runs one study. Scalar parameters are read from query keys named
// like the study's defaults (e.g. vfactor, acceleration).
func (h *EchoHandler) Study(c echo.Context) error {
	req := &models.StudyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	def, err := h.studies.Lookup(req.Name)
	if err != nil {
		return xhttp.AppErrorResponse(c, studyError(err))
	}

	sreq, appErr := studyRequest(c, def, req)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}

	table, err := h.studies.Run(c.Request().Context(), req.Name, sreq)
	if err != nil {
		h.logger.Debug("study usecase error", xlogger.String("study", req.Name), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, studyError(err))
	}

	if req.Format == "table" {
		return xhttp.SuccessResponse(c, table.Split())
	}
	return xhttp.SuccessResponse(c, xhttp.TableResponse{
		Columns: append([]string{"date"}, table.Columns()...),
		Rows:    table.Records(),
	})
}

func studyRequest(c echo.Context, def *studies.Definition, req *models.StudyRequest) (studies.Request, *xhttp.AppError) {
	out := studies.Request{
		Symbol:  req.Symbol,
		Range:   req.Range,
		Col:     req.Col,
		HighCol: req.HighCol,
		LowCol:  req.LowCol,
	}

	if !domrepo.IsValidRange(domrepo.Range(req.Range)) {
		appErr := xhttp.BadRequestErrorf("range %q is not supported", req.Range)
		appErr.Field = "range"
		return out, appErr.WithParam("value", req.Range)
	}

	periods, err := studies.ParsePeriods(req.Periods)
	if err != nil {
		return out, xhttp.BadRequestError(err.Error()).WithError(err)
	}
	// "period" is shorthand for a single period on periodic studies and an
	// ordinary scalar on fixed ones.
	if p := c.QueryParam("period"); p != "" && def.Periodic && !periods.IsSet() {
		v, err := strconv.Atoi(p)
		if err != nil {
			return out, badParam("period", p)
		}
		periods = studies.Single(v)
	}
	out.Periods = periods

	for name := range def.Defaults {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return out, badParam(name, raw)
		}
		if out.Params == nil {
			out.Params = make(studies.Params)
		}
		out.Params[name] = v
	}
	return out, nil
}

func badParam(name, raw string) *xhttp.AppError {
	appErr := xhttp.BadRequestErrorf("%s must be numeric", name)
	appErr.Field = name
	return appErr.WithParam("value", raw)
}
