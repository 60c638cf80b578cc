package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"OptionPilot/internal/domain/models"
	"OptionPilot/internal/usecase"
	xhttp "OptionPilot/pkg/http"
	xlogger "OptionPilot/pkg/logger"
)

// ScreeningHandler serves the options-analytics service.
type ScreeningHandler struct {
	logger   *xlogger.Logger
	screener *usecase.Screener
}

func NewScreeningHandler(logger *xlogger.Logger, screener *usecase.Screener) *ScreeningHandler {
	return &ScreeningHandler{logger: logger, screener: screener}
}

func (h *ScreeningHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/screen", h.Screen)
}

func (h *ScreeningHandler) Screen(c echo.Context) error {
	req := &models.ScreeningRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.screener.Screen(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRiskProfile) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
		}
		h.logger.Error("screen usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.JSONResponse(c, res)
}
