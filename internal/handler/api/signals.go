package api

import (
	"github.com/labstack/echo/v4"

	"OptionPilot/internal/usecase"
	xhttp "OptionPilot/pkg/http"
)

// SignalsHandler serves signal snapshots.
type SignalsHandler struct {
	svc *usecase.SignalsService
}

func NewSignalsHandler(svc *usecase.SignalsService) *SignalsHandler {
	return &SignalsHandler{svc: svc}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/snapshot/:symbol", h.Snapshot)
}

func (h *SignalsHandler) Snapshot(c echo.Context) error {
	symbol := xhttp.PathSymbol(c)
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol is required"))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.JSONResponse(c, h.svc.Snapshot(c.Request().Context(), symbol))
}
