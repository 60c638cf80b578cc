package api

import (
	"github.com/labstack/echo/v4"

	"OptionPilot/internal/domain/models"
	"OptionPilot/internal/usecase"
	xhttp "OptionPilot/pkg/http"
)

// RationaleHandler serves the rationale orchestrator.
type RationaleHandler struct {
	builder *usecase.RationaleBuilder
}

func NewRationaleHandler(builder *usecase.RationaleBuilder) *RationaleHandler {
	return &RationaleHandler{builder: builder}
}

func (h *RationaleHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/rationale", h.Rationale)
}

func (h *RationaleHandler) Rationale(c echo.Context) error {
	req := &models.RationaleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.JSONResponse(c, h.builder.Build(c.Request().Context(), *req))
}
