package api

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"OptionPilot/internal/domain/models"
	domsvc "OptionPilot/internal/domain/service"
	"OptionPilot/internal/usecase"
	xhttp "OptionPilot/pkg/http"
	xlogger "OptionPilot/pkg/logger"
)

// HeaderUserID carries the caller identity set by the edge proxy.
const HeaderUserID = "X-User-ID"

const anonymousUser = "anonymous"

// GatewayHandler serves the public recommendation endpoint.
type GatewayHandler struct {
	logger  *xlogger.Logger
	gateway *usecase.Gateway
}

func NewGatewayHandler(logger *xlogger.Logger, gateway *usecase.Gateway) *GatewayHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &GatewayHandler{logger: logger, gateway: gateway}
}

func (h *GatewayHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/recommendations", h.Recommend)
}

func (h *GatewayHandler) Recommend(c echo.Context) error {
	req := &models.ScreeningRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
	if userID == "" {
		userID = anonymousUser
	}

	res, err := h.gateway.Recommend(c.Request().Context(), userID, *req)
	if err != nil {
		var ue *domsvc.UpstreamError
		switch {
		case errors.As(err, &ue):
			h.logger.Warn("upstream call failed", xlogger.String("service", ue.Service), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.UpstreamError(ue.Service, err))
		case errors.Is(err, usecase.ErrInvalidRecommendation):
			return xhttp.AppErrorResponse(c, xhttp.UpstreamError("recommendation", err))
		}
		h.logger.Error("gateway usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.JSONResponse(c, res)
}
