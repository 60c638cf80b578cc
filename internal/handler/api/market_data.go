package api

import (
	"github.com/labstack/echo/v4"

	"OptionPilot/internal/usecase"
	xhttp "OptionPilot/pkg/http"
)

// MarketDataHandler serves cached chains and quotes.
type MarketDataHandler struct {
	md *usecase.MarketData
}

func NewMarketDataHandler(md *usecase.MarketData) *MarketDataHandler {
	return &MarketDataHandler{md: md}
}

func (h *MarketDataHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/chains/:symbol", h.Chain)
	e.GET("/quotes/:symbol", h.Quote)
}

func (h *MarketDataHandler) Chain(c echo.Context) error {
	symbol := xhttp.PathSymbol(c)
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol is required"))
	}
	limit := xhttp.QueryIntDefault(c, "limit", 0)
	if limit < 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("limit must be positive").WithParam("limit", limit))
	}
	return xhttp.JSONResponse(c, h.md.Chain(c.Request().Context(), symbol, limit))
}

func (h *MarketDataHandler) Quote(c echo.Context) error {
	symbol := xhttp.PathSymbol(c)
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol is required"))
	}
	return xhttp.JSONResponse(c, h.md.Quote(c.Request().Context(), symbol))
}
