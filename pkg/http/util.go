package http

import (
	"github.com/labstack/echo/v4"

	xutil "OptionPilot/pkg/util"
)

// QueryIntDefault reads an integer query parameter or returns def if empty/invalid.
func QueryIntDefault(c echo.Context, name string, def int) int {
	return xutil.ParseIntDefault(c.QueryParam(name), def)
}

// PathSymbol returns the normalized :symbol path parameter.
func PathSymbol(c echo.Context) string {
	return xutil.NormalizeSymbol(c.Param("symbol"))
}
