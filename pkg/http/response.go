package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes the envelope with statusCode as both HTTP and body status.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// JSONResponse writes a bare 200 body. Services consume each other's payloads directly.
func JSONResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// HealthOK writes {"status":"ok"}.
func HealthOK(c echo.Context) error {
	return JSONResponse(c, HealthResponse{Status: "ok"})
}

// BadRequestResponse writes a 400 envelope around validation errors.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

// AppErrorResponse writes err in the envelope. Errors that are not an
// *AppError become a generic 500 so internals never leak to callers.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewAppError(CodeInternal, "", "internal error", http.StatusInternalServerError)
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}
