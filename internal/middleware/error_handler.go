package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gymflow/internal/apperrors"
)

// CustomErrorHandler creates a custom error handler for Echo. Service-layer
// errors map onto status codes through the apperrors taxonomy; 4xx failures
// render as "fail", 5xx as "error" with the detail withheld.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	} else {
		code = apperrors.HTTPStatus(err)
		if code != http.StatusInternalServerError {
			message = err.Error()
		}
	}

	status := "fail"
	if code >= http.StatusInternalServerError {
		status = "error"
		if message == "" {
			message = "Something went wrong. Please try again later."
		}
	}
	if message == "" {
		message = http.StatusText(code)
	}

	c.Logger().Error(err)

	if writeErr := c.JSON(code, map[string]string{
		"status":  status,
		"message": message,
	}); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
