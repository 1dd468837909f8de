package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// respondOK writes a success envelope with the given payload.
func respondOK(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// respondMessage writes a success envelope carrying only a message.
func respondMessage(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]interface{}{
		"status":  "success",
		"message": message,
	})
}

func badRequest(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}

func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

func getUintFromContext(c echo.Context, key string) uint {
	val := c.Get(key)
	if val == nil {
		return 0
	}
	uintVal, ok := val.(uint)
	if !ok {
		return 0
	}
	return uintVal
}
