package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ValidationError carries per-field messages and maps to 400.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

func NewValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// ErrorHandler converts any handler error into the response envelope.
// Internal errors never leak their text; the stack is only attached when
// dev is true.
func ErrorHandler(logger zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		env := Envelope{Success: false, Message: "Internal server error"}

		var ve *ValidationError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ve):
			status = http.StatusBadRequest
			env.Message = ve.Message
			env.Errors = ve.Fields
		case errors.As(err, &he):
			status = he.Code
			switch {
			case he.Code == http.StatusNotFound && he.Message == echo.ErrNotFound.Message:
				env.Message = fmt.Sprintf("Route %s not found", c.Request().URL.Path)
			case he.Code == http.StatusMethodNotAllowed && he.Message == echo.ErrMethodNotAllowed.Message:
				env.Message = fmt.Sprintf("Route %s not found", c.Request().URL.Path)
				status = http.StatusNotFound
			case he.Code >= 500:
				env.Message = messageOf(he.Message, "Internal server error")
				if dev && he.Internal != nil {
					env.Stack = he.Internal.Error()
				}
			default:
				env.Message = messageOf(he.Message, http.StatusText(he.Code))
			}
		default:
			if dev {
				env.Stack = err.Error()
			}
		}

		if status >= 500 {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).Str("request_id", rid).Int("status", status).Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, env)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func messageOf(m any, fallback string) string {
	switch v := m.(type) {
	case string:
		if v != "" {
			return v
		}
	case error:
		return v.Error()
	}
	return fallback
}
