package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyhub/studyhub/pkg/pagination"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Success    bool     `json:"success"`
	Data       any      `json:"data,omitempty"`
	Message    string   `json:"message,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Pagination any      `json:"pagination,omitempty"`
	Stack      string   `json:"stack,omitempty"`
}

func OK(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Page writes a list response with its pagination block.
func Page(c echo.Context, data any, pagination any, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination, Message: message})
}

// NotFound builds the 404 error for an entity kind, e.g. "Study not found".
func NotFound(kind string) error {
	return echo.NewHTTPError(http.StatusNotFound, kind+" not found")
}

func BadRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, message)
}

// PageParams reads pagination query parameters, reporting bad values as a
// query validation failure.
func PageParams(c echo.Context) (pagination.Params, error) {
	p, err := pagination.FromContext(c)
	if err != nil {
		return p, NewValidationError("Query validation failed", err.Error())
	}
	return p, nil
}
