package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page     int
	PageSize int
}

// FromContext reads page and pageSize from the query string. Absent values
// take defaults; present but invalid values are an error.
func FromContext(c echo.Context) (Params, error) {
	p := Params{Page: 1, PageSize: DefaultPageSize}

	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, fmt.Errorf("page must be an integer greater than or equal to 1")
		}
		p.Page = n
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageSize {
			return p, fmt.Errorf("pageSize must be an integer between 1 and %d", MaxPageSize)
		}
		p.PageSize = n
	}
	return p, nil
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paginate returns the requested page of items. Pages past the end yield an
// empty, non-nil slice.
func Paginate[T any](items []T, p Params) ([]T, Meta) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}

	total := len(items)
	meta := Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: (total + p.PageSize - 1) / p.PageSize,
	}

	start := (p.Page - 1) * p.PageSize
	if start >= total {
		return []T{}, meta
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}
