package study

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/studyhub/studyhub/internal/platform/auth"
	"github.com/studyhub/studyhub/internal/platform/httpx"
	"github.com/studyhub/studyhub/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the study routes on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/studies")
	g.GET("", h.List)
	g.GET("/stats", h.Dashboard)
	g.GET("/:id", h.Get)
	g.GET("/:id/stats", h.Stats)

	g.POST("", h.Create, auth.Authorize(auth.PermWriteStudies))
	g.PUT("/:id", h.Update, auth.Authorize(auth.PermWriteStudies))
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin, auth.RoleResearcher))
}

func (h *Handler) List(c echo.Context) error {
	pg, err := httpx.PageParams(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), Filter{
		Query:     c.QueryParam("q"),
		Status:    c.QueryParam("status"),
		CreatedBy: c.QueryParam("createdBy"),
	})
	if err != nil {
		return err
	}
	data, meta := pagination.Paginate(items, pg)
	return httpx.Page(c, data, meta, "Studies retrieved successfully")
}

func (h *Handler) Get(c echo.Context) error {
	st, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, st, "Study retrieved successfully")
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	st, err := h.svc.Create(ctx, req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return httpx.Created(c, st, "Study created successfully")
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	st, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, st, "Study updated successfully")
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}
	return httpx.OK(c, nil, "Study deleted successfully")
}

func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, stats, "Study statistics retrieved successfully")
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, d, "Dashboard statistics retrieved successfully")
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httpx.NotFound("Study")
	case errors.Is(err, ErrInvalidInput):
		return httpx.NewValidationError("Validation failed", err.Error())
	}
	return err
}
