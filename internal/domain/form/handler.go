package form

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/studyhub/studyhub/internal/domain/study"
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

// RegisterRoutes mounts the form routes on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/forms")
	g.GET("", h.List)
	g.POST("/validate-schema", h.ValidateSchema)
	g.GET("/:id", h.Get)
	g.GET("/:id/responses", h.Responses)
	g.POST("/:id/responses", h.Submit)

	write := auth.Authorize(auth.PermWriteStudies)
	g.POST("", h.Create, write)
	g.PUT("/:id", h.Update, write)
	g.DELETE("/:id", h.Delete, write)
}

func (h *Handler) List(c echo.Context) error {
	pg, err := httpx.PageParams(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), Filter{
		StudyID: c.QueryParam("studyId"),
		Type:    c.QueryParam("type"),
		Status:  c.QueryParam("status"),
	})
	if err != nil {
		return err
	}
	data, meta := pagination.Paginate(items, pg)
	return httpx.Page(c, data, meta, "Forms retrieved successfully")
}

func (h *Handler) Get(c echo.Context) error {
	f, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, f, "Form retrieved successfully")
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	f, err := h.svc.Create(ctx, req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return httpx.Created(c, f, "Form created successfully")
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	f, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, f, "Form updated successfully")
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}
	return httpx.OK(c, nil, "Form deleted successfully")
}

func (h *Handler) Responses(c echo.Context) error {
	pg, err := httpx.PageParams(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Responses(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	data, meta := pagination.Paginate(items, pg)
	return httpx.Page(c, data, meta, "Form responses retrieved successfully")
}

func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	r, err := h.svc.Submit(ctx, c.Param("id"), req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return httpx.Created(c, r, "Form response submitted successfully")
}

func (h *Handler) ValidateSchema(c echo.Context) error {
	var req SchemaRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	chk := CheckSchema(req.Fields)
	msg := "Schema is valid"
	if !chk.IsValid {
		msg = "Schema validation failed"
	}
	return httpx.OK(c, chk, msg)
}

func mapError(err error) error {
	var fe *FieldErrors
	switch {
	case errors.Is(err, ErrNotFound):
		return httpx.NotFound("Form")
	case errors.Is(err, study.ErrNotFound):
		return httpx.NotFound("Study")
	case errors.As(err, &fe):
		return httpx.NewValidationError("Validation failed", fe.Fields...)
	}
	return err
}
