package patient

import (
	"errors"
	"strconv"

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

// RegisterRoutes mounts the patient routes on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/medical-history", h.MedicalHistory)
	g.POST("/search", h.Search)

	write := auth.Authorize(auth.PermWritePatients)
	g.POST("", h.Create, write)
	g.PUT("/:id", h.Update, write)
	g.DELETE("/:id", h.Delete, write)
}

func (h *Handler) List(c echo.Context) error {
	pg, err := httpx.PageParams(c)
	if err != nil {
		return err
	}
	f := Filter{
		Query:     c.QueryParam("q"),
		Gender:    c.QueryParam("gender"),
		Condition: c.QueryParam("condition"),
	}
	if raw := c.QueryParam("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return httpx.NewValidationError("Query validation failed", "age must be an integer")
		}
		f.Age = &age
	}
	items, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	data, meta := pagination.Paginate(items, pg)
	return httpx.Page(c, data, meta, "Patients retrieved successfully")
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, p, "Patient retrieved successfully")
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return httpx.Created(c, p, "Patient created successfully")
}

func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, p, "Patient updated successfully")
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}
	return httpx.OK(c, nil, "Patient deleted successfully")
}

func (h *Handler) MedicalHistory(c echo.Context) error {
	mh, err := h.svc.MedicalHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, mh, "Medical history retrieved successfully")
}

func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	results, err := h.svc.Search(c.Request().Context(), *req.Criteria)
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, results, "Patient search completed successfully")
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httpx.NotFound("Patient")
	case errors.Is(err, ErrInvalidInput):
		return httpx.NewValidationError("Validation failed", err.Error())
	}
	return err
}
