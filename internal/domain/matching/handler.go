package matching

import (
	"errors"
	"strconv"

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

// RegisterRoutes mounts the match routes, plus the study-scoped match
// lookup, on an authenticated group.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/studies/:id/matches", h.StudyMatches)

	g := api.Group("/matches")
	g.GET("", h.List)
	g.POST("/studies/:studyId/find", h.Find)
	g.GET("/:id", h.Get)
	g.GET("/:id/history", h.History)
	g.PUT("/:id/status", h.UpdateStatus, auth.Authorize(auth.PermWriteStudies, auth.PermWritePatients))
}

func (h *Handler) StudyMatches(c echo.Context) error {
	matches, err := h.svc.FindMatches(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, matches, "Patient matches retrieved successfully")
}

func (h *Handler) Find(c echo.Context) error {
	matches, err := h.svc.FindMatches(c.Request().Context(), c.Param("studyId"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, matches, "Patient matches found successfully")
}

func (h *Handler) List(c echo.Context) error {
	pg, err := httpx.PageParams(c)
	if err != nil {
		return err
	}
	f := Filter{StudyID: c.QueryParam("studyId"), Status: c.QueryParam("status")}
	if raw := c.QueryParam("minScore"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			return httpx.NewValidationError("Query validation failed", "minScore must be an integer between 0 and 100")
		}
		f.MinScore = n
	}
	items, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	data, meta := pagination.Paginate(items, pg)
	return httpx.Page(c, data, meta, "Matches retrieved successfully")
}

func (h *Handler) Get(c echo.Context) error {
	m, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, m, "Match retrieved successfully")
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req StatusRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	m, err := h.svc.UpdateStatus(ctx, c.Param("id"), req, auth.UserIDFromContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, m, "Match status updated successfully")
}

func (h *Handler) History(c echo.Context) error {
	entries, err := h.svc.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return httpx.OK(c, entries, "Match history retrieved successfully")
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httpx.NotFound("Match")
	case errors.Is(err, study.ErrNotFound):
		return httpx.NotFound("Study")
	}
	return err
}
