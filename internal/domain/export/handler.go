package export

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/studyhub/studyhub/internal/domain/study"
	"github.com/studyhub/studyhub/internal/platform/auth"
	"github.com/studyhub/studyhub/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /export and the per-study match export. Every route
// requires read:studies.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := auth.Authorize(auth.PermReadStudies)
	g := api.Group("/export", read)
	g.GET("/studies/:studyId", h.Study)
	g.POST("/patients", h.Patients)
	g.GET("/forms/:formId/responses", h.FormResponses)
	g.POST("/reports/:studyId", h.Report)

	api.GET("/matches/studies/:studyId/export", h.Matches, read)
}

func format(c echo.Context) (string, error) {
	switch f := c.QueryParam("format"); f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", httpx.NewValidationError("Query validation failed", "format must be one of [json csv]")
	}
}

func boolQuery(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, httpx.NewValidationError("Query validation failed", name+" must be a boolean")
	}
	return v, nil
}

func attachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}

func sendCSV(c echo.Context, filename string, write func(io.Writer) error) error {
	body, err := render(write)
	if err != nil {
		return err
	}
	attachment(c, filename)
	return c.Blob(http.StatusOK, "text/csv", body)
}

func mapError(err error, msg string) error {
	if errors.Is(err, study.ErrNotFound) {
		return httpx.NotFound("Study")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
}

func (h *Handler) Study(c echo.Context) error {
	f, err := format(c)
	if err != nil {
		return err
	}
	var opts StudyOptions
	if opts.IncludePatients, err = boolQuery(c, "includePatients"); err != nil {
		return err
	}
	if opts.IncludeForms, err = boolQuery(c, "includeForms"); err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("studyId")
	out, err := h.svc.Study(ctx, id, opts, auth.UserIDFromContext(ctx), f)
	if err != nil {
		return mapError(err, "Failed to export study data")
	}
	if f == FormatCSV {
		return sendCSV(c, "study-"+id+"-data.csv", func(w io.Writer) error { return StudyCSV(w, out) })
	}
	attachment(c, "study-"+id+"-data.json")
	return httpx.OK(c, out, "Study data exported successfully")
}

func (h *Handler) Patients(c echo.Context) error {
	f, err := format(c)
	if err != nil {
		return err
	}
	var req PatientsRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	out, err := h.svc.Patients(ctx, req.PatientIDs, auth.UserIDFromContext(ctx), f)
	if err != nil {
		return mapError(err, "Failed to export patient data")
	}
	if f == FormatCSV {
		return sendCSV(c, "patient-data.csv", func(w io.Writer) error { return PatientsCSV(w, out.Patients) })
	}
	return httpx.OK(c, out, "Patient data exported successfully")
}

func (h *Handler) FormResponses(c echo.Context) error {
	f, err := format(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("formId")
	out, err := h.svc.FormResponses(ctx, id, auth.UserIDFromContext(ctx), f)
	if err != nil {
		return mapError(err, "Failed to export form responses")
	}
	if f == FormatCSV {
		return sendCSV(c, "form-"+id+"-responses.csv", func(w io.Writer) error { return ResponsesCSV(w, out.Responses) })
	}
	return httpx.OK(c, out, "Form responses exported successfully")
}

func (h *Handler) Report(c echo.Context) error {
	var req ReportRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Report(c.Request().Context(), c.Param("studyId"), req)
	if errors.Is(err, ErrInvalidDateRange) {
		return httpx.NewValidationError("Validation failed", err.Error())
	}
	if err != nil {
		return mapError(err, "Failed to generate report")
	}
	return httpx.OK(c, out, "Report generated successfully")
}

func (h *Handler) Matches(c echo.Context) error {
	f, err := format(c)
	if err != nil {
		return err
	}
	id := c.Param("studyId")
	out, err := h.svc.Matches(c.Request().Context(), id)
	if err != nil {
		return mapError(err, "Failed to export matches")
	}
	if f == FormatCSV {
		return sendCSV(c, "study-"+id+"-matches.csv", func(w io.Writer) error { return MatchesCSV(w, out.Matches) })
	}
	attachment(c, "study-"+id+"-matches.json")
	return httpx.OK(c, out, "Matches exported successfully")
}
