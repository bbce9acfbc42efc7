package assistant

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyhub/studyhub/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/genai")
	g.POST("/generate-text", h.GenerateText)
	g.POST("/analyze-criteria", h.AnalyzeCriteria)
	g.POST("/suggest-optimizations", h.SuggestOptimizations)
	g.POST("/process-document", h.ProcessDocument)
	g.POST("/chat", h.Chat)
}

func failed(msg string, err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
}

func (h *Handler) GenerateText(c echo.Context) error {
	var req GenerateRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.GenerateText(c.Request().Context(), req)
	if err != nil {
		return failed("Failed to generate text", err)
	}
	return httpx.OK(c, out, "Text generated successfully")
}

func (h *Handler) AnalyzeCriteria(c echo.Context) error {
	var req AnalyzeRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.AnalyzeCriteria(c.Request().Context(), req)
	if err != nil {
		return failed("Failed to analyze criteria", err)
	}
	return httpx.OK(c, out, "Criteria analyzed successfully")
}

func (h *Handler) SuggestOptimizations(c echo.Context) error {
	var req OptimizeRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.SuggestOptimizations(c.Request().Context(), req)
	if err != nil {
		return failed("Failed to generate optimization suggestions", err)
	}
	return httpx.OK(c, out, "Optimization suggestions generated successfully")
}

func (h *Handler) ProcessDocument(c echo.Context) error {
	var req DocumentRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.ProcessDocument(c.Request().Context(), req)
	if err != nil {
		return failed("Failed to process document", err)
	}
	return httpx.OK(c, out, "Document processed successfully")
}

func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Chat(c.Request().Context(), req)
	if err != nil {
		return failed("Failed to generate chat response", err)
	}
	return httpx.OK(c, out, "Chat response generated successfully")
}
