package account

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/studyhub/studyhub/internal/platform/auth"
	"github.com/studyhub/studyhub/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the auth routes. Only /auth/me sits behind gate.
func (h *Handler) RegisterRoutes(api *echo.Group, gate echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me, gate)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Login(c.Request().Context(), req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return err
	}
	return httpx.OK(c, res, "Login successful")
}

func (h *Handler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.svc.Refresh(c.Request().Context(), req.RefreshToken)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrRefreshRevoked):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	case err != nil:
		return err
	}
	return httpx.OK(c, res, "Token refreshed successfully")
}

func (h *Handler) Logout(c echo.Context) error {
	var req LogoutRequest
	// a malformed body still logs out successfully
	_ = c.Bind(&req)
	h.svc.Logout(c.Request().Context(), req.RefreshToken)
	return httpx.OK(c, nil, "Logged out successfully")
}

func (h *Handler) Me(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return httpx.OK(c, id, "User profile retrieved successfully")
}
