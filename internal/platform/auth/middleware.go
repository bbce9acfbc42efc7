package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type contextKey string

const identityKey contextKey = "identity"

// Permission strings carried by identities.
const (
	PermReadStudies   = "read:studies"
	PermWriteStudies  = "write:studies"
	PermReadPatients  = "read:patients"
	PermWritePatients = "write:patients"
	PermAdminAll      = "admin:all"
)

// Roles.
const (
	RoleResearcher = "researcher"
	RoleAdmin      = "admin"
	RoleClinician  = "clinician"
)

// DefaultPermissions is granted to identities whose user id has no known
// permission set.
var DefaultPermissions = []string{PermReadStudies, PermWriteStudies, PermReadPatients}

// Identity is the request-scoped view of the caller, derived from token claims.
type Identity struct {
	UserID      string   `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission reports whether any of perms is held.
func (id Identity) HasPermission(perms ...string) bool {
	for _, want := range perms {
		for _, have := range id.Permissions {
			if have == want {
				return true
			}
		}
	}
	return false
}

// PermissionLookup resolves the permission set of a known user id.
type PermissionLookup func(userID string) ([]string, bool)

// AccessVerifier is satisfied by *Issuer.
type AccessVerifier interface {
	VerifyAccessToken(token string) (*AccessClaims, error)
}

type GateConfig struct {
	Verifier    AccessVerifier
	Permissions PermissionLookup
	Logger      zerolog.Logger
}

// Authenticate verifies the bearer token and attaches an Identity to the
// request context. Requests without a valid token never reach next.
func Authenticate(cfg GateConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token is required")
			}

			claims, err := cfg.Verifier.VerifyAccessToken(tokenStr)
			if err != nil {
				reason := "invalid"
				if errors.Is(err, ErrTokenExpired) {
					reason = "expired"
				}
				cfg.Logger.Warn().
					Str("reason", reason).
					Str("path", c.Request().URL.Path).
					Msg("access token rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			perms := DefaultPermissions
			if cfg.Permissions != nil {
				if p, known := cfg.Permissions(claims.UserID); known {
					perms = p
				}
			}
			id := Identity{
				UserID:      claims.UserID,
				Email:       claims.Email,
				Role:        claims.Role,
				Permissions: append([]string(nil), perms...),
			}

			c.Set("user_id", id.UserID)
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}
