package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/studyhub/studyhub/internal/platform/auth"
)

// Tokens is satisfied by *auth.Issuer.
type Tokens interface {
	IssueAccessToken(s auth.Subject) (string, error)
	IssueRefreshToken(userID string) (string, error)
	VerifyRefreshToken(token string) (*auth.RefreshClaims, error)
}

type Service struct {
	users   Repository
	tokens  Tokens
	refresh auth.RefreshStore
	logger  zerolog.Logger
}

func NewService(users Repository, tokens Tokens, refresh auth.RefreshStore, logger zerolog.Logger) *Service {
	return &Service{users: users, tokens: tokens, refresh: refresh, logger: logger}
}

// dummyHash is compared against when the email is unknown so both failure
// paths cost a bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("studyhub-dummy-password"), bcrypt.MinCost)

// Authenticate checks an email/password pair. Unknown email and wrong
// password both yield auth.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and issues a token pair. The refresh token replaces
// any earlier one stored for the user.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccessToken(u.subject())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.refresh.Store(ctx, u.ID, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	s.logger.Info().Str("user_id", u.ID).Msg("user logged in")
	return &LoginResult{User: *u, Token: access, RefreshToken: refresh}, nil
}

// Refresh exchanges the current refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, token string) (*RefreshResult, error) {
	claims, err := s.tokens.VerifyRefreshToken(token)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckRefresh(ctx, s.refresh, claims.UserID, token); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccessToken(u.subject())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &RefreshResult{Token: access}, nil
}

// Logout drops the stored refresh token when the presented one is valid
// and current. It never fails from the caller's point of view.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	claims, err := s.tokens.VerifyRefreshToken(token)
	if err != nil {
		return
	}
	if err := auth.CheckRefresh(ctx, s.refresh, claims.UserID, token); err != nil {
		return
	}
	if err := s.refresh.Remove(ctx, claims.UserID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("failed to remove refresh token")
	}
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.users.List(ctx)
}

// PermissionsFor resolves a known user's permission set for the
// authorization gate.
func (s *Service) PermissionsFor(userID string) ([]string, bool) {
	u, err := s.users.GetByID(context.Background(), userID)
	if err != nil {
		return nil, false
	}
	return u.Permissions, true
}

// Seed inserts users as-is. Every user must carry a bcrypt hash.
func (s *Service) Seed(ctx context.Context, users []User) error {
	for i := range users {
		u := cloneUser(users[i])
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return fmt.Errorf("seed user %s: password hash: %w", u.ID, err)
		}
		if err := s.users.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	return nil
}
