package account

import (
	"slices"
	"time"

	"github.com/studyhub/studyhub/internal/platform/auth"
)

type User struct {
	ID           string    `json:"id" yaml:"id"`
	Email        string    `json:"email" yaml:"email"`
	FirstName    string    `json:"firstName" yaml:"firstName"`
	LastName     string    `json:"lastName" yaml:"lastName"`
	Role         string    `json:"role" yaml:"role"`
	Permissions  []string  `json:"permissions" yaml:"permissions"`
	PasswordHash string    `json:"-" yaml:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"updatedAt"`
}

func cloneUser(u User) User {
	u.Permissions = slices.Clone(u.Permissions)
	return u
}

func (u User) subject() auth.Subject {
	return auth.Subject{ID: u.ID, Email: u.Email, Role: u.Role}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LoginResult struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshResult struct {
	Token string `json:"token"`
}
