package account

import (
	"context"

	"github.com/studyhub/studyhub/internal/platform/registry"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type MemoryRepo struct {
	store *registry.Store[User]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: registry.New(cloneUser)}
}

func (r *MemoryRepo) Create(_ context.Context, u *User) error {
	return r.store.Insert(u.ID, *u)
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.store.Get(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail matches the stored email exactly.
func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	found := r.store.Filter(func(u User) bool { return u.Email == email })
	if len(found) == 0 {
		return nil, ErrUserNotFound
	}
	return &found[0], nil
}

func (r *MemoryRepo) List(_ context.Context) ([]*User, error) {
	all := r.store.List()
	out := make([]*User, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}
