package study

import (
	"context"
	"errors"
	"strings"

	"github.com/studyhub/studyhub/internal/platform/registry"
)

type Repository interface {
	Create(ctx context.Context, s *Study) error
	GetByID(ctx context.Context, id string) (*Study, error)
	Update(ctx context.Context, id string, mutate func(*Study) error) (*Study, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f Filter) ([]*Study, error)
}

// MemoryRepo keeps studies in insertion order.
type MemoryRepo struct {
	store *registry.Store[Study]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: registry.New(cloneStudy)}
}

func (r *MemoryRepo) Create(_ context.Context, s *Study) error {
	return r.store.Insert(s.ID, *s)
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*Study, error) {
	s, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, mutate func(*Study) error) (*Study, error) {
	s, err := r.store.Update(id, mutate)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) (bool, error) {
	return r.store.Delete(id), nil
}

func (r *MemoryRepo) List(_ context.Context, f Filter) ([]*Study, error) {
	q := strings.ToLower(f.Query)
	matched := r.store.Filter(func(s Study) bool {
		if q != "" && !strings.Contains(strings.ToLower(s.Title), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) {
			return false
		}
		if f.Status != "" && s.Status != f.Status {
			return false
		}
		if f.CreatedBy != "" && s.CreatedBy != f.CreatedBy {
			return false
		}
		return true
	})
	out := make([]*Study, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}
	return out, nil
}
