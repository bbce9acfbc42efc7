package patient

import (
	"context"
	"errors"
	"strings"

	"github.com/studyhub/studyhub/internal/platform/registry"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	Update(ctx context.Context, id string, mutate func(*Patient) error) (*Patient, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f Filter) ([]*Patient, error)
}

type MemoryRepo struct {
	store *registry.Store[Patient]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: registry.New(Patient.Clone)}
}

func (r *MemoryRepo) Create(_ context.Context, p *Patient) error {
	return r.store.Insert(p.ID, *p)
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*Patient, error) {
	p, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, mutate func(*Patient) error) (*Patient, error) {
	p, err := r.store.Update(id, mutate)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) (bool, error) {
	return r.store.Delete(id), nil
}

func (r *MemoryRepo) List(_ context.Context, f Filter) ([]*Patient, error) {
	matched := r.store.Filter(f.matches)
	out := make([]*Patient, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}
	return out, nil
}

func (f Filter) matches(p Patient) bool {
	if q := strings.ToLower(f.Query); q != "" {
		if !strings.Contains(strings.ToLower(p.FirstName), q) &&
			!strings.Contains(strings.ToLower(p.LastName), q) &&
			!strings.Contains(strings.ToLower(p.Email), q) {
			return false
		}
	}
	if f.Age != nil && p.Age != *f.Age {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if cond := strings.ToLower(f.Condition); cond != "" {
		found := false
		for _, c := range p.Conditions {
			if strings.Contains(strings.ToLower(c), cond) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
