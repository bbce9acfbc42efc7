package form

import (
	"context"
	"errors"

	"github.com/studyhub/studyhub/internal/platform/registry"
)

type Repository interface {
	Create(ctx context.Context, f *Form) error
	GetByID(ctx context.Context, id string) (*Form, error)
	Update(ctx context.Context, id string, mutate func(*Form) error) (*Form, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f Filter) ([]*Form, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, r *Response) error
	ListByForm(ctx context.Context, formID string) ([]*Response, error)
	CountByForm(ctx context.Context, formID string) (int, error)
}

type MemoryRepo struct {
	store *registry.Store[Form]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: registry.New(cloneForm)}
}

func (r *MemoryRepo) Create(_ context.Context, f *Form) error {
	return r.store.Insert(f.ID, *f)
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*Form, error) {
	f, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, mutate func(*Form) error) (*Form, error) {
	f, err := r.store.Update(id, mutate)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) (bool, error) {
	return r.store.Delete(id), nil
}

func (r *MemoryRepo) List(_ context.Context, f Filter) ([]*Form, error) {
	matched := r.store.Filter(f.matches)
	out := make([]*Form, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}
	return out, nil
}

type MemoryResponseRepo struct {
	store *registry.Store[Response]
}

func NewMemoryResponseRepo() *MemoryResponseRepo {
	return &MemoryResponseRepo{store: registry.New(cloneResponse)}
}

func (r *MemoryResponseRepo) Create(_ context.Context, resp *Response) error {
	return r.store.Insert(resp.ID, *resp)
}

func (r *MemoryResponseRepo) ListByForm(_ context.Context, formID string) ([]*Response, error) {
	matched := r.store.Filter(func(resp Response) bool { return resp.FormID == formID })
	out := make([]*Response, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}
	return out, nil
}

func (r *MemoryResponseRepo) CountByForm(_ context.Context, formID string) (int, error) {
	return len(r.store.Filter(func(resp Response) bool { return resp.FormID == formID })), nil
}
