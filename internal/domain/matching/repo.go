package matching

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/studyhub/studyhub/internal/platform/registry"
)

type Repository interface {
	Create(ctx context.Context, m *Match) error
	GetByID(ctx context.Context, id string) (*Match, error)
	FindByStudyPatient(ctx context.Context, studyID, patientID string) (*Match, error)
	Update(ctx context.Context, id string, mutate func(*Match) error) (*Match, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f Filter) ([]*Match, error)

	AppendHistory(ctx context.Context, e HistoryEntry) error
	History(ctx context.Context, matchID string) ([]HistoryEntry, error)
}

type MemoryRepo struct {
	store *registry.Store[Match]

	mu      sync.RWMutex
	history map[string][]HistoryEntry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store:   registry.New(cloneMatch),
		history: make(map[string][]HistoryEntry),
	}
}

func (r *MemoryRepo) Create(_ context.Context, m *Match) error {
	return r.store.Insert(m.ID, *m)
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*Match, error) {
	m, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *MemoryRepo) FindByStudyPatient(_ context.Context, studyID, patientID string) (*Match, error) {
	found := r.store.Filter(func(m Match) bool {
		return m.StudyID == studyID && m.Patient.ID == patientID
	})
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, mutate func(*Match) error) (*Match, error) {
	m, err := r.store.Update(id, mutate)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) (bool, error) {
	return r.store.Delete(id), nil
}

func (r *MemoryRepo) List(_ context.Context, f Filter) ([]*Match, error) {
	matched := r.store.Filter(f.matches)
	out := make([]*Match, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}
	return out, nil
}

func (r *MemoryRepo) AppendHistory(_ context.Context, e HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[e.MatchID] = append(r.history[e.MatchID], e)
	return nil
}

// History returns entries oldest first.
func (r *MemoryRepo) History(_ context.Context, matchID string) ([]HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.history[matchID]), nil
}
