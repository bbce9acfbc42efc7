package patient

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/studyhub/internal/domain/eligibility"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Patient, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Patient, error) {
	if req.Age == nil {
		return nil, fmt.Errorf("%w: age is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	p := &Patient{
		ID:          uuid.NewString(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Age:         *req.Age,
		Gender:      req.Gender,
		Conditions:  nonNil(req.Conditions),
		Medications: nonNil(req.Medications),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Patient, error) {
	return s.repo.Update(ctx, id, func(p *Patient) error {
		if req.FirstName != nil {
			p.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			p.LastName = *req.LastName
		}
		if req.Email != nil {
			p.Email = *req.Email
		}
		if req.Phone != nil {
			p.Phone = *req.Phone
		}
		if req.Address != nil {
			a := *req.Address
			p.Address = &a
		}
		if req.Age != nil {
			p.Age = *req.Age
		}
		if req.Gender != nil {
			p.Gender = *req.Gender
		}
		if req.Conditions != nil {
			p.Conditions = nonNil(*req.Conditions)
		}
		if req.Medications != nil {
			p.Medications = nonNil(*req.Medications)
		}
		if req.LastVisit != nil {
			t := req.LastVisit.UTC()
			p.LastVisit = &t
		}
		p.UpdatedAt = s.now().UTC()
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MedicalHistory(ctx context.Context, id string) (*MedicalHistory, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MedicalHistory{
		Conditions:  p.Conditions,
		Medications: p.Medications,
		LastVisit:   p.LastVisit,
	}, nil
}

// Search scores every patient against ad-hoc criteria and returns those with
// a positive score, best first. Ties keep registry order.
func (s *Service) Search(ctx context.Context, c SearchCriteria) ([]SearchResult, error) {
	rules := c.Rules()
	if rules.AgeMin > rules.AgeMax {
		return nil, fmt.Errorf("%w: age range min exceeds max", ErrInvalidInput)
	}
	all, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(all))
	for _, p := range all {
		res := eligibility.Evaluate(rules, p.Candidate())
		if res.Score <= 0 {
			continue
		}
		out = append(out, SearchResult{Patient: *p, MatchScore: res.Score, MatchReasons: res.Reasons})
	}
	slices.SortStableFunc(out, func(a, b SearchResult) int {
		return b.MatchScore - a.MatchScore
	})
	return out, nil
}

// Seed inserts patients as-is, keeping their ids and timestamps.
func (s *Service) Seed(ctx context.Context, patients []Patient) error {
	for i := range patients {
		p := patients[i].Clone()
		p.Conditions = nonNil(p.Conditions)
		p.Medications = nonNil(p.Medications)
		if err := s.repo.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
	}
	return nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
