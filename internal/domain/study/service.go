package study

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/studyhub/internal/domain/activity"
)

// FormCounter reports form totals for a study. The form service satisfies it.
type FormCounter interface {
	CountForms(ctx context.Context, studyID string) (total, completed int, err error)
}

type Service struct {
	repo  Repository
	feed  *activity.Feed
	forms FormCounter
	now   func() time.Time
}

func NewService(repo Repository, feed *activity.Feed) *Service {
	return &Service{repo: repo, feed: feed, now: time.Now}
}

// SetFormCounter attaches the source of per-study form counts.
func (s *Service) SetFormCounter(fc FormCounter) {
	s.forms = fc
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Study, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*Study, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new study. Status always starts as draft and enrollment
// at zero.
func (s *Service) Create(ctx context.Context, req CreateRequest, actorID string) (*Study, error) {
	if req.Criteria.AgeRange.Min > req.Criteria.AgeRange.Max {
		return nil, fmt.Errorf("%w: age range min exceeds max", ErrInvalidInput)
	}
	now := s.now().UTC()
	st := &Study{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		Objectives:       req.Objectives,
		Criteria:         req.Criteria.clone(),
		Status:           StatusDraft,
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
		EnrollmentCount:  0,
		TargetEnrollment: DefaultTargetEnrollment,
	}
	if req.TargetEnrollment != nil {
		st.TargetEnrollment = *req.TargetEnrollment
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create study: %w", err)
	}
	if s.feed != nil {
		s.feed.Record(activity.Item{
			Type:        activity.StudyCreated,
			Description: fmt.Sprintf("New study %q was created", st.Title),
			UserID:      actorID,
			StudyID:     st.ID,
		})
	}
	return st, nil
}

// Update merges the provided fields into the stored study.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Study, error) {
	if req.Criteria != nil && req.Criteria.AgeRange.Min > req.Criteria.AgeRange.Max {
		return nil, fmt.Errorf("%w: age range min exceeds max", ErrInvalidInput)
	}
	return s.repo.Update(ctx, id, func(st *Study) error {
		if req.Title != nil {
			st.Title = *req.Title
		}
		if req.Description != nil {
			st.Description = *req.Description
		}
		if req.Objectives != nil {
			st.Objectives = *req.Objectives
		}
		if req.Criteria != nil {
			st.Criteria = req.Criteria.clone()
		}
		if req.Status != nil {
			st.Status = *req.Status
		}
		if req.TargetEnrollment != nil {
			st.TargetEnrollment = *req.TargetEnrollment
		}
		st.UpdatedAt = s.now().UTC()
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

// AdjustEnrollment adds delta to the enrollment count, never going below zero.
func (s *Service) AdjustEnrollment(ctx context.Context, id string, delta int) (*Study, error) {
	return s.repo.Update(ctx, id, func(st *Study) error {
		st.EnrollmentCount += delta
		if st.EnrollmentCount < 0 {
			st.EnrollmentCount = 0
		}
		st.UpdatedAt = s.now().UTC()
		return nil
	})
}

func (s *Service) Stats(ctx context.Context, id string) (*Stats, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &Stats{
		EnrollmentCount:  st.EnrollmentCount,
		TargetEnrollment: st.TargetEnrollment,
		EnrollmentRate:   st.EnrollmentRate(),
		Status:           st.Status,
		CreatedDate:      st.CreatedAt,
		LastUpdated:      st.UpdatedAt,
	}
	if s.forms != nil {
		total, completed, err := s.forms.CountForms(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("count forms: %w", err)
		}
		out.TotalForms, out.CompletedForms = total, completed
	}
	return out, nil
}

// Dashboard summarizes all studies. The average enrollment rate is rounded
// to one decimal place.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	all, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	d := &Dashboard{TotalStudies: len(all), RecentActivity: []activity.Item{}}
	var rateSum float64
	for _, st := range all {
		if st.Status == StatusActive {
			d.ActiveStudies++
		}
		d.TotalEnrollment += st.EnrollmentCount
		rateSum += st.EnrollmentRate()
	}
	if len(all) > 0 {
		d.AverageEnrollmentRate = math.Round(rateSum/float64(len(all))*10) / 10
	}
	if s.feed != nil {
		d.RecentActivity = s.feed.Recent(10)
	}
	return d, nil
}

// Seed inserts studies as-is, keeping their ids and timestamps.
func (s *Service) Seed(ctx context.Context, studies []Study) error {
	for i := range studies {
		st := studies[i]
		if err := s.repo.Create(ctx, &st); err != nil {
			return fmt.Errorf("seed study %s: %w", st.ID, err)
		}
	}
	return nil
}
