package matching

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyhub/studyhub/internal/domain/activity"
	"github.com/studyhub/studyhub/internal/domain/eligibility"
	"github.com/studyhub/studyhub/internal/domain/patient"
	"github.com/studyhub/studyhub/internal/domain/study"
)

// Studies is the slice of the study service matching needs.
type Studies interface {
	Get(ctx context.Context, id string) (*study.Study, error)
	AdjustEnrollment(ctx context.Context, id string, delta int) (*study.Study, error)
}

// Patients lists the patient registry.
type Patients interface {
	List(ctx context.Context, f patient.Filter) ([]*patient.Patient, error)
}

type Service struct {
	repo     Repository
	studies  Studies
	patients Patients
	feed     *activity.Feed
	metrics  *Metrics
	logger   zerolog.Logger
	now      func() time.Time

	// serializes find runs and status changes so upserts and enrollment
	// adjustments see a consistent registry
	mu sync.Mutex
}

type Option func(*Service)

// WithFeed records find runs and enrollments on the dashboard feed.
func WithFeed(f *activity.Feed) Option {
	return func(s *Service) { s.feed = f }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, studies Studies, patients Patients, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		studies:  studies,
		patients: patients,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type scored struct {
	p   *patient.Patient
	res eligibility.Result
}

// FindMatches scores every patient against the study's criteria and keeps
// those with a positive score, best first. Ties keep patient registry order.
// Results are stored: an existing match for the same patient keeps its id
// and review state, and unreviewed matches for patients that no longer
// qualify are dropped.
func (s *Service) FindMatches(ctx context.Context, studyID string) ([]*Match, error) {
	st, err := s.studies.Get(ctx, studyID)
	if err != nil {
		return nil, err
	}
	all, err := s.patients.List(ctx, patient.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	rules := st.Criteria.Rules()
	ranked := make([]scored, 0, len(all))
	for _, p := range all {
		res := eligibility.Evaluate(rules, p.Candidate())
		if res.Score > 0 {
			ranked = append(ranked, scored{p: p, res: res})
		}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return b.res.Score - a.res.Score
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	kept := make(map[string]bool, len(ranked))
	out := make([]*Match, 0, len(ranked))
	for _, r := range ranked {
		m, err := s.upsert(ctx, studyID, r, now)
		if err != nil {
			return nil, err
		}
		kept[m.ID] = true
		out = append(out, m)
	}

	if err := s.dropStale(ctx, studyID, kept); err != nil {
		return nil, err
	}

	s.metrics.observe(studyID, out)
	s.logger.Debug().Str("study_id", studyID).Int("patients", len(all)).Int("matches", len(out)).Msg("matches found")
	return out, nil
}

func (s *Service) upsert(ctx context.Context, studyID string, r scored, now time.Time) (*Match, error) {
	existing, err := s.repo.FindByStudyPatient(ctx, studyID, r.p.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		m := &Match{
			ID:           uuid.NewString(),
			Patient:      r.p.Clone(),
			StudyID:      studyID,
			MatchScore:   r.res.Score,
			MatchReasons: r.res.Reasons,
			Status:       StatusPotential,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("create match: %w", err)
		}
		s.record(ctx, m, ActionCreated, "", "", "", now)
		return m, nil
	}

	prevScore := existing.MatchScore
	m, err := s.repo.Update(ctx, existing.ID, func(m *Match) error {
		m.Patient = r.p.Clone()
		m.MatchScore = r.res.Score
		m.MatchReasons = r.res.Reasons
		m.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	if prevScore != m.MatchScore {
		s.record(ctx, m, ActionRescored, m.Status, "", "", now)
	}
	return m, nil
}

func (s *Service) dropStale(ctx context.Context, studyID string, kept map[string]bool) error {
	current, err := s.repo.List(ctx, Filter{StudyID: studyID})
	if err != nil {
		return err
	}
	for _, m := range current {
		if kept[m.ID] || m.Status != StatusPotential {
			continue
		}
		if _, err := s.repo.Delete(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, m *Match, action, from, by, notes string, at time.Time) {
	err := s.repo.AppendHistory(ctx, HistoryEntry{
		ID:          uuid.NewString(),
		MatchID:     m.ID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    m.Status,
		Score:       m.MatchScore,
		PerformedBy: by,
		Notes:       notes,
		Timestamp:   at,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("match_id", m.ID).Msg("failed to record match history")
	}
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Match, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*Match, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus records a review decision. Moving a match into enrolled adds
// one to the study's enrollment count; moving it out subtracts one.
func (s *Service) UpdateStatus(ctx context.Context, id string, req StatusRequest, reviewerID string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	var from string
	m, err := s.repo.Update(ctx, id, func(m *Match) error {
		from = m.Status
		m.Status = req.Status
		if req.Notes != nil {
			m.Notes = *req.Notes
		}
		m.ReviewedBy = reviewerID
		m.ReviewedAt = &now
		m.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	delta := 0
	switch {
	case from != StatusEnrolled && m.Status == StatusEnrolled:
		delta = 1
	case from == StatusEnrolled && m.Status != StatusEnrolled:
		delta = -1
	}
	var st *study.Study
	if delta != 0 {
		st, err = s.studies.AdjustEnrollment(ctx, m.StudyID, delta)
		if err != nil && !errors.Is(err, study.ErrNotFound) {
			return nil, fmt.Errorf("adjust enrollment: %w", err)
		}
	}

	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}
	s.record(ctx, m, ActionStatusChanged, from, reviewerID, notes, now)

	if s.feed != nil {
		name := m.Patient.FirstName + " " + m.Patient.LastName
		s.feed.Record(activity.Item{
			Type:        activity.MatchReviewed,
			Description: fmt.Sprintf("Match for %s marked %s", name, m.Status),
			UserID:      reviewerID,
			StudyID:     m.StudyID,
			Timestamp:   now,
		})
		if delta > 0 && st != nil {
			s.feed.Record(activity.Item{
				Type:        activity.PatientEnrolled,
				Description: fmt.Sprintf("Patient enrolled in %q", st.Title),
				UserID:      reviewerID,
				StudyID:     m.StudyID,
				Timestamp:   now,
			})
		}
	}
	return m, nil
}

// History returns the recorded changes of a match, oldest first.
func (s *Service) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}
