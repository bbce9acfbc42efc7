package form

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/studyhub/internal/domain/activity"
	"github.com/studyhub/studyhub/internal/domain/study"
)

// Studies resolves the study a form belongs to.
type Studies interface {
	Get(ctx context.Context, id string) (*study.Study, error)
}

type Service struct {
	forms     Repository
	responses ResponseRepository
	studies   Studies
	feed      *activity.Feed
	now       func() time.Time
}

func NewService(forms Repository, responses ResponseRepository, studies Studies, feed *activity.Feed) *Service {
	return &Service{forms: forms, responses: responses, studies: studies, feed: feed, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Form, error) {
	return s.forms.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*Form, error) {
	return s.forms.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest, actorID string) (*Form, error) {
	if _, err := s.studies.Get(ctx, req.StudyID); err != nil {
		return nil, err
	}
	if chk := CheckSchema(req.Fields); !chk.IsValid {
		return nil, &FieldErrors{Kind: ErrInvalidSchema, Fields: chk.Errors}
	}
	now := s.now().UTC()
	f := &Form{
		ID:          uuid.NewString(),
		StudyID:     req.StudyID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Fields:      cloneFields(req.Fields),
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if f.Status == "" {
		f.Status = StatusDraft
	}
	if err := s.forms.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	return f, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Form, error) {
	if req.Fields != nil {
		if chk := CheckSchema(*req.Fields); !chk.IsValid {
			return nil, &FieldErrors{Kind: ErrInvalidSchema, Fields: chk.Errors}
		}
	}
	return s.forms.Update(ctx, id, func(f *Form) error {
		if req.Title != nil {
			f.Title = *req.Title
		}
		if req.Description != nil {
			f.Description = *req.Description
		}
		if req.Type != nil {
			f.Type = *req.Type
		}
		if req.Status != nil {
			f.Status = *req.Status
		}
		if req.Fields != nil {
			f.Fields = cloneFields(*req.Fields)
		}
		f.UpdatedAt = s.now().UTC()
		return nil
	})
}

// Delete removes the form. Its responses are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.forms.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Submit validates data against the form's fields and stores the response.
func (s *Service) Submit(ctx context.Context, formID string, req SubmitRequest, actorID string) (*Response, error) {
	f, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if errs := CheckAnswers(f.Fields, req.Data); len(errs) > 0 {
		return nil, &FieldErrors{Kind: ErrInvalidAnswers, Fields: errs}
	}
	r := &Response{
		ID:          uuid.NewString(),
		FormID:      f.ID,
		StudyID:     f.StudyID,
		PatientID:   req.PatientID,
		Data:        req.Data,
		SubmittedBy: actorID,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.responses.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("store response: %w", err)
	}
	if s.feed != nil {
		s.feed.Record(activity.Item{
			Type:        activity.FormSubmitted,
			Description: "Data form submitted for patient " + req.PatientID,
			UserID:      actorID,
			StudyID:     f.StudyID,
			Timestamp:   r.SubmittedAt,
		})
	}
	return r, nil
}

// Responses lists the responses of an existing form.
func (s *Service) Responses(ctx context.Context, formID string) ([]*Response, error) {
	if _, err := s.forms.GetByID(ctx, formID); err != nil {
		return nil, err
	}
	return s.responses.ListByForm(ctx, formID)
}

// ResponsesByForm lists stored responses whether or not the form still
// exists.
func (s *Service) ResponsesByForm(ctx context.Context, formID string) ([]*Response, error) {
	return s.responses.ListByForm(ctx, formID)
}

// CountForms reports how many forms a study has and how many of them have at
// least one response.
func (s *Service) CountForms(ctx context.Context, studyID string) (total, completed int, err error) {
	forms, err := s.forms.List(ctx, Filter{StudyID: studyID})
	if err != nil {
		return 0, 0, err
	}
	for _, f := range forms {
		n, err := s.responses.CountByForm(ctx, f.ID)
		if err != nil {
			return 0, 0, err
		}
		if n > 0 {
			completed++
		}
	}
	return len(forms), completed, nil
}
