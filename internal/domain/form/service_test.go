package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studyhub/studyhub/internal/domain/activity"
	"github.com/studyhub/studyhub/internal/domain/study"
)

type stubStudies map[string]bool

func (s stubStudies) Get(_ context.Context, id string) (*study.Study, error) {
	if !s[id] {
		return nil, study.ErrNotFound
	}
	return &study.Study{ID: id}, nil
}

var fixedNow = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *activity.Feed) {
	feed := activity.NewFeed(10)
	svc := NewService(NewMemoryRepo(), NewMemoryResponseRepo(), stubStudies{"1": true, "2": true}, feed)
	svc.now = func() time.Time { return fixedNow }
	return svc, feed
}

func baseline(studyID string) CreateRequest {
	return CreateRequest{
		StudyID: studyID,
		Title:   "Baseline visit",
		Type:    TypeBaseline,
		Fields:  sampleFields(),
	}
}

func validAnswers() map[string]any {
	return map[string]any{"weight": float64(80), "visit": "2025-01-20", "consent": true}
}

func TestService_CreateDefaultsToDraft(t *testing.T) {
	svc, _ := newTestService()
	f, err := svc.Create(context.Background(), baseline("1"), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Status != StatusDraft || f.CreatedBy != "1" || !f.CreatedAt.Equal(fixedNow) {
		t.Errorf("unexpected form %+v", f)
	}
}

func TestService_CreateUnknownStudy(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Create(context.Background(), baseline("9"), "1"); !errors.Is(err, study.ErrNotFound) {
		t.Fatalf("expected study.ErrNotFound, got %v", err)
	}
}

func TestService_CreateInvalidSchema(t *testing.T) {
	svc, _ := newTestService()
	req := baseline("1")
	req.Fields = []Field{{ID: "a", Type: FieldSelect, Label: "A"}}
	_, err := svc.Create(context.Background(), req, "1")
	var fe *FieldErrors
	if !errors.As(err, &fe) || !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected schema FieldErrors, got %v", err)
	}
}

func TestService_UpdateReplacesFields(t *testing.T) {
	svc, _ := newTestService()
	f, _ := svc.Create(context.Background(), baseline("1"), "1")
	fields := []Field{{ID: "only", Type: FieldText, Label: "Only"}}
	status := StatusActive
	got, err := svc.Update(context.Background(), f.ID, UpdateRequest{Fields: &fields, Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Fields) != 1 || got.Status != StatusActive || got.Title != "Baseline visit" {
		t.Errorf("unexpected form %+v", got)
	}
}

func TestService_SubmitValidatesAnswers(t *testing.T) {
	svc, feed := newTestService()
	f, _ := svc.Create(context.Background(), baseline("1"), "1")

	_, err := svc.Submit(context.Background(), f.ID, SubmitRequest{PatientID: "P001", Data: map[string]any{}}, "1")
	if !errors.Is(err, ErrInvalidAnswers) {
		t.Fatalf("expected ErrInvalidAnswers, got %v", err)
	}

	r, err := svc.Submit(context.Background(), f.ID, SubmitRequest{PatientID: "P001", Data: validAnswers()}, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.StudyID != "1" || r.SubmittedBy != "1" {
		t.Errorf("unexpected response %+v", r)
	}
	recent := feed.Recent(1)
	if len(recent) != 1 || recent[0].Description != "Data form submitted for patient P001" {
		t.Errorf("unexpected activity %+v", recent)
	}
}

func TestService_DeleteKeepsResponses(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	f, _ := svc.Create(ctx, baseline("1"), "1")
	if _, err := svc.Submit(ctx, f.ID, SubmitRequest{PatientID: "P1", Data: validAnswers()}, "1"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Delete(ctx, f.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Responses(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound listing responses of a deleted form, got %v", err)
	}
	kept, err := svc.ResponsesByForm(ctx, f.ID)
	if err != nil || len(kept) != 1 {
		t.Errorf("expected response to survive form deletion, got %d (%v)", len(kept), err)
	}
	if err := svc.Delete(ctx, f.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestService_CountForms(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, baseline("1"), "1")
	if _, err := svc.Create(ctx, baseline("1"), "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, baseline("2"), "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(ctx, a.ID, SubmitRequest{PatientID: "P1", Data: validAnswers()}, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(ctx, a.ID, SubmitRequest{PatientID: "P2", Data: validAnswers()}, "1"); err != nil {
		t.Fatal(err)
	}

	total, completed, err := svc.CountForms(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || completed != 1 {
		t.Errorf("expected 2 total / 1 completed, got %d / %d", total, completed)
	}
}

func TestService_SatisfiesStudyFormCounter(t *testing.T) {
	var _ study.FormCounter = (*Service)(nil)
}
