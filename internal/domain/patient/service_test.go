package patient

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepo())
	svc.now = func() time.Time { return fixedNow }
	visit := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	err := svc.Seed(context.Background(), []Patient{
		{ID: "1", FirstName: "John", LastName: "Doe", Age: 45, Gender: GenderMale,
			Conditions: []string{"Type 2 Diabetes", "Hypertension"}, Medications: []string{"Metformin", "Lisinopril"}, LastVisit: &visit},
		{ID: "2", FirstName: "Jane", LastName: "Smith", Email: "jane@example.com", Age: 32, Gender: GenderFemale,
			Conditions: []string{"Healthy"}},
		{ID: "3", FirstName: "Bob", LastName: "Johnson", Age: 58, Gender: GenderMale,
			Conditions: []string{"Hypertension", "High Cholesterol"}, Medications: []string{"Amlodipine", "Atorvastatin"}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func intPtr(v int) *int { return &v }

func TestService_Create(t *testing.T) {
	svc := newTestService(t)
	p, err := svc.Create(context.Background(), CreateRequest{
		FirstName: "Ada", LastName: "Lovelace", Age: intPtr(36), Gender: GenderFemale,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" || !p.CreatedAt.Equal(fixedNow) {
		t.Errorf("unexpected patient %+v", p)
	}
	if p.Conditions == nil || p.Medications == nil {
		t.Error("expected empty, non-nil lists")
	}
}

func TestService_ListFilters(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{"all", Filter{}, []string{"1", "2", "3"}},
		{"query last name", Filter{Query: "john"}, []string{"3"}},
		{"query email", Filter{Query: "example.com"}, []string{"2"}},
		{"age exact", Filter{Age: intPtr(45)}, []string{"1"}},
		{"gender", Filter{Gender: GenderMale}, []string{"1", "3"}},
		{"condition substring", Filter{Condition: "tension"}, []string{"1", "3"}},
		{"no match", Filter{Condition: "asthma"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d patients, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestService_UpdateMerges(t *testing.T) {
	svc := newTestService(t)
	meds := []string{"Insulin"}
	p, err := svc.Update(context.Background(), "1", UpdateRequest{Medications: &meds})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Medications) != 1 || p.Medications[0] != "Insulin" {
		t.Errorf("medications not replaced: %v", p.Medications)
	}
	if p.FirstName != "John" || len(p.Conditions) != 2 {
		t.Error("absent fields should be untouched")
	}
	if !p.UpdatedAt.Equal(fixedNow) {
		t.Errorf("expected updatedAt refreshed, got %s", p.UpdatedAt)
	}
}

func TestService_DeleteAndNotFound(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Delete(context.Background(), "3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), "3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_MedicalHistory(t *testing.T) {
	svc := newTestService(t)
	mh, err := svc.MedicalHistory(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mh.Conditions) != 2 || len(mh.Medications) != 2 || mh.LastVisit == nil {
		t.Errorf("unexpected history %+v", mh)
	}
}

func TestService_Search(t *testing.T) {
	svc := newTestService(t)
	results, err := svc.Search(context.Background(), SearchCriteria{
		AgeRange:   &SearchAgeRange{Min: intPtr(40), Max: intPtr(80)},
		Gender:     GenderMale,
		Conditions: []string{"Diabetes"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// John: age, gender, condition = 100. Bob: age, gender = 67. Jane: none = 0.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Patient.ID != "1" || results[0].MatchScore != 100 {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if results[1].Patient.ID != "3" || results[1].MatchScore != 67 {
		t.Errorf("unexpected second result %+v", results[1])
	}
}

func TestService_SearchOpenCriteria(t *testing.T) {
	svc := newTestService(t)
	results, err := svc.Search(context.Background(), SearchCriteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected every patient to match the open age range, got %d", len(results))
	}
	for i, want := range []string{"1", "2", "3"} {
		if results[i].Patient.ID != want {
			t.Errorf("ties should keep registry order; position %d got %s", i, results[i].Patient.ID)
		}
	}
}

func TestService_SearchInvertedRange(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Search(context.Background(), SearchCriteria{AgeRange: &SearchAgeRange{Min: intPtr(60), Max: intPtr(10)}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPatient_CloneIsDeep(t *testing.T) {
	visit := fixedNow
	p := Patient{Conditions: []string{"a"}, Address: &Address{City: "x"}, LastVisit: &visit}
	c := p.Clone()
	c.Conditions[0] = "b"
	c.Address.City = "y"
	*c.LastVisit = visit.Add(time.Hour)
	if p.Conditions[0] != "a" || p.Address.City != "x" || !p.LastVisit.Equal(fixedNow) {
		t.Error("clone shares memory with original")
	}
}
