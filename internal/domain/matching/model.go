package matching

import (
	"slices"
	"time"

	"github.com/studyhub/studyhub/internal/domain/patient"
)

// Match statuses.
const (
	StatusPotential  = "potential"
	StatusReviewed   = "reviewed"
	StatusEligible   = "eligible"
	StatusIneligible = "ineligible"
	StatusEnrolled   = "enrolled"
)

// Match pairs a patient with a study. Patient is a copy taken when the match
// was last scored; later edits to the patient record do not show up here.
type Match struct {
	ID           string          `json:"id"`
	Patient      patient.Patient `json:"patient"`
	StudyID      string          `json:"studyId"`
	MatchScore   int             `json:"matchScore"`
	MatchReasons []string        `json:"matchReasons"`
	Status       string          `json:"status"`
	ReviewedBy   string          `json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewedAt,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func cloneMatch(m Match) Match {
	m.Patient = m.Patient.Clone()
	m.MatchReasons = slices.Clone(m.MatchReasons)
	if m.ReviewedAt != nil {
		t := *m.ReviewedAt
		m.ReviewedAt = &t
	}
	return m
}

// History actions.
const (
	ActionCreated       = "created"
	ActionRescored      = "rescored"
	ActionStatusChanged = "status_changed"
)

// HistoryEntry is one recorded change to a match.
type HistoryEntry struct {
	ID          string    `json:"id"`
	MatchID     string    `json:"matchId"`
	Action      string    `json:"action"`
	FromStatus  string    `json:"fromStatus,omitempty"`
	ToStatus    string    `json:"toStatus"`
	Score       int       `json:"score"`
	PerformedBy string    `json:"performedBy,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// StatusRequest is the body of PUT /matches/:id/status.
type StatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=potential reviewed eligible ineligible enrolled"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

// Filter narrows a match listing. Zero values match everything.
type Filter struct {
	StudyID  string
	Status   string
	MinScore int
}

func (f Filter) matches(m Match) bool {
	if f.StudyID != "" && m.StudyID != f.StudyID {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	return m.MatchScore >= f.MinScore
}
