package study

import (
	"slices"
	"time"

	"github.com/studyhub/studyhub/internal/domain/activity"
	"github.com/studyhub/studyhub/internal/domain/eligibility"
)

// Study statuses.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// DefaultTargetEnrollment applies when a study is created without a target.
const DefaultTargetEnrollment = 100

type AgeRange struct {
	Min int `json:"min" yaml:"min" validate:"min=0,max=120"`
	Max int `json:"max" yaml:"max" validate:"min=0,max=120,gtefield=Min"`
}

// Criteria is the eligibility rule set attached to a study.
type Criteria struct {
	Inclusion   []string `json:"inclusion" yaml:"inclusion" validate:"min=1,dive,required"`
	Exclusion   []string `json:"exclusion" yaml:"exclusion" validate:"min=1,dive,required"`
	AgeRange    AgeRange `json:"ageRange" yaml:"ageRange"`
	Gender      string   `json:"gender,omitempty" yaml:"gender" validate:"omitempty,oneof=male female any"`
	Conditions  []string `json:"conditions,omitempty" yaml:"conditions"`
	Medications []string `json:"medications,omitempty" yaml:"medications"`
}

// Rules converts the criteria into scoring input.
func (c Criteria) Rules() eligibility.Rules {
	return eligibility.Rules{
		AgeMin:     c.AgeRange.Min,
		AgeMax:     c.AgeRange.Max,
		Gender:     c.Gender,
		Conditions: slices.Clone(c.Conditions),
	}
}

func (c Criteria) clone() Criteria {
	c.Inclusion = slices.Clone(c.Inclusion)
	c.Exclusion = slices.Clone(c.Exclusion)
	c.Conditions = slices.Clone(c.Conditions)
	c.Medications = slices.Clone(c.Medications)
	return c
}

type Study struct {
	ID               string    `json:"id" yaml:"id"`
	Title            string    `json:"title" yaml:"title"`
	Description      string    `json:"description" yaml:"description"`
	Objectives       []string  `json:"objectives" yaml:"objectives"`
	Criteria         Criteria  `json:"criteria" yaml:"criteria"`
	Status           string    `json:"status" yaml:"status"`
	CreatedBy        string    `json:"createdBy" yaml:"createdBy"`
	CreatedAt        time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" yaml:"updatedAt"`
	EnrollmentCount  int       `json:"enrollmentCount" yaml:"enrollmentCount"`
	TargetEnrollment int       `json:"targetEnrollment" yaml:"targetEnrollment"`
}

func cloneStudy(s Study) Study {
	s.Objectives = slices.Clone(s.Objectives)
	s.Criteria = s.Criteria.clone()
	return s
}

// EnrollmentRate is the enrollment count as a percentage of the target.
func (s Study) EnrollmentRate() float64 {
	if s.TargetEnrollment <= 0 {
		return 0
	}
	return float64(s.EnrollmentCount) * 100 / float64(s.TargetEnrollment)
}

// CreateRequest is the body of POST /studies.
type CreateRequest struct {
	Title            string   `json:"title" validate:"required,min=1,max=200"`
	Description      string   `json:"description" validate:"required,min=1,max=1000"`
	Objectives       []string `json:"objectives" validate:"min=1,dive,required"`
	Criteria         Criteria `json:"criteria"`
	TargetEnrollment *int     `json:"targetEnrollment" validate:"omitempty,min=1"`
}

// UpdateRequest is the body of PUT /studies/:id. Absent fields are left
// unchanged; a provided criteria block replaces the stored one.
type UpdateRequest struct {
	Title            *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string   `json:"description" validate:"omitempty,min=1,max=1000"`
	Objectives       *[]string `json:"objectives" validate:"omitempty,min=1,dive,required"`
	Criteria         *Criteria `json:"criteria"`
	Status           *string   `json:"status" validate:"omitempty,oneof=draft active paused completed cancelled"`
	TargetEnrollment *int      `json:"targetEnrollment" validate:"omitempty,min=1"`
}

// Filter narrows a study listing. Empty fields match everything.
type Filter struct {
	Query     string
	Status    string
	CreatedBy string
}

// Stats is the per-study statistics view.
type Stats struct {
	EnrollmentCount  int       `json:"enrollmentCount"`
	TargetEnrollment int       `json:"targetEnrollment"`
	EnrollmentRate   float64   `json:"enrollmentRate"`
	Status           string    `json:"status"`
	CreatedDate      time.Time `json:"createdDate"`
	LastUpdated      time.Time `json:"lastUpdated"`
	TotalForms       int       `json:"totalForms"`
	CompletedForms   int       `json:"completedForms"`
}

// Dashboard aggregates every study for the landing page.
type Dashboard struct {
	TotalStudies          int             `json:"totalStudies"`
	ActiveStudies         int             `json:"activeStudies"`
	TotalEnrollment       int             `json:"totalEnrollment"`
	AverageEnrollmentRate float64         `json:"averageEnrollmentRate"`
	RecentActivity        []activity.Item `json:"recentActivity"`
}
