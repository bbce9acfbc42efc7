package patient

import (
	"slices"
	"time"

	"github.com/studyhub/studyhub/internal/domain/eligibility"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

type Address struct {
	Street  string `json:"street" yaml:"street" validate:"required"`
	City    string `json:"city" yaml:"city" validate:"required"`
	State   string `json:"state" yaml:"state" validate:"required"`
	ZipCode string `json:"zipCode" yaml:"zipCode" validate:"required"`
	Country string `json:"country,omitempty" yaml:"country"`
}

type Patient struct {
	ID          string     `json:"id" yaml:"id"`
	FirstName   string     `json:"firstName" yaml:"firstName"`
	LastName    string     `json:"lastName" yaml:"lastName"`
	Email       string     `json:"email,omitempty" yaml:"email"`
	Phone       string     `json:"phone,omitempty" yaml:"phone"`
	Address     *Address   `json:"address,omitempty" yaml:"address"`
	Age         int        `json:"age" yaml:"age"`
	Gender      string     `json:"gender" yaml:"gender"`
	Conditions  []string   `json:"conditions" yaml:"conditions"`
	Medications []string   `json:"medications" yaml:"medications"`
	LastVisit   *time.Time `json:"lastVisit,omitempty" yaml:"lastVisit"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy.
func (p Patient) Clone() Patient {
	p.Conditions = slices.Clone(p.Conditions)
	p.Medications = slices.Clone(p.Medications)
	if p.Address != nil {
		a := *p.Address
		p.Address = &a
	}
	if p.LastVisit != nil {
		t := *p.LastVisit
		p.LastVisit = &t
	}
	return p
}

// Candidate converts the patient into scoring input.
func (p Patient) Candidate() eligibility.Candidate {
	return eligibility.Candidate{
		Age:        p.Age,
		Gender:     p.Gender,
		Conditions: slices.Clone(p.Conditions),
	}
}

// MedicalHistory is the clinical slice of a patient record.
type MedicalHistory struct {
	Conditions  []string   `json:"conditions"`
	Medications []string   `json:"medications"`
	LastVisit   *time.Time `json:"lastVisit,omitempty"`
}

type CreateRequest struct {
	FirstName   string   `json:"firstName" validate:"required,min=1,max=50"`
	LastName    string   `json:"lastName" validate:"required,min=1,max=50"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone" validate:"omitempty,max=20"`
	Address     *Address `json:"address"`
	Age         *int     `json:"age" validate:"required,min=0,max=120"`
	Gender      string   `json:"gender" validate:"required,oneof=male female"`
	Conditions  []string `json:"conditions" validate:"omitempty,dive,required"`
	Medications []string `json:"medications" validate:"omitempty,dive,required"`
}

// UpdateRequest holds the fields to change; nil fields are left alone.
type UpdateRequest struct {
	FirstName   *string    `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName    *string    `json:"lastName" validate:"omitempty,min=1,max=50"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	Phone       *string    `json:"phone" validate:"omitempty,max=20"`
	Address     *Address   `json:"address"`
	Age         *int       `json:"age" validate:"omitempty,min=0,max=120"`
	Gender      *string    `json:"gender" validate:"omitempty,oneof=male female"`
	Conditions  *[]string  `json:"conditions" validate:"omitempty,dive,required"`
	Medications *[]string  `json:"medications" validate:"omitempty,dive,required"`
	LastVisit   *time.Time `json:"lastVisit"`
}

// Filter narrows a patient listing. Zero values match everything.
type Filter struct {
	Query     string
	Age       *int
	Gender    string
	Condition string
}

type SearchAgeRange struct {
	Min *int `json:"min" validate:"omitempty,min=0"`
	Max *int `json:"max" validate:"omitempty,max=120"`
}

// SearchCriteria is an ad-hoc eligibility rule set.
type SearchCriteria struct {
	AgeRange   *SearchAgeRange `json:"ageRange"`
	Gender     string          `json:"gender" validate:"omitempty,oneof=male female any"`
	Conditions []string        `json:"conditions" validate:"omitempty,dive,required"`
}

type SearchRequest struct {
	Criteria *SearchCriteria `json:"criteria" validate:"required"`
}

// Rules fills an open age range with 0..120.
func (c SearchCriteria) Rules() eligibility.Rules {
	r := eligibility.Rules{AgeMin: 0, AgeMax: 120, Gender: c.Gender, Conditions: slices.Clone(c.Conditions)}
	if c.AgeRange != nil {
		if c.AgeRange.Min != nil {
			r.AgeMin = *c.AgeRange.Min
		}
		if c.AgeRange.Max != nil {
			r.AgeMax = *c.AgeRange.Max
		}
	}
	return r
}

// SearchResult is one scored patient from a search.
type SearchResult struct {
	Patient      Patient  `json:"patient"`
	MatchScore   int      `json:"matchScore"`
	MatchReasons []string `json:"matchReasons"`
}
