package form

import (
	"maps"
	"slices"
	"time"
)

// Form types.
const (
	TypeBaseline     = "baseline"
	TypeFollowup     = "followup"
	TypeAdverseEvent = "adverse_event"
	TypeCustom       = "custom"
)

// Form statuses.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Field types.
const (
	FieldText        = "text"
	FieldNumber      = "number"
	FieldDate        = "date"
	FieldSelect      = "select"
	FieldMultiselect = "multiselect"
	FieldTextarea    = "textarea"
	FieldCheckbox    = "checkbox"
)

type FieldValidation struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Field is one entry of a form's schema.
type Field struct {
	ID             string           `json:"id" validate:"required"`
	Type           string           `json:"type" validate:"required,oneof=text number date select multiselect textarea checkbox"`
	Label          string           `json:"label" validate:"required"`
	Required       bool             `json:"required"`
	Options        []string         `json:"options,omitempty"`
	Validation     *FieldValidation `json:"validation,omitempty"`
	DefaultValue   any              `json:"defaultValue,omitempty"`
	IsPrepopulated bool             `json:"isPrepopulated,omitempty"`
}

type Form struct {
	ID          string    `json:"id"`
	StudyID     string    `json:"studyId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Fields      []Field   `json:"fields"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func cloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	for i, f := range in {
		f.Options = slices.Clone(f.Options)
		if f.Validation != nil {
			v := *f.Validation
			f.Validation = &v
		}
		out[i] = f
	}
	return out
}

func cloneForm(f Form) Form {
	f.Fields = cloneFields(f.Fields)
	return f
}

// Response is one submission of a form. It references its form by id only.
type Response struct {
	ID          string         `json:"id"`
	FormID      string         `json:"formId"`
	StudyID     string         `json:"studyId"`
	PatientID   string         `json:"patientId"`
	Data        map[string]any `json:"data"`
	SubmittedBy string         `json:"submittedBy,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

func cloneResponse(r Response) Response {
	r.Data = maps.Clone(r.Data)
	return r
}

type CreateRequest struct {
	StudyID     string  `json:"studyId" validate:"required"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=1000"`
	Type        string  `json:"type" validate:"required,oneof=baseline followup adverse_event custom"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft active inactive"`
	Fields      []Field `json:"fields" validate:"min=1,dive"`
}

// UpdateRequest holds the fields to change; a provided field list replaces
// the stored schema.
type UpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Type        *string  `json:"type" validate:"omitempty,oneof=baseline followup adverse_event custom"`
	Status      *string  `json:"status" validate:"omitempty,oneof=draft active inactive"`
	Fields      *[]Field `json:"fields" validate:"omitempty,min=1,dive"`
}

type SubmitRequest struct {
	PatientID string         `json:"patientId" validate:"required"`
	Data      map[string]any `json:"data" validate:"required"`
}

type SchemaRequest struct {
	Fields []Field `json:"fields"`
}

// SchemaCheck is the result of validating a field list.
type SchemaCheck struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

type Filter struct {
	StudyID string
	Type    string
	Status  string
}

func (f Filter) matches(fm Form) bool {
	if f.StudyID != "" && fm.StudyID != f.StudyID {
		return false
	}
	if f.Type != "" && fm.Type != f.Type {
		return false
	}
	return f.Status == "" || fm.Status == f.Status
}
