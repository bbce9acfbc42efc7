// Package export renders studies, patients, form responses and matches as
// JSON or CSV downloads, and builds per-study reports.
package export

import (
	"time"

	"github.com/studyhub/studyhub/internal/domain/form"
	"github.com/studyhub/studyhub/internal/domain/matching"
	"github.com/studyhub/studyhub/internal/domain/patient"
	"github.com/studyhub/studyhub/internal/domain/study"
)

// Formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Report types.
const (
	ReportEnrollment = "enrollment"
	ReportSafety     = "safety"
	ReportEfficacy   = "efficacy"
	ReportSummary    = "summary"
)

type StudyOptions struct {
	IncludePatients bool `json:"includePatients"`
	IncludeForms    bool `json:"includeForms"`
}

// Metadata describes who produced an export and when.
type Metadata struct {
	ExportedAt    time.Time     `json:"exportedAt"`
	ExportedBy    string        `json:"exportedBy"`
	Format        string        `json:"format"`
	Options       *StudyOptions `json:"options,omitempty"`
	PatientCount  *int          `json:"patientCount,omitempty"`
	ResponseCount *int          `json:"responseCount,omitempty"`
}

// StudyExport is a study with its related collections. Collections that
// were not requested, or are empty, are omitted.
type StudyExport struct {
	Study          *study.Study      `json:"study"`
	PatientMatches []*matching.Match `json:"patientMatches,omitempty"`
	Forms          []*form.Form      `json:"forms,omitempty"`
	ExportMetadata Metadata          `json:"exportMetadata"`
}

type PatientExport struct {
	Patients       []*patient.Patient `json:"patients"`
	ExportMetadata Metadata           `json:"exportMetadata"`
}

type ResponseExport struct {
	FormID         string           `json:"formId"`
	Responses      []*form.Response `json:"responses"`
	ExportMetadata Metadata         `json:"exportMetadata"`
}

type MatchExport struct {
	StudyID    string            `json:"studyId"`
	StudyTitle string            `json:"studyTitle"`
	ExportedAt time.Time         `json:"exportedAt"`
	Matches    []*matching.Match `json:"matches"`
}

type PatientsRequest struct {
	PatientIDs []string `json:"patientIds" validate:"required,min=1,dive,required"`
}

// DateRange bounds a report. Both ends are ISO dates or RFC 3339 times.
type DateRange struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

type ReportRequest struct {
	ReportType string     `json:"reportType" validate:"required,oneof=enrollment safety efficacy summary"`
	DateRange  *DateRange `json:"dateRange"`
}

type Report struct {
	StudyID     string     `json:"studyId"`
	StudyTitle  string     `json:"studyTitle"`
	ReportType  string     `json:"reportType"`
	DateRange   *DateRange `json:"dateRange,omitempty"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Data        any        `json:"data"`
}

type EnrollmentReport struct {
	TotalEnrollment     int     `json:"totalEnrollment"`
	TargetEnrollment    int     `json:"targetEnrollment"`
	EnrollmentRate      float64 `json:"enrollmentRate"`
	WeeklyEnrollment    []int   `json:"weeklyEnrollment"`
	ProjectedCompletion string  `json:"projectedCompletion"`
}

type EventsByCategory struct {
	Mild     int `json:"mild"`
	Moderate int `json:"moderate"`
	Severe   int `json:"severe"`
}

type SafetyReport struct {
	TotalEvents      int              `json:"totalEvents"`
	SeriousEvents    int              `json:"seriousEvents"`
	AdverseEvents    int              `json:"adverseEvents"`
	EventsByCategory EventsByCategory `json:"eventsByCategory"`
}

type Endpoint struct {
	Name   string  `json:"name,omitempty"`
	Met    bool    `json:"met"`
	PValue float64 `json:"pValue"`
	Effect string  `json:"effect,omitempty"`
}

type EfficacyReport struct {
	PrimaryEndpoint    Endpoint   `json:"primaryEndpoint"`
	SecondaryEndpoints []Endpoint `json:"secondaryEndpoints"`
}

type KeyMetrics struct {
	Enrollment  int    `json:"enrollment"`
	Completion  string `json:"completion"`
	DropoutRate string `json:"dropoutRate"`
}

type SummaryReport struct {
	Summary    string     `json:"summary"`
	KeyMetrics KeyMetrics `json:"keyMetrics"`
}
