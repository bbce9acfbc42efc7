package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/studyhub/studyhub/internal/domain/form"
	"github.com/studyhub/studyhub/internal/domain/matching"
	"github.com/studyhub/studyhub/internal/domain/patient"
)

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// StudyCSV writes the study row, then a "Patient Matches:" section when
// matches were gathered.
func StudyCSV(w io.Writer, e *StudyExport) error {
	cw := csv.NewWriter(w)
	st := e.Study
	if err := cw.Write([]string{"Study ID", "Title", "Status", "Created At", "Enrollment Count", "Target Enrollment"}); err != nil {
		return err
	}
	err := cw.Write([]string{
		st.ID, st.Title, st.Status, stamp(st.CreatedAt),
		strconv.Itoa(st.EnrollmentCount), strconv.Itoa(st.TargetEnrollment),
	})
	if err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	if o := e.ExportMetadata.Options; o == nil || !o.IncludePatients {
		return nil
	}

	if _, err := io.WriteString(w, "\n\nPatient Matches:\n"); err != nil {
		return err
	}
	if err := cw.Write([]string{"Match ID", "Patient ID", "Score", "Status"}); err != nil {
		return err
	}
	for _, m := range e.PatientMatches {
		if err := cw.Write([]string{m.ID, patientID(m), strconv.Itoa(m.MatchScore), m.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func patientID(m *matching.Match) string {
	if m.Patient.ID == "" {
		return "N/A"
	}
	return m.Patient.ID
}

func PatientsCSV(w io.Writer, patients []*patient.Patient) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Patient ID", "First Name", "Last Name", "Age", "Gender", "Phone"}); err != nil {
		return err
	}
	for _, p := range patients {
		if err := cw.Write([]string{p.ID, p.FirstName, p.LastName, strconv.Itoa(p.Age), p.Gender, p.Phone}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ResponsesCSV writes one row per response with its answers as a JSON
// object in the last column.
func ResponsesCSV(w io.Writer, responses []*form.Response) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Response ID", "Patient ID", "Submitted At", "Responses"}); err != nil {
		return err
	}
	for _, r := range responses {
		data, err := json.Marshal(r.Data)
		if err != nil {
			return fmt.Errorf("encode response %s: %w", r.ID, err)
		}
		if err := cw.Write([]string{r.ID, r.PatientID, stamp(r.SubmittedAt), string(data)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func MatchesCSV(w io.Writer, matches []*matching.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Match ID", "Patient ID", "Score", "Status", "Created At", "Updated At"}); err != nil {
		return err
	}
	for _, m := range matches {
		if err := cw.Write([]string{m.ID, patientID(m), strconv.Itoa(m.MatchScore), m.Status, stamp(m.CreatedAt), stamp(m.UpdatedAt)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func render(fn func(io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
