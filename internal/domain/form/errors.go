package form

import "errors"

var (
	ErrNotFound       = errors.New("form not found")
	ErrInvalidSchema  = errors.New("invalid form schema")
	ErrInvalidAnswers = errors.New("invalid form answers")
)

// FieldErrors carries per-field messages alongside a sentinel.
type FieldErrors struct {
	Kind   error
	Fields []string
}

func (e *FieldErrors) Error() string {
	return e.Kind.Error()
}

func (e *FieldErrors) Unwrap() error {
	return e.Kind
}
