package form

import (
	"fmt"
	"regexp"
	"slices"
	"time"
)

// CheckSchema validates a field list structurally. It reports every problem
// found rather than stopping at the first.
func CheckSchema(fields []Field) SchemaCheck {
	var errs []string
	if len(fields) == 0 {
		errs = append(errs, "fields must contain at least 1 item(s)")
	}
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		at := fmt.Sprintf("fields[%d]", i)
		if f.ID == "" {
			errs = append(errs, at+".id is required")
		} else if seen[f.ID] {
			errs = append(errs, fmt.Sprintf("%s.id %q is duplicated", at, f.ID))
		}
		seen[f.ID] = true
		if f.Label == "" {
			errs = append(errs, at+".label is required")
		}
		switch f.Type {
		case FieldText, FieldTextarea, FieldNumber, FieldDate, FieldCheckbox:
		case FieldSelect, FieldMultiselect:
			if len(f.Options) == 0 {
				errs = append(errs, fmt.Sprintf("%s.options must not be empty for %s fields", at, f.Type))
			}
		default:
			errs = append(errs, fmt.Sprintf("%s.type %q is not supported", at, f.Type))
		}
		if v := f.Validation; v != nil {
			if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
				errs = append(errs, at+".validation.min must not exceed max")
			}
			if v.Pattern != "" {
				if _, err := regexp.Compile(v.Pattern); err != nil {
					errs = append(errs, fmt.Sprintf("%s.validation.pattern is invalid: %v", at, err))
				}
			}
		}
	}
	return SchemaCheck{IsValid: len(errs) == 0, Errors: errs}
}

// CheckAnswers validates submitted data against the form's fields. Keys
// that name no field are ignored.
func CheckAnswers(fields []Field, data map[string]any) []string {
	var errs []string
	for _, f := range fields {
		v, present := data[f.ID]
		if !present || isEmpty(v) {
			if f.Required {
				errs = append(errs, f.Label+" is required")
			}
			continue
		}
		if msg := checkValue(f, v); msg != "" {
			if f.Validation != nil && f.Validation.Message != "" {
				msg = f.Validation.Message
			}
			errs = append(errs, msg)
		}
	}
	return errs
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}

func checkValue(f Field, v any) string {
	switch f.Type {
	case FieldNumber:
		n, ok := v.(float64)
		if !ok {
			return f.Label + " must be a number"
		}
		if val := f.Validation; val != nil {
			if val.Min != nil && n < *val.Min {
				return fmt.Sprintf("%s must be at least %g", f.Label, *val.Min)
			}
			if val.Max != nil && n > *val.Max {
				return fmt.Sprintf("%s must be at most %g", f.Label, *val.Max)
			}
		}
	case FieldText, FieldTextarea:
		s, ok := v.(string)
		if !ok {
			return f.Label + " must be text"
		}
		if val := f.Validation; val != nil {
			if val.Min != nil && float64(len(s)) < *val.Min {
				return fmt.Sprintf("%s must be at least %g characters", f.Label, *val.Min)
			}
			if val.Max != nil && float64(len(s)) > *val.Max {
				return fmt.Sprintf("%s must be at most %g characters", f.Label, *val.Max)
			}
			if val.Pattern != "" {
				re, err := regexp.Compile(val.Pattern)
				if err != nil || !re.MatchString(s) {
					return f.Label + " has an invalid format"
				}
			}
		}
	case FieldDate:
		s, ok := v.(string)
		if !ok || !isDate(s) {
			return f.Label + " must be a date"
		}
	case FieldSelect:
		s, ok := v.(string)
		if !ok || !slices.Contains(f.Options, s) {
			return fmt.Sprintf("%s must be one of the listed options", f.Label)
		}
	case FieldMultiselect:
		items, ok := v.([]any)
		if !ok {
			return f.Label + " must be a list"
		}
		for _, it := range items {
			s, ok := it.(string)
			if !ok || !slices.Contains(f.Options, s) {
				return fmt.Sprintf("%s must only contain listed options", f.Label)
			}
		}
	case FieldCheckbox:
		if _, ok := v.(bool); !ok {
			return f.Label + " must be true or false"
		}
	}
	return ""
}

func isDate(s string) bool {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
