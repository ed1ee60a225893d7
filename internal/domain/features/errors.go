package features

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidFeatures is matched by every *ValidationError.
var ErrInvalidFeatures = errors.New("invalid features")

// FieldError describes one rejected field.
type FieldError struct {
	Field  string `json:"field"`
	Value  any    `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Reason
}

// ValidationError reports fields that fall outside their declared domain.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Value: value, Reason: reason}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return ErrInvalidFeatures.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidFeatures) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidFeatures
}

// OutOfRange describes a numeric value outside its column's domain.
func OutOfRange(column string, value float64) FieldError {
	return FieldError{Field: column, Value: numValue(value), Reason: rangeReason(NumericDomains[column])}
}

func rangeReason(r Range) string {
	kind := "a number"
	if r.Integer {
		kind = "an integer"
	}
	return fmt.Sprintf("must be %s between %s and %s", kind, fmtNum(r.Min), fmtNum(r.Max))
}

// numValue keeps finite numbers as-is so they encode as JSON numbers.
func numValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmtNum(v)
	}
	return v
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quoteAll(values []string) string {
	q := make([]string, len(values))
	for i, v := range values {
		q[i] = strconv.Quote(v)
	}
	return strings.Join(q, ", ")
}
