// Package features defines the raw student record accepted by the predictor,
// its value domains, and the derived interaction features.
package features

import (
	"math"
	"slices"
)

// Column names as used at training time.
const (
	Age             = "age"
	StudyHours      = "study_hours"
	ClassAttendance = "class_attendance"
	SleepHours      = "sleep_hours"

	Gender         = "gender"
	Course         = "course"
	InternetAccess = "internet_access"
	SleepQuality   = "sleep_quality"
	StudyMethod    = "study_method"
	FacilityRating = "facility_rating"
	ExamDifficulty = "exam_difficulty"
)

// NumericColumns lists the numeric raw columns in training order.
var NumericColumns = []string{Age, StudyHours, ClassAttendance, SleepHours} //nolint:gochecknoglobals // fixed schema

// CategoricalColumns lists the categorical raw columns in training order.
var CategoricalColumns = []string{ //nolint:gochecknoglobals // fixed schema
	Gender, Course, InternetAccess, SleepQuality, StudyMethod, FacilityRating, ExamDifficulty,
}

// Range is an inclusive numeric domain.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	// Integer requires whole numbers.
	Integer bool `json:"integer,omitempty"`
}

// Contains reports whether v is a finite value inside r.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	if r.Integer && v != math.Trunc(v) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// NumericDomains maps each numeric column to its accepted range.
var NumericDomains = map[string]Range{ //nolint:gochecknoglobals // fixed schema
	Age:             {Min: 17, Max: 24, Integer: true},
	StudyHours:      {Min: 0, Max: 8},
	ClassAttendance: {Min: 40, Max: 100},
	SleepHours:      {Min: 4, Max: 10},
}

// CategoricalDomains maps each categorical column to its accepted values.
var CategoricalDomains = map[string][]string{ //nolint:gochecknoglobals // fixed schema
	Gender:         {"female", "other", "male"},
	Course:         {"b.sc", "b.com", "b.tech", "ba", "bba", "diploma", "bca"},
	InternetAccess: {"yes", "no"},
	SleepQuality:   {"poor", "average", "good"},
	StudyMethod:    {"self-study", "group study", "online videos", "coaching", "mixed"},
	FacilityRating: {"medium", "low", "high"},
	ExamDifficulty: {"easy", "moderate", "hard"},
}

// InDomain reports whether value is accepted for the categorical column.
func InDomain(column, value string) bool {
	return slices.Contains(CategoricalDomains[column], value)
}

// RawFeatures is one student record as received from a caller.
type RawFeatures struct {
	Age             int     `json:"age" yaml:"age"`
	StudyHours      float64 `json:"study_hours" yaml:"study_hours"`
	ClassAttendance float64 `json:"class_attendance" yaml:"class_attendance"`
	SleepHours      float64 `json:"sleep_hours" yaml:"sleep_hours"`

	Gender         string `json:"gender" yaml:"gender"`
	Course         string `json:"course" yaml:"course"`
	InternetAccess string `json:"internet_access" yaml:"internet_access"`
	SleepQuality   string `json:"sleep_quality" yaml:"sleep_quality"`
	StudyMethod    string `json:"study_method" yaml:"study_method"`
	FacilityRating string `json:"facility_rating" yaml:"facility_rating"`
	ExamDifficulty string `json:"exam_difficulty" yaml:"exam_difficulty"`
}

// Numeric returns a numeric column by its training name.
func (r RawFeatures) Numeric(column string) (float64, bool) {
	switch column {
	case Age:
		return float64(r.Age), true
	case StudyHours:
		return r.StudyHours, true
	case ClassAttendance:
		return r.ClassAttendance, true
	case SleepHours:
		return r.SleepHours, true
	}
	return 0, false
}

// Categorical returns a categorical column by its training name.
func (r RawFeatures) Categorical(column string) (string, bool) {
	switch column {
	case Gender:
		return r.Gender, true
	case Course:
		return r.Course, true
	case InternetAccess:
		return r.InternetAccess, true
	case SleepQuality:
		return r.SleepQuality, true
	case StudyMethod:
		return r.StudyMethod, true
	case FacilityRating:
		return r.FacilityRating, true
	case ExamDifficulty:
		return r.ExamDifficulty, true
	}
	return "", false
}

// Validate checks every field against its domain and reports all violations.
func (r RawFeatures) Validate() error {
	var fields []FieldError
	for _, col := range NumericColumns {
		v, _ := r.Numeric(col)
		if !NumericDomains[col].Contains(v) {
			fields = append(fields, OutOfRange(col, v))
		}
	}
	for _, col := range CategoricalColumns {
		v, _ := r.Categorical(col)
		if !InDomain(col, v) {
			fields = append(fields, FieldError{Field: col, Value: v, Reason: "must be one of " + quoteAll(CategoricalDomains[col])})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Example returns the reference student used in docs and probes.
func Example() RawFeatures {
	return RawFeatures{
		Age:             20,
		StudyHours:      5.0,
		ClassAttendance: 85.0,
		SleepHours:      7.5,
		Gender:          "male",
		Course:          "b.tech",
		InternetAccess:  "yes",
		SleepQuality:    "good",
		StudyMethod:     "self-study",
		FacilityRating:  "medium",
		ExamDifficulty:  "moderate",
	}
}
