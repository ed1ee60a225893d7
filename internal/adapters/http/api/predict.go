package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/okian/scorecast/internal/domain/features"
	"github.com/okian/scorecast/internal/domain/inference"
)

const maxBodyBytes = 1 << 20

// predictRequest mirrors the OpenAPI schema for POST /predict.
type predictRequest struct {
	Features *featuresPayload `json:"features"`
}

// featuresPayload uses pointers so missing fields can be told apart from
// zero values.
type featuresPayload struct {
	Age             *float64 `json:"age"`
	StudyHours      *float64 `json:"study_hours"`
	ClassAttendance *float64 `json:"class_attendance"`
	SleepHours      *float64 `json:"sleep_hours"`

	Gender         *string `json:"gender"`
	Course         *string `json:"course"`
	InternetAccess *string `json:"internet_access"`
	SleepQuality   *string `json:"sleep_quality"`
	StudyMethod    *string `json:"study_method"`
	FacilityRating *string `json:"facility_rating"`
	ExamDifficulty *string `json:"exam_difficulty"`
}

// toRaw converts the payload, reporting every missing field and a
// non-integral or out-of-range age.
func (p *featuresPayload) toRaw() (features.RawFeatures, error) {
	var (
		raw     features.RawFeatures
		missing []features.FieldError
	)
	num := func(name string, v *float64, dst *float64) {
		if v == nil {
			missing = append(missing, features.FieldError{Field: name, Reason: "field required"})
			return
		}
		*dst = *v
	}
	str := func(name string, v *string, dst *string) {
		if v == nil {
			missing = append(missing, features.FieldError{Field: name, Reason: "field required"})
			return
		}
		*dst = *v
	}

	var age float64
	num(features.Age, p.Age, &age)
	num(features.StudyHours, p.StudyHours, &raw.StudyHours)
	num(features.ClassAttendance, p.ClassAttendance, &raw.ClassAttendance)
	num(features.SleepHours, p.SleepHours, &raw.SleepHours)
	str(features.Gender, p.Gender, &raw.Gender)
	str(features.Course, p.Course, &raw.Course)
	str(features.InternetAccess, p.InternetAccess, &raw.InternetAccess)
	str(features.SleepQuality, p.SleepQuality, &raw.SleepQuality)
	str(features.StudyMethod, p.StudyMethod, &raw.StudyMethod)
	str(features.FacilityRating, p.FacilityRating, &raw.FacilityRating)
	str(features.ExamDifficulty, p.ExamDifficulty, &raw.ExamDifficulty)

	if p.Age != nil {
		if !features.NumericDomains[features.Age].Contains(age) {
			missing = append(missing, features.OutOfRange(features.Age, age))
		} else {
			raw.Age = int(math.Trunc(age))
		}
	}
	if len(missing) > 0 {
		return raw, &features.ValidationError{Fields: missing}
	}
	return raw, nil
}

type predictResponse struct {
	PredictedScore float64 `json:"predicted_score"`
	ScoreCategory  string  `json:"score_category"`
	ModelVersion   string  `json:"model_version"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field := strings.TrimPrefix(typeErr.Field, "features.")
			writeValidation(w, features.NewValidationError(field, nil, "must be "+jsonKind(typeErr.Type)))
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: malformed JSON body", ErrBadRequest))
		return
	}
	if req.Features == nil {
		writeValidation(w, features.NewValidationError("features", nil, "field required"))
		return
	}

	raw, err := req.Features.toRaw()
	if err != nil {
		writeValidation(w, err)
		return
	}

	p, err := h.deps.Predict(r.Context(), raw)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, predictResponse{
			PredictedScore: p.Score,
			ScoreCategory:  p.Category,
			ModelVersion:   p.ModelVersion,
		})
	case errors.Is(err, features.ErrInvalidFeatures):
		writeValidation(w, err)
	case errors.Is(err, inference.ErrModelNotLoaded):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, ErrUnavailable)
	default:
		// The cause is logged by the service and never echoed.
		writeError(w, http.StatusInternalServerError, codeInternal, ErrPredictionFail)
	}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "a number"
	case reflect.String:
		return "a string"
	default:
		return "an object"
	}
}

func writeValidation(w http.ResponseWriter, err error) {
	resp := errorResponse{Code: codeValidation, Message: features.ErrInvalidFeatures.Error()}
	var verr *features.ValidationError
	if errors.As(err, &verr) {
		resp.Details = verr.Fields
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}
