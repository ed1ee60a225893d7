package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrUnavailable    = errors.New("model not loaded")
	ErrPredictionFail = errors.New("prediction failed")
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest  = "bad_request"
	codeValidation  = "validation_error"
	codeUnavailable = "model_not_loaded"
	codeInternal    = "prediction_failed"
)
