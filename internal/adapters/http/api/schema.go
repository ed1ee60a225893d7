package api

import (
	"errors"
	"net/http"

	"github.com/okian/scorecast/internal/domain/inference"
)

// SchemaHandler serves the feature schema.
type SchemaHandler struct {
	deps Dependencies
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(deps Dependencies) *SchemaHandler {
	return &SchemaHandler{deps: deps}
}

// HandleSchema handles GET /features/schema.
func (h *SchemaHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	raw, err := h.deps.Schema(r.Context())
	switch {
	case errors.Is(err, inference.ErrModelNotLoaded):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, ErrUnavailable)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, codeInternal, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
