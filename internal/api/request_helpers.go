package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/schoolsync/roster-api/internal/api/shared"
)

// parseIDParam extracts and parses a UUID path parameter. On failure it
// writes a 400 response and returns false; callers should return
// immediately.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("Missing %s parameter", name))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("Invalid %s format", name))
		return uuid.Nil, false
	}

	return id, true
}

// decodeAndValidate decodes the JSON body into v and validates it. On
// failure it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			SanitizeValidationError(err), err)
		return false
	}

	return true
}
