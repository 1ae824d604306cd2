package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps an error from validation or the store to a response.
// Anything unexpected is logged and reported as a 500 with the generic
// message, so store internals never reach the client.
func storeError(w http.ResponseWriter, err error, message string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidQuantity):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(message, "error", err)
		jsonError(w, http.StatusInternalServerError, message)
	}
}
