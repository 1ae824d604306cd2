package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/kitreq/internal/undo"
)

// UndoHandler runs pending undo actions.
type UndoHandler struct {
	Undo *undo.Buffer
}

// Run handles POST /api/undo/{token}.
func (h *UndoHandler) Run(w http.ResponseWriter, r *http.Request) {
	label, err := h.Undo.Undo(r.Context(), r.PathValue("token"), roleOf(r.Context()))
	switch {
	case errors.Is(err, undo.ErrNotFound):
		jsonError(w, http.StatusNotFound, "nothing to undo")
		return
	case errors.Is(err, undo.ErrExpired):
		jsonError(w, http.StatusGone, "undo window has expired")
		return
	case errors.Is(err, undo.ErrForbidden):
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	case err != nil:
		// The entry is gone either way; what it was meant to restore is lost.
		slog.Error("undo failed", "action", label, "user", actor(r.Context()), "error", err)
		jsonError(w, http.StatusInternalServerError, "undo failed")
		return
	}

	slog.Info("action undone", "action", label, "user", actor(r.Context()))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "undone", "action": label})
}
