package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/settings"
)

// SettingsHandler handles the runtime settings endpoints.
type SettingsHandler struct {
	Settings *settings.Cache
}

// Get handles GET /api/settings. Public, since the request form needs the
// event name and survey state before anyone signs in.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Settings.Get())
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.Settings.Update(r.Context(), req)
	if err != nil {
		storeError(w, err, "failed to save settings")
		return
	}

	slog.Info("settings updated", "user", actor(r.Context()),
		"event_name", s.EventName, "survey_enabled", s.SurveyEnabled, "require_login", s.RequireLogin)
	jsonResponse(w, http.StatusOK, s)
}
