package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/settings"
	"github.com/erazemk/kitreq/internal/store"
)

// SurveysHandler handles feedback survey endpoints.
type SurveysHandler struct {
	DB       *sql.DB
	Settings *settings.Cache
}

// Create handles POST /api/surveys.
func (h *SurveysHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.Settings.Get().SurveyEnabled {
		jsonError(w, http.StatusForbidden, "the survey is closed")
		return
	}

	var req model.SurveyResponse
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		storeError(w, err, "failed to save survey")
		return
	}

	created, err := store.CreateSurvey(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to save survey")
		return
	}

	slog.Info("survey submitted", "user_type", created.UserType)
	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/surveys.
func (h *SurveysHandler) List(w http.ResponseWriter, r *http.Request) {
	surveys, err := store.ListSurveys(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list surveys", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list surveys")
		return
	}
	if surveys == nil {
		surveys = []model.SurveyResponse{}
	}
	jsonResponse(w, http.StatusOK, surveys)
}

// Export handles GET /api/surveys/export.
func (h *SurveysHandler) Export(w http.ResponseWriter, r *http.Request) {
	surveys, err := store.ListSurveys(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list surveys", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export surveys")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+store.SurveyExportFilename(time.Now())+`"`)
	if err := store.WriteSurveysCSV(w, surveys); err != nil {
		slog.Error("failed to write survey export", "error", err)
	}
}
