package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/store"
	"github.com/erazemk/kitreq/internal/undo"
)

// RequestsHandler handles pending request endpoints.
type RequestsHandler struct {
	DB   *sql.DB
	Hub  *live.Hub
	Undo *undo.Buffer
}

type requestResponse struct {
	Request model.RequestItem `json:"request"`
	Undo    *undo.Action      `json:"undo,omitempty"`
}

// Create handles POST /api/requests. Anyone may submit a request; the
// returned undo token lets the requester withdraw it shortly after.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.RequestItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		storeError(w, err, "failed to submit request")
		return
	}

	created, err := store.CreateRequest(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to submit request")
		return
	}

	action := h.Undo.Add("Request submitted", "", func(ctx context.Context) error {
		if err := store.DeleteRequest(ctx, h.DB, created.ID); err != nil {
			return err
		}
		h.Hub.Publish(ctx, live.Requests)
		return nil
	})
	h.Hub.Publish(r.Context(), live.Requests)

	slog.Info("request submitted", "item", created.ItemName, "requested", created.Requested, "custodian", created.Custodian)
	jsonResponse(w, http.StatusCreated, requestResponse{Request: *created, Undo: &action})
}

// List handles GET /api/requests.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := store.ListRequests(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list requests", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if requests == nil {
		requests = []model.RequestItem{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Approve handles POST /api/requests/{id}/approve.
func (h *RequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	item, err := store.ApproveRequest(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to approve request")
		return
	}
	h.Hub.Publish(r.Context(), live.Requests, live.Inventory)

	slog.Info("request approved", "user", actor(r.Context()), "item", item.ItemName, "id", item.ID)
	jsonResponse(w, http.StatusOK, item.View())
}

// Deny handles DELETE /api/requests/{id}.
func (h *RequestsHandler) Deny(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.DeleteRequest(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to deny request")
		return
	}
	h.Hub.Publish(r.Context(), live.Requests)

	slog.Info("request denied", "user", actor(r.Context()), "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "request denied"})
}
