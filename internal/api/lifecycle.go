package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/store"
)

type receivedRequest struct {
	Quantity *int `json:"quantity"`
}

type missingRequest struct {
	AmountReturned *int `json:"amount_returned"`
}

// finishTransition publishes and writes the result of a lifecycle change.
func (h *InventoryHandler) finishTransition(w http.ResponseWriter, r *http.Request, op string, item *model.InventoryItem, err error) {
	if err != nil {
		storeError(w, err, "failed to update item")
		return
	}
	h.Hub.Publish(r.Context(), live.Inventory)

	slog.Info("item "+op, "user", actor(r.Context()), "id", item.ID,
		"received", item.Received, "missing", item.Missing, "status", item.Status())
	jsonResponse(w, http.StatusOK, item.View())
}

// Received handles POST /api/inventory/{id}/received. The quantity
// replaces the previous received count.
func (h *InventoryHandler) Received(w http.ResponseWriter, r *http.Request) {
	var req receivedRequest
	if err := decodeJSON(r, &req); err != nil || req.Quantity == nil {
		jsonError(w, http.StatusBadRequest, "quantity required")
		return
	}

	item, err := store.RecordReceived(r.Context(), h.DB, r.PathValue("id"), *req.Quantity)
	h.finishTransition(w, r, "received", item, err)
}

// Assign handles POST /api/inventory/{id}/assign.
func (h *InventoryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	item, err := store.AssignItem(r.Context(), h.DB, r.PathValue("id"))
	h.finishTransition(w, r, "assigned", item, err)
}

// Return handles POST /api/inventory/{id}/return.
func (h *InventoryHandler) Return(w http.ResponseWriter, r *http.Request) {
	item, err := store.MarkReturned(r.Context(), h.DB, r.PathValue("id"))
	h.finishTransition(w, r, "returned", item, err)
}

// Missing handles POST /api/inventory/{id}/missing.
func (h *InventoryHandler) Missing(w http.ResponseWriter, r *http.Request) {
	var req missingRequest
	if err := decodeJSON(r, &req); err != nil || req.AmountReturned == nil {
		jsonError(w, http.StatusBadRequest, "amount_returned required")
		return
	}

	item, err := store.RecordMissing(r.Context(), h.DB, r.PathValue("id"), *req.AmountReturned)
	h.finishTransition(w, r, "missing recorded", item, err)
}
