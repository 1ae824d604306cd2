package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/store"
	"github.com/erazemk/kitreq/internal/undo"
)

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	DB   *sql.DB
	Hub  *live.Hub
	Undo *undo.Buffer
}

type itemResponse struct {
	Item model.InventoryView `json:"item"`
	Undo *undo.Action        `json:"undo,omitempty"`
}

func filterFromQuery(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	return model.ParseFilter(q.Get("status"), q.Get("filter"))
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := store.ListInventory(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}

	jsonResponse(w, http.StatusOK, views(filter.Apply(items)))
}

// Summary handles GET /api/inventory/summary.
func (h *InventoryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListInventory(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to summarize inventory")
		return
	}
	jsonResponse(w, http.StatusOK, model.Summarize(items))
}

// Export handles GET /api/inventory/export.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := store.ListInventory(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export inventory")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+store.InventoryExportFilename(time.Now())+`"`)
	if err := store.WriteInventoryCSV(w, filter.Apply(items)); err != nil {
		slog.Error("failed to write inventory export", "error", err)
	}
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetInventoryItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item.View())
}

// Create handles POST /api/inventory. The new item can be removed again
// through the returned undo token.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.InventoryItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Normalize()
	if err := req.ValidateNew(); err != nil {
		storeError(w, err, "failed to create item")
		return
	}

	item, err := store.CreateInventoryItem(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to create item")
		return
	}

	action := h.Undo.Add("Item added", model.RoleStaff, func(ctx context.Context) error {
		if err := store.DeleteInventoryItem(ctx, h.DB, item.ID); err != nil {
			return err
		}
		h.Hub.Publish(ctx, live.Inventory)
		return nil
	})
	h.Hub.Publish(r.Context(), live.Inventory)

	slog.Info("item created", "user", actor(r.Context()), "item", item.ItemName, "id", item.ID)
	jsonResponse(w, http.StatusCreated, itemResponse{Item: item.View(), Undo: &action})
}

// Update handles PUT /api/inventory/{id}.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ItemEdit
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		storeError(w, err, "failed to update item")
		return
	}

	item, err := store.UpdateInventoryItem(r.Context(), h.DB, r.PathValue("id"), req)
	if err != nil {
		storeError(w, err, "failed to update item")
		return
	}
	h.Hub.Publish(r.Context(), live.Inventory)

	slog.Info("item updated", "user", actor(r.Context()), "id", item.ID, "status", item.Status())
	jsonResponse(w, http.StatusOK, item.View())
}

// Delete handles DELETE /api/inventory/{id}.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.DeleteInventoryItem(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete item")
		return
	}
	h.Hub.Publish(r.Context(), live.Inventory)

	slog.Info("item deleted", "user", actor(r.Context()), "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
