package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/kitreq/internal/auth"
	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/store"
	"github.com/erazemk/kitreq/internal/undo"
)

// AdminHandler handles the admin panel operations.
type AdminHandler struct {
	DB   *sql.DB
	Hub  *live.Hub
	Undo *undo.Buffer
}

type resetRequest struct {
	MasterPassword string `json:"master_password"`
}

type resetResponse struct {
	Inventory int          `json:"inventory"`
	Surveys   int          `json:"surveys"`
	Undo      *undo.Action `json:"undo"`
}

type masterPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type seedResponse struct {
	Items []model.InventoryView `json:"items"`
	Undo  *undo.Action          `json:"undo"`
}

// checkMaster compares password against the stored master password hash.
func (h *AdminHandler) checkMaster(ctx context.Context, password string) (bool, error) {
	hash, err := store.GetMasterPasswordHash(ctx, h.DB)
	if err != nil {
		return false, err
	}
	return auth.CheckPassword(hash, password), nil
}

// Reset handles POST /api/admin/reset. It clears the inventory and the
// survey responses. The deleted records can be written back through the
// returned undo token until the undo window closes.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.checkMaster(r.Context(), req.MasterPassword)
	if err != nil {
		slog.Error("failed to check master password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset")
		return
	}
	if !ok {
		slog.Warn("reset refused: wrong master password", "user", actor(r.Context()), "remote", r.RemoteAddr)
		jsonError(w, http.StatusForbidden, "incorrect master password")
		return
	}

	snap, err := store.ResetAll(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to reset", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset")
		return
	}

	action := h.Undo.Add("All data reset", model.RoleAdmin, func(ctx context.Context) error {
		if err := store.RestoreSnapshot(ctx, h.DB, snap); err != nil {
			return err
		}
		h.Hub.Publish(ctx, live.Inventory)
		return nil
	})
	h.Hub.Publish(r.Context(), live.Inventory)

	slog.Warn("all data reset", "user", actor(r.Context()),
		"inventory", len(snap.Inventory), "surveys", len(snap.Surveys))
	jsonResponse(w, http.StatusOK, resetResponse{
		Inventory: len(snap.Inventory),
		Surveys:   len(snap.Surveys),
		Undo:      &action,
	})
}

// SetMasterPassword handles PUT /api/admin/master-password.
func (h *AdminHandler) SetMasterPassword(w http.ResponseWriter, r *http.Request) {
	var req masterPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := h.checkMaster(r.Context(), req.CurrentPassword)
	if err != nil {
		slog.Error("failed to check master password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update master password")
		return
	}
	if !ok {
		jsonError(w, http.StatusForbidden, "current master password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := store.SetMasterPasswordHash(r.Context(), h.DB, hash); err != nil {
		slog.Error("failed to store master password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update master password")
		return
	}

	slog.Info("master password changed", "user", actor(r.Context()))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "master password updated"})
}

// Seed handles POST /api/admin/seed.
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	items, err := store.SeedInventory(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to add sample items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to add sample items")
		return
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	action := h.Undo.Add("Sample items added", model.RoleAdmin, func(ctx context.Context) error {
		if err := store.DeleteInventoryItems(ctx, h.DB, ids); err != nil {
			return err
		}
		h.Hub.Publish(ctx, live.Inventory)
		return nil
	})
	h.Hub.Publish(r.Context(), live.Inventory)

	slog.Info("sample items added", "user", actor(r.Context()), "count", len(items))
	jsonResponse(w, http.StatusCreated, seedResponse{Items: views(items), Undo: &action})
}
