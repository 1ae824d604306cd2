package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/settings"
	"github.com/erazemk/kitreq/internal/store"
)

// NewSource serves live snapshots in the same shape as the list endpoints.
func NewSource(db *sql.DB, cache *settings.Cache) live.Source {
	return live.SourceFunc(func(ctx context.Context, c live.Collection) (any, error) {
		switch c {
		case live.Inventory:
			items, err := store.ListInventory(ctx, db)
			if err != nil {
				return nil, err
			}
			return views(items), nil
		case live.Requests:
			requests, err := store.ListRequests(ctx, db)
			if err != nil {
				return nil, err
			}
			if requests == nil {
				requests = []model.RequestItem{}
			}
			return requests, nil
		case live.Settings:
			return cache.Get(), nil
		}
		return nil, fmt.Errorf("unknown collection %q", c)
	})
}

// views attaches derived statuses. Never returns nil.
func views(items []model.InventoryItem) []model.InventoryView {
	out := make([]model.InventoryView, 0, len(items))
	for _, it := range items {
		out = append(out, it.View())
	}
	return out
}
