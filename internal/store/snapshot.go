package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/kitreq/internal/model"
)

// Snapshot is the content of the collections cleared by a reset.
type Snapshot struct {
	Inventory []model.InventoryItem   `json:"inventory"`
	Surveys   []model.SurveyResponse `json:"surveys"`
}

// ResetAll deletes every inventory item and survey response and returns
// what was deleted, read in the same transaction as the delete.
func ResetAll(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	inventory, err := listInventory(ctx, tx)
	if err != nil {
		return nil, err
	}
	surveys, err := listSurveys(ctx, tx)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory`); err != nil {
		return nil, fmt.Errorf("clearing inventory: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM surveys`); err != nil {
		return nil, fmt.Errorf("clearing surveys: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing reset: %w", err)
	}
	return &Snapshot{Inventory: inventory, Surveys: surveys}, nil
}

// RestoreSnapshot writes a snapshot back. Records are restored with their
// original IDs and timestamps; a record with the same ID is overwritten.
func RestoreSnapshot(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, it := range snap.Inventory {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, it.ID); err != nil {
			return fmt.Errorf("restoring inventory item: %w", err)
		}
		if err := insertInventoryItem(ctx, tx, it); err != nil {
			return fmt.Errorf("restoring inventory item: %w", err)
		}
	}
	for _, s := range snap.Surveys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, s.ID); err != nil {
			return fmt.Errorf("restoring survey: %w", err)
		}
		if err := insertSurvey(ctx, tx, s); err != nil {
			return fmt.Errorf("restoring survey: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing restore: %w", err)
	}
	return nil
}
