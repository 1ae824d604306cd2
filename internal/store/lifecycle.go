package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/kitreq/internal/model"
)

// transition loads an item inside a transaction, lets apply check its
// status and change the lifecycle fields, then writes them back.
func transition(ctx context.Context, db *sql.DB, id string, apply func(it *model.InventoryItem) error) (*model.InventoryItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	it, err := getInventoryItem(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrNotFound
	}

	if err := apply(it); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE inventory SET received = ?, missing = ?, verified = ?, returned = ? WHERE id = ?`,
		it.Received, it.Missing, it.Verified, it.Returned, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item lifecycle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing lifecycle update: %w", err)
	}
	return it, nil
}

func requireStatus(it *model.InventoryItem, want model.Status) error {
	if st := it.Status(); st != want {
		return fmt.Errorf("%w: item is %s, expected %s", ErrInvalidTransition, st, want)
	}
	return nil
}

// RecordReceived sets the received count of a missing item. The quantity
// replaces the previous count rather than adding to it.
func RecordReceived(ctx context.Context, db *sql.DB, id string, quantity int) (*model.InventoryItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: received quantity cannot be negative", ErrInvalidQuantity)
	}

	return transition(ctx, db, id, func(it *model.InventoryItem) error {
		if err := requireStatus(it, model.StatusMissing); err != nil {
			return err
		}
		it.Received = quantity
		return nil
	})
}

// AssignItem hands a complete item over to its custodian.
func AssignItem(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	return transition(ctx, db, id, func(it *model.InventoryItem) error {
		if err := requireStatus(it, model.StatusComplete); err != nil {
			return err
		}
		it.Verified = true
		return nil
	})
}

// MarkReturned records that an assigned item came back in full.
func MarkReturned(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	return transition(ctx, db, id, func(it *model.InventoryItem) error {
		if err := requireStatus(it, model.StatusAssigned); err != nil {
			return err
		}
		it.Returned = true
		return nil
	})
}

// RecordMissing records a partial return of an assigned item: received
// becomes the amount handed back and missing the shortfall against the
// requested quantity.
//
// The item is not marked returned and stays assigned, so the count can be
// recorded again. Whether a partial return should also close the item is
// still undecided.
func RecordMissing(ctx context.Context, db *sql.DB, id string, amountReturned int) (*model.InventoryItem, error) {
	return transition(ctx, db, id, func(it *model.InventoryItem) error {
		if err := requireStatus(it, model.StatusAssigned); err != nil {
			return err
		}
		if amountReturned < 0 || amountReturned > it.Requested {
			return fmt.Errorf("%w: amount returned must be between 0 and %d", ErrInvalidQuantity, it.Requested)
		}
		it.Missing = it.Requested - amountReturned
		it.Received = amountReturned
		return nil
	})
}
