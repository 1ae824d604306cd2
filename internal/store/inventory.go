package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/kitreq/internal/model"
)

const inventoryColumns = `id, item_name, requested, on_hand, received, missing, verified, returned,
	custodian, location, email, phone, expendable, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rowsQueryer is satisfied by *sql.DB and *sql.Tx.
type rowsQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanInventoryItem(s rowScanner) (model.InventoryItem, error) {
	var it model.InventoryItem
	err := s.Scan(&it.ID, &it.ItemName, &it.Requested, &it.OnHand, &it.Received, &it.Missing,
		&it.Verified, &it.Returned, &it.Custodian, &it.Location, &it.Email, &it.Phone,
		&it.Expendable, &it.CreatedAt)
	return it, err
}

func insertInventoryItem(ctx context.Context, db execer, it model.InventoryItem) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO inventory (`+inventoryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.ItemName, it.Requested, it.OnHand, it.Received, it.Missing,
		it.Verified, it.Returned, it.Custodian, it.Location, it.Email, it.Phone,
		it.Expendable, it.CreatedAt,
	)
	return err
}

func getInventoryItem(ctx context.Context, q queryer, id string) (*model.InventoryItem, error) {
	it, err := scanInventoryItem(q.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	return &it, nil
}

// CreateInventoryItem adds an item directly to the inventory. The lifecycle
// fields always start cleared; only the requested and on-hand quantities
// and the contact details are taken from it.
func CreateInventoryItem(ctx context.Context, db *sql.DB, it model.InventoryItem) (*model.InventoryItem, error) {
	it.ID = uuid.NewString()
	it.Received = 0
	it.Missing = 0
	it.Verified = false
	it.Returned = false
	it.CreatedAt = time.Now().UTC()

	if err := insertInventoryItem(ctx, db, it); err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}
	return GetInventoryItem(ctx, db, it.ID)
}

// GetInventoryItem returns an item by ID, or nil if it does not exist.
func GetInventoryItem(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	return getInventoryItem(ctx, db, id)
}

// ListInventory returns every inventory item, oldest first.
func ListInventory(ctx context.Context, db *sql.DB) ([]model.InventoryItem, error) {
	return listInventory(ctx, db)
}

func listInventory(ctx context.Context, db rowsQueryer) ([]model.InventoryItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateInventoryItem overwrites the editable fields of an item. The
// lifecycle flags and the missing count are left as they are.
func UpdateInventoryItem(ctx context.Context, db *sql.DB, id string, e model.ItemEdit) (*model.InventoryItem, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE inventory SET item_name = ?, requested = ?, on_hand = ?, received = ?,
		        custodian = ?, location = ?, email = ?, phone = ?, expendable = ?
		 WHERE id = ?`,
		e.ItemName, e.Requested, e.OnHand, e.Received,
		e.Custodian, e.Location, e.Email, e.Phone, e.Expendable, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating inventory item: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}
	return GetInventoryItem(ctx, db, id)
}

// DeleteInventoryItem permanently removes an item.
func DeleteInventoryItem(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting inventory item: %w", err)
	}
	return requireAffected(result)
}

// DeleteInventoryItems removes the given items in one transaction. IDs that
// no longer exist are skipped.
func DeleteInventoryItems(ctx context.Context, db *sql.DB, ids []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting inventory item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deletion: %w", err)
	}
	return nil
}

// requireAffected turns an update or delete that matched no row into ErrNotFound.
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
