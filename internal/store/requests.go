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

const requestColumns = `id, item_name, requested, custodian, location, email, phone, expendable, created_at`

func scanRequest(s rowScanner) (model.RequestItem, error) {
	var r model.RequestItem
	err := s.Scan(&r.ID, &r.ItemName, &r.Requested, &r.Custodian, &r.Location,
		&r.Email, &r.Phone, &r.Expendable, &r.CreatedAt)
	return r, err
}

func getRequest(ctx context.Context, q queryer, id string) (*model.RequestItem, error) {
	r, err := scanRequest(q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return &r, nil
}

// CreateRequest stores a new pending request.
func CreateRequest(ctx context.Context, db *sql.DB, r model.RequestItem) (*model.RequestItem, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`INSERT INTO requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ItemName, r.Requested, r.Custodian, r.Location, r.Email, r.Phone, r.Expendable, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return GetRequest(ctx, db, r.ID)
}

// GetRequest returns a pending request by ID, or nil if it does not exist.
func GetRequest(ctx context.Context, db *sql.DB, id string) (*model.RequestItem, error) {
	return getRequest(ctx, db, id)
}

// ListRequests returns all pending requests, oldest first.
func ListRequests(ctx context.Context, db *sql.DB) ([]model.RequestItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var requests []model.RequestItem
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// DeleteRequest removes a pending request. Used both for denial and for a
// requester cancelling their own submission.
func DeleteRequest(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	return requireAffected(result)
}

// ApproveRequest moves a pending request into the inventory. The insert
// and the delete share one transaction, so a request is never left both
// pending and approved.
func ApproveRequest(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := getRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}

	item := req.ToInventory(uuid.NewString())
	if err := insertInventoryItem(ctx, tx, item); err != nil {
		return nil, fmt.Errorf("adding approved item: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("removing approved request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}
	return GetInventoryItem(ctx, db, item.ID)
}
