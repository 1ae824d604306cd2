package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/kitreq/internal/model"
)

// SeedCount is the number of sample items SeedInventory adds.
const SeedCount = 10

var seedNames = []string{
	"Folding Table", "Camping Chair", "Two-way Radio", "Extension Cord", "Pop-up Tent",
	"First Aid Kit", "Cooler Box", "Headlamp", "Flashlight", "Multi-tool",
}

// SeedInventory adds SeedCount sample items with random quantities and
// returns them so the batch can be removed again.
func SeedInventory(ctx context.Context, db *sql.DB) ([]model.InventoryItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	items := make([]model.InventoryItem, 0, SeedCount)
	for i := range SeedCount {
		it := model.InventoryItem{
			ID:         uuid.NewString(),
			ItemName:   fmt.Sprintf("%s %d", seedNames[i%len(seedNames)], i+1),
			Requested:  rand.IntN(10) + 1,
			OnHand:     rand.IntN(5),
			Custodian:  fmt.Sprintf("Test User %d", i+1),
			Location:   fmt.Sprintf("Section %c", 'A'+i%5),
			Email:      fmt.Sprintf("test%d@example.com", i+1),
			Phone:      fmt.Sprintf("555-01%02d", i),
			Expendable: rand.IntN(2) == 1,
			CreatedAt:  now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := insertInventoryItem(ctx, tx, it); err != nil {
			return nil, fmt.Errorf("adding sample item: %w", err)
		}
		items = append(items, it)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing sample items: %w", err)
	}
	return items, nil
}
