package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:inventory_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  item_name TEXT NOT NULL,
  quantity NUMERIC NOT NULL DEFAULT 0,
  unit TEXT NOT NULL,
  status TEXT NOT NULL,
  last_updated DATETIME NOT NULL,
  created_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS inventory_history_entries (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  change NUMERIC NOT NULL,
  changed_by TEXT NOT NULL,
  changed_by_name TEXT NOT NULL,
  reason TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(history).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM inventory_history_entries")
		db.Exec("DELETE FROM inventory_items")
	})
	return db
}

func insertItem(t *testing.T, db *gorm.DB, name, quantity string, createdAt time.Time) *models.InventoryItem {
	t.Helper()

	qty := decimal.RequireFromString(quantity)
	item := &models.InventoryItem{
		ID:          uuid.New(),
		ItemName:    name,
		Quantity:    qty,
		Unit:        "kg",
		Status:      DeriveStatus(qty),
		LastUpdated: createdAt,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryUpdateQuantityTx(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	item := insertItem(t, db, "fish feed", "30", time.Now().Add(-time.Hour))

	item.Quantity = decimal.RequireFromString("12.5")
	item.Status = enums.StockStatusLow
	item.LastUpdated = time.Now()
	require.NoError(t, repo.UpdateQuantityTx(db, item))

	got, err := repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("12.5")), "quantity %s", got.Quantity)
	assert.Equal(t, enums.StockStatusLow, got.Status)
}

func TestRepositoryListFiltersByStatus(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	base := time.Now().Add(-time.Hour)
	insertItem(t, db, "fish feed", "30", base)
	low := insertItem(t, db, "salt", "5", base.Add(time.Minute))
	insertItem(t, db, "nets", "0", base.Add(2*time.Minute))

	rows, err := repo.List(context.Background(), listQuery{status: "low", limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, low.ID, rows[0].ID)
}

func TestRepositoryListHistoryOrderAndWindow(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	item := insertItem(t, db, "fish feed", "30", time.Now().Add(-time.Hour))
	actor := uuid.New()

	base := time.Now().Add(-30 * time.Minute)
	for i, change := range []string{"-2", "10", "-4"} {
		entry := &models.InventoryHistoryEntry{
			ID:            uuid.New(),
			ItemID:        item.ID,
			ItemName:      item.ItemName,
			Change:        decimal.RequireFromString(change),
			ChangedBy:     actor,
			ChangedByName: "Maria Santos",
			Reason:        "adjustment",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.InsertHistoryTx(db, entry))
	}

	rows, err := repo.ListHistory(context.Background(), historyQuery{itemID: &item.ID, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// newest first
	assert.True(t, rows[0].CreatedAt.After(rows[2].CreatedAt))

	from := base.Add(90 * time.Second)
	windowed, err := repo.ListHistory(context.Background(), historyQuery{itemID: &item.ID, from: &from, limit: 10})
	require.NoError(t, err)
	assert.Len(t, windowed, 1)
}

func TestRepositoryCountConsumedBetween(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	item := insertItem(t, db, "fish feed", "30", time.Now().Add(-time.Hour))
	now := time.Now()

	for _, change := range []string{"-2", "5", "-1"} {
		entry := &models.InventoryHistoryEntry{
			ID:            uuid.New(),
			ItemID:        item.ID,
			ItemName:      item.ItemName,
			Change:        decimal.RequireFromString(change),
			ChangedBy:     uuid.New(),
			ChangedByName: "Maria Santos",
			Reason:        "adjustment",
			CreatedAt:     now,
		}
		require.NoError(t, repo.InsertHistoryTx(db, entry))
	}

	count, err := repo.CountConsumedBetween(context.Background(), now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
