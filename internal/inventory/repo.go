package inventory

import (
	"context"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes inventory persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an inventory repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new inventory item row.
func (r *Repository) Create(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CreateTx inserts a new item inside the caller's transaction so the creation
// commits atomically with its outbox event.
func (r *Repository) CreateTx(tx *gorm.DB, item *models.InventoryItem) error {
	return tx.Create(item).Error
}

// FindByID returns the item without locking.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate row-locks the item inside the caller's transaction so the
// read-modify-write of a delta application is serialized per item.
func (r *Repository) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateQuantityTx persists the mutated quantity/status/last_updated columns.
func (r *Repository) UpdateQuantityTx(tx *gorm.DB, item *models.InventoryItem) error {
	return tx.Model(&models.InventoryItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":     item.Quantity,
			"status":       item.Status,
			"last_updated": item.LastUpdated,
		}).Error
}

// InsertHistoryTx appends one audit trail entry inside the caller's transaction.
func (r *Repository) InsertHistoryTx(tx *gorm.DB, entry *models.InventoryHistoryEntry) error {
	return tx.Create(entry).Error
}

type listQuery struct {
	status string
	cursor *pagination.Cursor
	limit  int
}

// List returns items using cursor pagination, optionally filtered by status.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.InventoryItem, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.InventoryItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type historyQuery struct {
	itemID *uuid.UUID
	from   *time.Time
	to     *time.Time
	cursor *pagination.Cursor
	limit  int
}

// ListHistory returns audit trail entries, newest first.
func (r *Repository) ListHistory(ctx context.Context, opts historyQuery) ([]models.InventoryHistoryEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryHistoryEntry{})

	if opts.itemID != nil {
		query = query.Where("item_id = ?", *opts.itemID)
	}
	if opts.from != nil {
		query = query.Where("created_at >= ?", *opts.from)
	}
	if opts.to != nil {
		query = query.Where("created_at <= ?", *opts.to)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.InventoryHistoryEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountConsumedBetween sums negative changes over a window, used by reports.
func (r *Repository) CountConsumedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InventoryHistoryEntry{}).
		Where("change < 0 AND created_at >= ? AND created_at <= ?", from, to).
		Count(&count).Error
	return count, err
}
