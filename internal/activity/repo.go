package activity

import (
	"context"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes activity log persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an activity log repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a log entry.
func (r *Repository) Create(ctx context.Context, entry *models.ActivityLog) (*models.ActivityLog, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

type listQuery struct {
	animalType string
	eventType  string
	technician *uuid.UUID
	from       *time.Time
	to         *time.Time
	cursor     *pagination.Cursor
	limit      int
}

// List returns log entries newest first with optional filters.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if opts.animalType != "" {
		query = query.Where("animal_type = ?", opts.animalType)
	}
	if opts.eventType != "" {
		query = query.Where("event_type = ?", opts.eventType)
	}
	if opts.technician != nil {
		query = query.Where("technician_id = ?", *opts.technician)
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

	var rows []models.ActivityLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountBetween counts log entries created inside the window, used by reports.
func (r *Repository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActivityLog{}).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Count(&count).Error
	return count, err
}
