package emergencies

import (
	"context"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes emergency report persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an emergency report repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts the report inside the caller's transaction so the outbox
// row commits atomically with it.
func (r *Repository) CreateTx(tx *gorm.DB, report *models.EmergencyReport) error {
	return tx.Create(report).Error
}

type listQuery struct {
	severity string
	cursor   *pagination.Cursor
	limit    int
}

// List returns reports newest first with an optional severity filter.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.EmergencyReport, error) {
	query := r.db.WithContext(ctx).Model(&models.EmergencyReport{})

	if opts.severity != "" {
		query = query.Where("severity = ?", opts.severity)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.EmergencyReport
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountBetween counts reports raised inside the window, used by reports.
func (r *Repository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EmergencyReport{}).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Count(&count).Error
	return count, err
}
