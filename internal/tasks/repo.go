package tasks

import (
	"context"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes task persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a task repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new task row.
func (r *Repository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// FindByID returns the task without locking.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDForUpdate row-locks the task so concurrent moves serialize and the
// consumed_at marker is checked-and-set exactly once.
func (r *Repository) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateColumnsTx persists the provided columns inside the caller's transaction.
func (r *Repository) UpdateColumnsTx(tx *gorm.DB, id uuid.UUID, columns map[string]any) error {
	return tx.Model(&models.Task{}).Where("id = ?", id).Updates(columns).Error
}

// UpdateColumns persists the provided columns outside a transaction.
func (r *Repository) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(columns).Error
}

// Delete removes the task row. Deletion is unconditional and irreversible.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id).Error
}

type listQuery struct {
	status     string
	assignedTo *uuid.UUID
	cursor     *pagination.Cursor
	limit      int
}

// List returns tasks using cursor pagination, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if opts.status != "" {
		query = query.Where("status = ?", opts.status)
	}
	if opts.assignedTo != nil {
		query = query.Where("assigned_to = ?", *opts.assignedTo)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Task
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountCompletedBetween counts first completions over a window, used by reports.
func (r *Repository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("consumed_at IS NOT NULL AND consumed_at >= ? AND consumed_at <= ?", from, to).
		Count(&count).Error
	return count, err
}
