package notifications

import (
	"context"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes notification persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a notification repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a notification row.
func (r *Repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

type listQuery struct {
	userID     uuid.UUID
	unreadOnly bool
	cursor     *pagination.Cursor
	limit      int
}

// List returns the user's notifications plus broadcasts, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? OR user_id IS NULL", opts.userID)

	if opts.unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID returns one notification.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkRead stamps read_at on a single notification if still unread.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}

// MarkAllRead stamps read_at on every unread notification visible to the user.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("(user_id = ? OR user_id IS NULL) AND read_at IS NULL", userID).
		Update("read_at", at).Error
}
