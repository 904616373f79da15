package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	pkgpagination "github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type notificationsRepository interface {
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	List(ctx context.Context, opts listQuery) ([]models.Notification, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// ListParams are the inputs for notification listings.
type ListParams struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

// ListResult carries one page of notifications plus the next cursor.
type ListResult struct {
	Notifications []models.Notification `json:"notifications"`
	Cursor        string                `json:"cursor"`
}

// Service exposes the notification inbox.
type Service interface {
	ListNotifications(ctx context.Context, params ListParams, actor types.Actor) (*ListResult, error)
	MarkRead(ctx context.Context, id uuid.UUID, actor types.Actor) error
	MarkAllRead(ctx context.Context, actor types.Actor) error
}

type service struct {
	repo notificationsRepository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the notification service.
func NewService(repo notificationsRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) ListNotifications(ctx context.Context, params ListParams, actor types.Actor) (*ListResult, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		userID:     actor.UserID,
		unreadOnly: params.UnreadOnly,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Notifications: rows, Cursor: nextCursor}, nil
}

// MarkRead stamps a notification read. Users may only read their own
// notifications or broadcasts.
func (s *service) MarkRead(ctx context.Context, id uuid.UUID, actor types.Actor) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id is required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup notification")
	}
	if notification.UserID != nil && *notification.UserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "notification belongs to another user")
	}

	if err := s.repo.MarkRead(ctx, id, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, actor types.Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}
	if err := s.repo.MarkAllRead(ctx, actor.UserID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return nil
}
