package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/payloads"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/registry"
)

// ConsumerName keys the Redis idempotency marker for this subscriber.
const ConsumerName = "notifications"

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
}

type idempotencyManager interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns farm events into in-app notifications. Events it does not
// care about are acked without side effects.
type Consumer struct {
	repo        notificationWriter
	idempotency idempotencyManager
	logg        *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(repo notificationWriter, idempotency idempotencyManager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	return &Consumer{repo: repo, idempotency: idempotency, logg: logg}, nil
}

// Handle processes one resolved event at most once. A failed write releases
// the idempotency marker so redelivery can retry.
func (c *Consumer) Handle(ctx context.Context, resolved *registry.ResolvedEvent) error {
	notification := c.build(resolved)
	if notification == nil {
		return nil
	}

	eventID, err := uuid.Parse(resolved.Envelope.EventID)
	if err != nil {
		return registry.NewNonRetryableError(fmt.Errorf("malformed event id %q: %w", resolved.Envelope.EventID, err))
	}

	processed, err := c.idempotency.CheckAndMarkProcessed(ctx, ConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if processed {
		return nil
	}

	if _, err := c.repo.Create(ctx, notification); err != nil {
		if delErr := c.idempotency.Delete(ctx, ConsumerName, eventID); delErr != nil && c.logg != nil {
			c.logg.Error(ctx, "release idempotency marker", delErr)
		}
		return fmt.Errorf("create notification: %w", err)
	}

	if c.logg != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"event_id":   resolved.Envelope.EventID,
			"event_type": string(resolved.Descriptor.EventType),
			"type":       string(notification.Type),
		})
		c.logg.Info(logCtx, "notification created")
	}
	return nil
}

// build maps an event to a broadcast notification, or nil when the event does
// not produce one.
func (c *Consumer) build(resolved *registry.ResolvedEvent) *models.Notification {
	switch payload := resolved.Payload.(type) {
	case *payloads.InventoryStockAlertEvent:
		if payload.Status == enums.StockStatusOutOfStock {
			return &models.Notification{
				Type:    enums.NotificationTypeOutOfStock,
				Title:   "Out of stock",
				Message: fmt.Sprintf("%s is out of stock", payload.ItemName),
			}
		}
		return &models.Notification{
			Type:    enums.NotificationTypeLowStock,
			Title:   "Low stock",
			Message: fmt.Sprintf("%s is running low (%s %s left)", payload.ItemName, payload.Quantity.String(), payload.Unit),
		}
	case *payloads.TaskCompletedEvent:
		return &models.Notification{
			Type:    enums.NotificationTypeTaskCompleted,
			Title:   "Task completed",
			Message: fmt.Sprintf("%q was completed", payload.Title),
		}
	default:
		return nil
	}
}
