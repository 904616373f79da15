package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/payloads"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/registry"
)

type stubWriter struct {
	created []models.Notification
	fail    bool
}

func (w *stubWriter) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if w.fail {
		return nil, fmt.Errorf("db down")
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	w.created = append(w.created, *notification)
	return notification, nil
}

type stubIdempotency struct {
	processed map[uuid.UUID]bool
	deleted   []uuid.UUID
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{processed: map[uuid.UUID]bool{}}
}

func (s *stubIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if s.processed[eventID] {
		return true, nil
	}
	s.processed[eventID] = true
	return false, nil
}

func (s *stubIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	delete(s.processed, eventID)
	return nil
}

func resolvedStockAlert(status enums.StockStatus) *registry.ResolvedEvent {
	eventType := enums.EventInventoryStockLow
	if status == enums.StockStatusOutOfStock {
		eventType = enums.EventInventoryStockOut
	}
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{EventType: eventType},
		Envelope:   outbox.PayloadEnvelope{EventID: uuid.NewString()},
		Payload: &payloads.InventoryStockAlertEvent{
			ItemID:   uuid.New(),
			ItemName: "fish feed",
			Quantity: decimal.RequireFromString("4.5"),
			Unit:     "kg",
			Status:   status,
		},
	}
}

func newTestConsumer(t *testing.T, writer *stubWriter, idem *stubIdempotency) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(writer, idem, nil)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}
	return consumer
}

func TestHandleLowStockCreatesBroadcast(t *testing.T) {
	writer := &stubWriter{}
	consumer := newTestConsumer(t, writer, newStubIdempotency())

	if err := consumer.Handle(context.Background(), resolvedStockAlert(enums.StockStatusLow)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(writer.created))
	}
	created := writer.created[0]
	if created.Type != enums.NotificationTypeLowStock {
		t.Fatalf("unexpected type %s", created.Type)
	}
	if created.UserID != nil {
		t.Fatal("stock alerts must be broadcasts")
	}
}

func TestHandleOutOfStockUsesOutType(t *testing.T) {
	writer := &stubWriter{}
	consumer := newTestConsumer(t, writer, newStubIdempotency())

	if err := consumer.Handle(context.Background(), resolvedStockAlert(enums.StockStatusOutOfStock)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if writer.created[0].Type != enums.NotificationTypeOutOfStock {
		t.Fatalf("unexpected type %s", writer.created[0].Type)
	}
}

func TestHandleDuplicateEventIsSkipped(t *testing.T) {
	writer := &stubWriter{}
	consumer := newTestConsumer(t, writer, newStubIdempotency())

	event := resolvedStockAlert(enums.StockStatusLow)
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("second handle: %v", err)
	}
	if len(writer.created) != 1 {
		t.Fatalf("duplicate delivery created %d notifications", len(writer.created))
	}
}

func TestHandleFailedWriteReleasesMarker(t *testing.T) {
	writer := &stubWriter{fail: true}
	idem := newStubIdempotency()
	consumer := newTestConsumer(t, writer, idem)

	event := resolvedStockAlert(enums.StockStatusLow)
	if err := consumer.Handle(context.Background(), event); err == nil {
		t.Fatal("expected error")
	}
	if len(idem.deleted) != 1 {
		t.Fatal("expected idempotency marker released for retry")
	}

	writer.fail = false
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected retry to create the notification, got %d", len(writer.created))
	}
}

func TestHandleIgnoresUninterestingEvents(t *testing.T) {
	writer := &stubWriter{}
	idem := newStubIdempotency()
	consumer := newTestConsumer(t, writer, idem)

	event := &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{EventType: enums.EventInventoryDeltaApplied},
		Envelope:   outbox.PayloadEnvelope{EventID: uuid.NewString()},
		Payload:    &payloads.InventoryDeltaAppliedEvent{},
	}
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(writer.created) != 0 {
		t.Fatal("delta events must not create notifications")
	}
	if len(idem.processed) != 0 {
		t.Fatal("skipped events should not burn idempotency markers")
	}
}
