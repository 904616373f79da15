package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Just-andreew/aquagen-farm/pkg/config"
	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/payloads"
	"github.com/google/uuid"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry builds the registry with the configured topic name. All
// farm events flow through a single topic; consumers filter on event type.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.FarmTopic == "" {
		return nil, fmt.Errorf("farm topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventInventoryItemAdded,
			AggregateType:  enums.AggregateInventoryItem,
			Topic:          cfg.FarmTopic,
			PayloadFactory: func() interface{} { return &payloads.InventoryItemAddedEvent{} },
		},
		{
			EventType:      enums.EventInventoryDeltaApplied,
			AggregateType:  enums.AggregateInventoryItem,
			Topic:          cfg.FarmTopic,
			PayloadFactory: func() interface{} { return &payloads.InventoryDeltaAppliedEvent{} },
		},
		{
			EventType:      enums.EventInventoryStockLow,
			AggregateType:  enums.AggregateInventoryItem,
			Topic:          cfg.FarmTopic,
			PayloadFactory: func() interface{} { return &payloads.InventoryStockAlertEvent{} },
		},
		{
			EventType:      enums.EventInventoryStockOut,
			AggregateType:  enums.AggregateInventoryItem,
			Topic:          cfg.FarmTopic,
			PayloadFactory: func() interface{} { return &payloads.InventoryStockAlertEvent{} },
		},
		{
			EventType:      enums.EventTaskCompleted,
			AggregateType:  enums.AggregateTask,
			Topic:          cfg.FarmTopic,
			PayloadFactory: func() interface{} { return &payloads.TaskCompletedEvent{} },
		},
		{
			EventType:      enums.EventEmergencyReported,
			AggregateType:  enums.AggregateEmergency,
			Topic:          cfg.FarmTopic,
			PayloadFactory: func() interface{} { return &payloads.EmergencyReportedEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// ResolveMessage decodes a published message back into a typed event using
// the attributes the publisher stamped on it.
func (r *EventRegistry) ResolveMessage(attributes map[string]string, data []byte) (*ResolvedEvent, error) {
	aggregateID, err := uuid.Parse(attributes["aggregate_id"])
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("malformed aggregate_id attribute: %w", err))
	}
	return r.Resolve(models.OutboxEvent{
		EventType:     enums.OutboxEventType(attributes["event_type"]),
		AggregateType: enums.OutboxAggregateType(attributes["aggregate_type"]),
		AggregateID:   aggregateID,
		Payload:       data,
	})
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
