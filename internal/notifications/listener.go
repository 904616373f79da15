package notifications

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/registry"
)

type eventResolver interface {
	ResolveMessage(attributes map[string]string, data []byte) (*registry.ResolvedEvent, error)
}

// Listener pulls farm events off the subscription and feeds them to the
// consumer. Undecodable messages are acked so they do not wedge the stream.
type Listener struct {
	subscription *pubsub.Subscriber
	resolver     eventResolver
	consumer     *Consumer
	logg         *logger.Logger
}

// NewListener builds the subscription loop around a consumer.
func NewListener(subscription *pubsub.Subscriber, resolver eventResolver, consumer *Consumer, logg *logger.Logger) (*Listener, error) {
	if subscription == nil {
		return nil, fmt.Errorf("farm subscription required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("event resolver required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("consumer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Listener{
		subscription: subscription,
		resolver:     resolver,
		consumer:     consumer,
		logg:         logg,
	}, nil
}

// Run starts the receive loop until the context is canceled.
func (l *Listener) Run(ctx context.Context) error {
	return l.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if l.process(ctx, msg.Attributes, msg.Data, msg.ID) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process reports whether the message should be acked.
func (l *Listener) process(ctx context.Context, attributes map[string]string, data []byte, messageID string) bool {
	logCtx := l.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": attributes["event_type"],
	})

	resolved, err := l.resolver.ResolveMessage(attributes, data)
	if err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			l.logg.Error(logCtx, "dropping undecodable event", err)
			return true
		}
		l.logg.Error(logCtx, "failed to resolve event", err)
		return false
	}

	if err := l.consumer.Handle(ctx, resolved); err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			l.logg.Error(logCtx, "dropping unprocessable event", err)
			return true
		}
		l.logg.Error(logCtx, "event handling failed", err)
		return false
	}
	return true
}
