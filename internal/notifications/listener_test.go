package notifications

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/registry"
)

type stubResolver struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (s *stubResolver) ResolveMessage(attributes map[string]string, data []byte) (*registry.ResolvedEvent, error) {
	return s.resolved, s.err
}

func newTestListener(t *testing.T, resolver *stubResolver, writer *stubWriter, idem *stubIdempotency) *Listener {
	t.Helper()
	return &Listener{
		resolver: resolver,
		consumer: newTestConsumer(t, writer, idem),
		logg: logger.New(logger.Options{
			ServiceName: "worker-test",
			Output:      io.Discard,
		}),
	}
}

func TestProcessAcksHandledEvent(t *testing.T) {
	writer := &stubWriter{}
	resolver := &stubResolver{resolved: resolvedStockAlert(enums.StockStatusLow)}
	listener := newTestListener(t, resolver, writer, newStubIdempotency())

	if !listener.process(context.Background(), map[string]string{}, nil, "m1") {
		t.Fatal("expected handled event to be acked")
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(writer.created))
	}
}

func TestProcessAcksUndecodableEvent(t *testing.T) {
	resolver := &stubResolver{err: registry.NewNonRetryableError(errors.New("bad payload"))}
	listener := newTestListener(t, resolver, &stubWriter{}, newStubIdempotency())

	if !listener.process(context.Background(), map[string]string{}, nil, "m2") {
		t.Fatal("undecodable events must be acked, not redelivered")
	}
}

func TestProcessNacksFailedWrite(t *testing.T) {
	writer := &stubWriter{fail: true}
	resolver := &stubResolver{resolved: resolvedStockAlert(enums.StockStatusLow)}
	listener := newTestListener(t, resolver, writer, newStubIdempotency())

	if listener.process(context.Background(), map[string]string{}, nil, "m3") {
		t.Fatal("failed writes must be nacked so delivery retries")
	}
}
