package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctalia/sleepsense/internal/events"
	"github.com/noctalia/sleepsense/pkg/models"
)

func receive(t *testing.T, ch <-chan *models.Event) *models.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func TestEventBus_SubscribeByType(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()

	fallbacks := bus.Subscribe(models.EventTypeFallbackUsed)

	bus.Publish(models.NewEvent(models.EventTypePredictionCompleted, "done"))
	bus.Publish(models.NewEvent(models.EventTypeFallbackUsed, "fallback"))

	event := receive(t, fallbacks)
	assert.Equal(t, models.EventTypeFallbackUsed, event.Type)
	assert.Equal(t, "fallback", event.Message)

	select {
	case extra := <-fallbacks:
		t.Fatalf("unexpected event: %v", extra.Type)
	default:
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()

	all := bus.SubscribeAll()

	bus.Publish(models.NewEvent(models.EventTypePredictionCompleted, "one"))
	bus.Publish(models.NewEvent(models.EventTypeAlert, "two"))

	first := receive(t, all)
	second := receive(t, all)
	assert.Equal(t, models.EventTypePredictionCompleted, first.Type)
	assert.Equal(t, models.EventTypeAlert, second.Type)
}

func TestPublisher_AttachesTraceID(t *testing.T) {
	bus := events.NewEventBus(8)
	defer bus.Close()

	ch := bus.Subscribe(models.EventTypeFallbackUsed)

	publisher := events.NewPublisher(bus).WithTraceID("trace-123")
	publisher.FallbackUsed("linear_regression (mock)", "server unreachable")

	event := receive(t, ch)
	require.Equal(t, models.EventTypeFallbackUsed, event.Type)
	assert.Equal(t, "trace-123", event.TraceID)
	assert.Equal(t, models.SeverityWarning, event.Severity)
}

func TestPublisher_NilSafe(t *testing.T) {
	var publisher *events.Publisher

	assert.NotPanics(t, func() {
		publisher.FallbackUsed("m", "r")
		publisher.Alert(models.SeverityInfo, "msg", nil)
	})
}
