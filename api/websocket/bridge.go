package websocket

import (
	"context"

	"github.com/noctalia/sleepsense/internal/logger"
	"github.com/noctalia/sleepsense/pkg/models"
)

// EventBridge forwards pipeline events to WebSocket clients
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for events and forwarding to WebSocket clients
func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

// Stop stops the event bridge
func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	msgType, topic := mapEventType(event.Type)
	if msgType == "" {
		return
	}

	msg := &OutgoingMessage{
		Type:      msgType,
		Topic:     topic,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
	}

	data, err := msg.JSON()
	if err != nil {
		logger.Errorf("Failed to marshal WebSocket message: %v", err)
		return
	}

	b.hub.BroadcastToTopic(topic, data)
}

func mapEventType(eventType models.EventType) (MessageType, string) {
	switch eventType {
	case models.EventTypePredictionCompleted:
		return MessageTypePrediction, TopicPredictions
	case models.EventTypeFallbackUsed:
		return MessageTypeFallback, TopicPredictions
	case models.EventTypeModelUnhealthy:
		return MessageTypeModelHealth, TopicHealth
	case models.EventTypeRecordSaved:
		return MessageTypeRecord, TopicPredictions
	case models.EventTypeAlert:
		return MessageTypeAlert, TopicAlerts
	case models.EventTypeError:
		return MessageTypeError, TopicAlerts
	default:
		// Skip internal-only events like recommendation_fallback
		return "", ""
	}
}
