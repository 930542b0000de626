package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageTypePrediction  MessageType = "prediction"
	MessageTypeFallback    MessageType = "fallback"
	MessageTypeModelHealth MessageType = "model_health"
	MessageTypeRecord      MessageType = "record"
	MessageTypeAlert       MessageType = "alert"
	MessageTypeError       MessageType = "error"
)

// Topics clients can subscribe to.
const (
	TopicPredictions = "predictions"
	TopicHealth      = "health"
	TopicAlerts      = "alerts"
)

// OutgoingMessage is the envelope sent to subscribed clients.
type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	Topic     string      `json:"topic"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func (m *OutgoingMessage) JSON() ([]byte, error) {
	return json.Marshal(m)
}
