package events

import (
	"github.com/noctalia/sleepsense/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	if p == nil {
		return nil
	}
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p == nil || p.bus == nil {
		return
	}
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) PredictionCompleted(result *models.ModelResult, quality models.SleepQuality) {
	event := models.NewEvent(models.EventTypePredictionCompleted, "Prediction completed").
		WithData(map[string]interface{}{
			"prediction":    result.Prediction,
			"model":         result.Model,
			"source":        result.Source,
			"sleep_quality": quality,
		})
	p.publish(event)
}

func (p *Publisher) FallbackUsed(model, reason string) {
	event := models.NewEvent(models.EventTypeFallbackUsed, "Heuristic fallback used: "+reason).
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"model":  model,
			"reason": reason,
		})
	p.publish(event)
}

func (p *Publisher) ModelUnhealthy(err error) {
	event := models.NewEvent(models.EventTypeModelUnhealthy, "Model service unhealthy").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) RecommendationFallback(reason string) {
	event := models.NewEvent(models.EventTypeRecommendationFallback, "Rule-based recommendation used").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"reason": reason,
		})
	p.publish(event)
}

func (p *Publisher) RecordSaved(record *models.PredictionRecord) {
	event := models.NewEvent(models.EventTypeRecordSaved, "Prediction record saved").
		WithData(map[string]interface{}{
			"id":            record.ID,
			"user_id":       record.UserID,
			"prediction":    record.Prediction,
			"sleep_quality": record.SleepQuality,
		})
	p.publish(event)
}

func (p *Publisher) Alert(severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(message string, err error) {
	event := models.NewEvent(models.EventTypeError, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
