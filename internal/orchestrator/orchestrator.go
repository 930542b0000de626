package orchestrator

import (
	"context"
	"fmt"

	"github.com/noctalia/sleepsense/internal/events"
	"github.com/noctalia/sleepsense/internal/heuristic"
	"github.com/noctalia/sleepsense/internal/logger"
	"github.com/noctalia/sleepsense/internal/modelclient"
	"github.com/noctalia/sleepsense/internal/recommend"
	"github.com/noctalia/sleepsense/pkg/models"
	"github.com/noctalia/sleepsense/pkg/validation"
)

// InputError marks validation failures so the transport layer can map
// them to a 400 instead of a 500.
type InputError struct {
	msg string
}

func (e *InputError) Error() string {
	return e.msg
}

// Request is a prediction request as received from the transport layer.
type Request struct {
	Model    string    `json:"model"`
	Features []float64 `json:"features"`
}

// Response is the full prediction payload returned to clients. The
// prediction is formatted to two decimals; enrichment fields from the
// model service pass through when present.
type Response struct {
	Prediction         string                 `json:"prediction"`
	Model              string                 `json:"model"`
	Accuracy           string                 `json:"accuracy"`
	SleepQuality       models.SleepQuality    `json:"sleep_quality"`
	Recommendation     string                 `json:"recommendation"`
	AIRecommendedSleep *float64               `json:"ai_recommended_sleep,omitempty"`
	QualityScore       *float64               `json:"quality_score,omitempty"`
	HealthInsights     map[string]interface{} `json:"health_insights,omitempty"`
	WasConstrained     *bool                  `json:"was_constrained,omitempty"`
	Explanation        []string               `json:"explanation,omitempty"`
	AvailableTime      *float64               `json:"available_time,omitempty"`
	Note               string                 `json:"note,omitempty"`
	Data               models.PredictionInput `json:"data"`
}

// RecordStore persists prediction records.
type RecordStore interface {
	Create(ctx context.Context, record *models.PredictionRecord) error
}

// Service runs the prediction pipeline: validate, predict through the
// gateway, derive the quality label, generate a recommendation, and
// optionally persist. Persistence failures never fail the request.
type Service struct {
	gateway     *modelclient.Gateway
	recommender *recommend.Generator
	records     RecordStore
	publisher   *events.Publisher
}

type Config struct {
	Gateway     *modelclient.Gateway
	Recommender *recommend.Generator
	Records     RecordStore
	Publisher   *events.Publisher
}

func NewService(cfg Config) *Service {
	return &Service{
		gateway:     cfg.Gateway,
		recommender: cfg.Recommender,
		records:     cfg.Records,
		publisher:   cfg.Publisher,
	}
}

// Predict runs the full pipeline. userID of zero means anonymous; a
// positive userID attributes the stored record to that user.
func (s *Service) Predict(ctx context.Context, req Request, userID int) (*Response, error) {
	if err := validation.ValidateModel(req.Model); err != nil {
		return nil, &InputError{msg: err.Error()}
	}
	if err := validation.ValidateFeatures(req.Features); err != nil {
		return nil, &InputError{msg: err.Error()}
	}

	in := models.InputFromFeatures(req.Features)
	publisher := s.events(ctx)

	result, err := s.gateway.Predict(ctx, req.Model, req.Features)
	if err != nil {
		publisher.Error("Prediction failed", err)
		return nil, err
	}

	quality := heuristic.Quality(result.Prediction)

	if result.Source == models.SourceHeuristic {
		publisher.FallbackUsed(result.Model, result.Note)
	}
	publisher.PredictionCompleted(result, quality)

	recommendation := s.recommender.Generate(ctx, in, result.Prediction)

	s.persist(ctx, in, result, quality, recommendation, userID)

	return &Response{
		Prediction:         fmt.Sprintf("%.2f", result.Prediction),
		Model:              result.Model,
		Accuracy:           result.Accuracy,
		SleepQuality:       quality,
		Recommendation:     recommendation,
		AIRecommendedSleep: result.AIRecommendedSleep,
		QualityScore:       result.QualityScore,
		HealthInsights:     result.HealthInsights,
		WasConstrained:     result.WasConstrained,
		Explanation:        result.Explanation,
		AvailableTime:      result.AvailableTime,
		Note:               result.Note,
		Data:               in,
	}, nil
}

// SaveRecord stores a caller-supplied prediction, deriving the quality
// label and recommendation when they are missing.
func (s *Service) SaveRecord(ctx context.Context, record *models.PredictionRecord) error {
	if s.records == nil {
		return fmt.Errorf("persistence is not configured")
	}

	if err := validation.ValidateInput(record.Input()); err != nil {
		return &InputError{msg: err.Error()}
	}

	if record.ID == "" {
		record.ID = models.NewUUID()
	}
	if record.SleepQuality == "" {
		record.SleepQuality = heuristic.Quality(record.Prediction)
	}
	if record.Source == "" {
		record.Source = models.SourceModel
	}
	if record.Recommendation == "" {
		record.Recommendation = s.recommender.Generate(ctx, record.Input(), record.Prediction)
	}

	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	s.events(ctx).RecordSaved(record)
	return nil
}

// persist writes the prediction to storage when a store is configured.
// Failures are logged and swallowed: storage is best-effort here.
func (s *Service) persist(ctx context.Context, in models.PredictionInput, result *models.ModelResult, quality models.SleepQuality, recommendation string, userID int) {
	if s.records == nil {
		return
	}

	record := &models.PredictionRecord{
		ID:             models.NewUUID(),
		UserID:         userID,
		WorkoutTime:    in.WorkoutTime,
		ReadingTime:    in.ReadingTime,
		PhoneTime:      in.PhoneTime,
		WorkHours:      in.WorkHours,
		CaffeineIntake: in.CaffeineIntake,
		RelaxationTime: in.RelaxationTime,
		Prediction:     result.Prediction,
		SleepQuality:   quality,
		Model:          result.Model,
		Source:         result.Source,
		Recommendation: recommendation,
	}

	if err := s.records.Create(ctx, record); err != nil {
		logger.WithComponent("orchestrator").Warnf("Failed to persist prediction: %v", err)
		s.events(ctx).Error("Failed to persist prediction", err)
		return
	}

	s.events(ctx).RecordSaved(record)
}

// events returns the publisher stamped with the request's trace ID when
// one is present in the context.
func (s *Service) events(ctx context.Context) *events.Publisher {
	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		return s.publisher.WithTraceID(traceID)
	}
	return s.publisher
}

// HealthCheck proxies the model service health through the gateway.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.gateway.HealthCheck(ctx)
}

// BreakerState exposes the gateway circuit state for health reporting.
func (s *Service) BreakerState() string {
	return s.gateway.BreakerState().String()
}
