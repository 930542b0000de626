package modelclient

import (
	"context"
	"errors"
	"time"

	"github.com/noctalia/sleepsense/internal/events"
	"github.com/noctalia/sleepsense/internal/heuristic"
	"github.com/noctalia/sleepsense/internal/logger"
	"github.com/noctalia/sleepsense/internal/resilience"
	"github.com/noctalia/sleepsense/pkg/models"
)

// Gateway mediates all predictions. It health-gates the model service
// before each call and substitutes the local heuristic whenever the
// service cannot be reached, so callers always get a usable number.
// Application-level rejections from a reachable service are surfaced.
//
// A circuit breaker wraps the predict path: repeated connection failures
// open it and subsequent requests skip straight to the heuristic instead
// of burning the full request timeout.
type Gateway struct {
	client    Client
	breaker   *resilience.CircuitBreaker
	publisher *events.Publisher
}

type GatewayConfig struct {
	Client             Client
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
	OnStateChange      func(name string, from, to resilience.State)
	Publisher          *events.Publisher
}

func NewGateway(cfg GatewayConfig) *Gateway {
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "model-service",
		MaxFailures:   cfg.BreakerMaxFailures,
		Timeout:       cfg.BreakerTimeout,
		OnStateChange: cfg.OnStateChange,
	})

	return &Gateway{
		client:    cfg.Client,
		breaker:   breaker,
		publisher: cfg.Publisher,
	}
}

// Predict returns a prediction for the requested model. The caller is
// expected to have validated the features already.
func (g *Gateway) Predict(ctx context.Context, model string, features []float64) (*models.ModelResult, error) {
	if err := g.client.HealthCheck(ctx); err != nil {
		logger.WithComponent("gateway").Warnf("Model service health check failed: %v", err)
		g.publisher.ModelUnhealthy(err)
		return g.fallback(model, features,
			model+" (mock - server unavailable)",
			"Model server unavailable, using enhanced fallback prediction")
	}

	var result *models.ModelResult
	var appErr error

	err := g.breaker.Execute(func() error {
		r, err := g.client.Predict(ctx, features)
		if err != nil {
			// Rejections and malformed bodies mean the service is up;
			// they must not trip the breaker or trigger the fallback.
			if errors.Is(err, ErrModelRejected) || errors.Is(err, ErrInvalidResponse) {
				appErr = err
				return nil
			}
			return err
		}
		result = r
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrUnavailable) || errors.Is(err, resilience.ErrCircuitOpen) {
			logger.WithComponent("gateway").Warnf("Model service unreachable, using fallback: %v", err)
			return g.fallback(model, features,
				model+" (mock)",
				"Using mock prediction as model server is not available")
		}
		return nil, err
	}
	if appErr != nil {
		return nil, appErr
	}

	if result.Model == "" {
		result.Model = model
	}
	if result.Accuracy == "" {
		result.Accuracy = "Model-based prediction"
	}
	return result, nil
}

func (g *Gateway) fallback(model string, features []float64, tag, note string) (*models.ModelResult, error) {
	value, err := heuristic.Predict(features)
	if err != nil {
		return nil, err
	}

	in := models.InputFromFeatures(features)
	available := heuristic.AvailableTime(in)

	return &models.ModelResult{
		Prediction:  value,
		Model:       tag,
		Accuracy:    "N/A (mock prediction)",
		Source:      models.SourceHeuristic,
		Explanation: heuristic.Explanations(in, value),
		HealthInsights: map[string]interface{}{
			"minimum_healthy_sleep":     heuristic.MinimumSleep(in.TotalActivityTime()),
			"maximum_healthy_sleep":     heuristic.MaxSleepHours,
			"meets_minimum_requirement": value >= 4.0,
			"ideal_sleep_range":         "6-8 hours",
			"available_time":            available,
		},
		AvailableTime: &available,
		Note:          note,
	}, nil
}

// HealthCheck reports the model service health without a fallback.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	return g.client.HealthCheck(ctx)
}

// BreakerState exposes the predict-path circuit state for health reporting.
func (g *Gateway) BreakerState() resilience.State {
	return g.breaker.State()
}

func (g *Gateway) Close() error {
	return g.client.Close()
}
