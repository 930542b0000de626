package modelclient

import (
	"context"
	"errors"

	"github.com/noctalia/sleepsense/pkg/models"
)

var (
	// ErrUnavailable means the model service could not be reached at all:
	// connection refused, timeout, or a failed health probe. The gateway
	// recovers from it locally.
	ErrUnavailable = errors.New("model service unavailable")

	// ErrModelRejected means the service was reachable but refused the
	// request, either with a non-2xx status or an explicit error field.
	ErrModelRejected = errors.New("model prediction failed")

	// ErrInvalidResponse means the service answered 2xx but the body did
	// not carry a numeric prediction.
	ErrInvalidResponse = errors.New("invalid response from model service")
)

// Client defines the interface to the external sleep-prediction service
type Client interface {
	// Predict posts the six features and returns the parsed result
	Predict(ctx context.Context, features []float64) (*models.ModelResult, error)

	// HealthCheck verifies the service is up and reporting healthy
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the client
	Close() error
}
