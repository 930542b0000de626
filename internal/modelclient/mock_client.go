package modelclient

import (
	"context"

	"github.com/noctalia/sleepsense/pkg/models"
)

// MockClient is a configurable in-memory Client used in tests and local
// development.
type MockClient struct {
	healthy      bool
	result       *models.ModelResult
	predictErr   error
	healthErr    error
	predictCalls int
	healthCalls  int
}

func NewMockClient() *MockClient {
	return &MockClient{healthy: true}
}

func (c *MockClient) SetHealthy(healthy bool) {
	c.healthy = healthy
}

func (c *MockClient) SetHealthError(err error) {
	c.healthErr = err
}

func (c *MockClient) SetResult(result *models.ModelResult) {
	c.result = result
}

func (c *MockClient) SetPredictError(err error) {
	c.predictErr = err
}

func (c *MockClient) PredictCalls() int {
	return c.predictCalls
}

func (c *MockClient) HealthCalls() int {
	return c.healthCalls
}

func (c *MockClient) HealthCheck(ctx context.Context) error {
	c.healthCalls++
	if c.healthErr != nil {
		return c.healthErr
	}
	if !c.healthy {
		return ErrUnavailable
	}
	return nil
}

func (c *MockClient) Predict(ctx context.Context, features []float64) (*models.ModelResult, error) {
	c.predictCalls++
	if c.predictErr != nil {
		return nil, c.predictErr
	}
	if c.result != nil {
		copied := *c.result
		return &copied, nil
	}
	return &models.ModelResult{
		Prediction: 7.2,
		Model:      "linear_regression",
		Source:     models.SourceModel,
	}, nil
}

func (c *MockClient) Close() error {
	return nil
}
