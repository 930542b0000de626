package modelclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctalia/sleepsense/internal/modelclient"
	"github.com/noctalia/sleepsense/internal/resilience"
	"github.com/noctalia/sleepsense/pkg/models"
)

func newGateway(client modelclient.Client) *modelclient.Gateway {
	return modelclient.NewGateway(modelclient.GatewayConfig{
		Client:             client,
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Minute,
	})
}

func TestGateway_HealthySuccess(t *testing.T) {
	mock := modelclient.NewMockClient()
	gateway := newGateway(mock)

	result, err := gateway.Predict(context.Background(), "linear_regression", testFeatures)
	require.NoError(t, err)

	assert.Equal(t, 7.2, result.Prediction)
	assert.Equal(t, "linear_regression", result.Model)
	assert.Equal(t, models.SourceModel, result.Source)
	assert.Equal(t, "Model-based prediction", result.Accuracy)
	assert.Equal(t, 1, mock.PredictCalls())
}

func TestGateway_UnhealthyServiceFallsBack(t *testing.T) {
	mock := modelclient.NewMockClient()
	mock.SetHealthy(false)
	gateway := newGateway(mock)

	result, err := gateway.Predict(context.Background(), "linear_regression", testFeatures)
	require.NoError(t, err)

	assert.Equal(t, models.SourceHeuristic, result.Source)
	assert.Equal(t, "linear_regression (mock - server unavailable)", result.Model)
	assert.Equal(t, "N/A (mock prediction)", result.Accuracy)
	assert.GreaterOrEqual(t, result.Prediction, 4.0)
	assert.LessOrEqual(t, result.Prediction, 12.0)
	assert.NotEmpty(t, result.Note)
	assert.Contains(t, result.HealthInsights, "ideal_sleep_range")
	// Predict must not be attempted when the health gate fails
	assert.Equal(t, 0, mock.PredictCalls())
}

func TestGateway_PredictUnavailableFallsBack(t *testing.T) {
	mock := modelclient.NewMockClient()
	mock.SetPredictError(modelclient.ErrUnavailable)
	gateway := newGateway(mock)

	result, err := gateway.Predict(context.Background(), "linear_regression", testFeatures)
	require.NoError(t, err)

	assert.Equal(t, models.SourceHeuristic, result.Source)
	assert.Equal(t, "linear_regression (mock)", result.Model)
}

func TestGateway_RejectionSurfaces(t *testing.T) {
	mock := modelclient.NewMockClient()
	mock.SetPredictError(modelclient.ErrModelRejected)
	gateway := newGateway(mock)

	_, err := gateway.Predict(context.Background(), "linear_regression", testFeatures)
	assert.ErrorIs(t, err, modelclient.ErrModelRejected)
}

func TestGateway_RejectionsDoNotTripBreaker(t *testing.T) {
	mock := modelclient.NewMockClient()
	mock.SetPredictError(modelclient.ErrModelRejected)
	gateway := newGateway(mock)

	for i := 0; i < 10; i++ {
		_, err := gateway.Predict(context.Background(), "linear_regression", testFeatures)
		assert.ErrorIs(t, err, modelclient.ErrModelRejected)
	}

	assert.Equal(t, resilience.StateClosed, gateway.BreakerState())
}

func TestGateway_BreakerOpensOnRepeatedFailures(t *testing.T) {
	mock := modelclient.NewMockClient()
	mock.SetPredictError(modelclient.ErrUnavailable)
	gateway := newGateway(mock)

	for i := 0; i < 5; i++ {
		result, err := gateway.Predict(context.Background(), "linear_regression", testFeatures)
		require.NoError(t, err)
		assert.Equal(t, models.SourceHeuristic, result.Source)
	}

	assert.Equal(t, resilience.StateOpen, gateway.BreakerState())
	// With the circuit open, the client is no longer called
	calls := mock.PredictCalls()
	_, err := gateway.Predict(context.Background(), "linear_regression", testFeatures)
	require.NoError(t, err)
	assert.Equal(t, calls, mock.PredictCalls())
}

func TestGateway_HealthCheckPassesThrough(t *testing.T) {
	mock := modelclient.NewMockClient()
	gateway := newGateway(mock)

	assert.NoError(t, gateway.HealthCheck(context.Background()))

	mock.SetHealthy(false)
	assert.ErrorIs(t, gateway.HealthCheck(context.Background()), modelclient.ErrUnavailable)
}
