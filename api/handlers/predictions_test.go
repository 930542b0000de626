package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctalia/sleepsense/api/handlers"
	"github.com/noctalia/sleepsense/internal/events"
	"github.com/noctalia/sleepsense/internal/modelclient"
	"github.com/noctalia/sleepsense/internal/orchestrator"
	"github.com/noctalia/sleepsense/internal/recommend"
	"github.com/noctalia/sleepsense/internal/resilience"
)

func newPredictRouter(client modelclient.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)

	gateway := modelclient.NewGateway(modelclient.GatewayConfig{
		Client:             client,
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Minute,
	})
	generator := recommend.NewGenerator(recommend.GeneratorConfig{
		Retry: resilience.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond},
	})
	service := orchestrator.NewService(orchestrator.Config{
		Gateway:     gateway,
		Recommender: generator,
		Publisher:   events.NewPublisher(events.NewEventBus(16)),
	})

	handler := handlers.NewPredictionHandler(service, nil, 50, 500)

	router := gin.New()
	router.POST("/api/predict", handler.Predict)
	return router
}

func doPredict(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPredictEndpoint_Success(t *testing.T) {
	router := newPredictRouter(modelclient.NewMockClient())

	rec := doPredict(t, router, `{"model":"linear_regression","features":[1,0.5,2,8,150,1]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "7.20", resp["prediction"])
	assert.Equal(t, "linear_regression", resp["model"])
	assert.Equal(t, "Good", resp["sleep_quality"])
	assert.NotEmpty(t, resp["recommendation"])

	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1.0, data["workoutTime"])
}

func TestPredictEndpoint_FallbackWhenModelDown(t *testing.T) {
	mock := modelclient.NewMockClient()
	mock.SetHealthy(false)
	router := newPredictRouter(mock)

	rec := doPredict(t, router, `{"model":"linear_regression","features":[1,0.5,2,8,150,1]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "linear_regression (mock - server unavailable)", resp["model"])
	assert.Equal(t, "N/A (mock prediction)", resp["accuracy"])
	assert.NotEmpty(t, resp["note"])
}

func TestPredictEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "malformed json",
			body:    `{not json`,
			wantMsg: "invalid request body",
		},
		{
			name:    "unsupported model",
			body:    `{"model":"random_forest","features":[1,0.5,2,8,150,1]}`,
			wantMsg: "invalid model 'random_forest'",
		},
		{
			name:    "five features",
			body:    `{"model":"linear_regression","features":[1,0.5,2,8,150]}`,
			wantMsg: "exactly 6 numeric values",
		},
		{
			name:    "negative feature",
			body:    `{"model":"linear_regression","features":[1,-0.5,2,8,150,1]}`,
			wantMsg: "feature 2 must be a non-negative number",
		},
	}

	router := newPredictRouter(modelclient.NewMockClient())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPredict(t, router, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantMsg)
		})
	}
}

func TestPredictEndpoint_RejectionIsServerError(t *testing.T) {
	mock := modelclient.NewMockClient()
	mock.SetPredictError(modelclient.ErrModelRejected)
	router := newPredictRouter(mock)

	rec := doPredict(t, router, `{"model":"linear_regression","features":[1,0.5,2,8,150,1]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
