package modelclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctalia/sleepsense/internal/modelclient"
	"github.com/noctalia/sleepsense/pkg/models"
)

var testFeatures = []float64{1, 0.5, 2, 8, 150, 1}

func newTestClient(handler http.Handler) (*modelclient.HTTPClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := modelclient.NewHTTPClient(modelclient.HTTPClientConfig{BaseURL: server.URL})
	return client, server
}

func TestHTTPClient_HealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"healthy"}`, wantErr: false},
		{name: "degraded status", status: http.StatusOK, body: `{"status":"loading"}`, wantErr: true},
		{name: "non-200", status: http.StatusServiceUnavailable, body: `{}`, wantErr: true},
		{name: "malformed body", status: http.StatusOK, body: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := client.HealthCheck(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, modelclient.ErrUnavailable)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPClient_HealthCheck_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := modelclient.NewHTTPClient(modelclient.HTTPClientConfig{BaseURL: server.URL})

	err := client.HealthCheck(context.Background())
	assert.ErrorIs(t, err, modelclient.ErrUnavailable)
}

func TestHTTPClient_Predict_Success(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"prediction": 7.42,
			"model_used": "linear_regression",
			"sleep_quality": "Good",
			"ai_recommended_sleep": 8.0,
			"was_constrained": false,
			"explanation": ["Looks fine"],
			"features_used": {"available_time": 11.5}
		}`))
	}))
	defer server.Close()

	result, err := client.Predict(context.Background(), testFeatures)
	require.NoError(t, err)

	assert.Equal(t, 7.42, result.Prediction)
	assert.Equal(t, "linear_regression", result.Model)
	assert.Equal(t, models.SourceModel, result.Source)
	assert.Equal(t, "Good", result.SleepQuality)
	require.NotNil(t, result.AIRecommendedSleep)
	assert.Equal(t, 8.0, *result.AIRecommendedSleep)
	require.NotNil(t, result.AvailableTime)
	assert.Equal(t, 11.5, *result.AvailableTime)
	assert.Equal(t, []string{"Looks fine"}, result.Explanation)
}

func TestHTTPClient_Predict_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "service rejects the request",
			status:  http.StatusBadRequest,
			body:    `{"error": "invalid model"}`,
			wantErr: modelclient.ErrModelRejected,
		},
		{
			name:    "non-200 without error field",
			status:  http.StatusInternalServerError,
			body:    `{}`,
			wantErr: modelclient.ErrModelRejected,
		},
		{
			name:    "missing prediction",
			status:  http.StatusOK,
			body:    `{"model_used": "linear_regression"}`,
			wantErr: modelclient.ErrInvalidResponse,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: modelclient.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := client.Predict(context.Background(), testFeatures)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClient_Predict_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := modelclient.NewHTTPClient(modelclient.HTTPClientConfig{BaseURL: server.URL})

	_, err := client.Predict(context.Background(), testFeatures)
	assert.ErrorIs(t, err, modelclient.ErrUnavailable)
}
