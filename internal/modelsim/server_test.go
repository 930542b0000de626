package modelsim_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noctalia/sleepsense/internal/modelsim"
)

func newSimRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return modelsim.NewServer(modelsim.Config{Port: 5000}).Router()
}

func TestSimulator_Health(t *testing.T) {
	router := newSimRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestSimulator_Predict(t *testing.T) {
	router := newSimRouter()

	body := `{"model":"linear_regression","features":[1,0.5,2,8,150,1]}`
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Prediction     float64                `json:"prediction"`
		ModelUsed      string                 `json:"model_used"`
		SleepQuality   string                 `json:"sleep_quality"`
		HealthInsights map[string]interface{} `json:"health_insights"`
		Explanation    []string               `json:"explanation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "linear_regression", resp.ModelUsed)
	assert.GreaterOrEqual(t, resp.Prediction, 4.0)
	assert.LessOrEqual(t, resp.Prediction, 12.0)
	assert.NotEmpty(t, resp.SleepQuality)
	assert.Contains(t, resp.HealthInsights, "ideal_sleep_range")
}

func TestSimulator_Predict_BadFeatures(t *testing.T) {
	router := newSimRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "five features", body: `{"features":[1,0.5,2,8,150]}`},
		{name: "negative feature", body: `{"features":[1,-1,2,8,150,1]}`},
		{name: "malformed json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestSimulator_FailureInjection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := modelsim.NewServer(modelsim.Config{Port: 5000, FailureRate: 1.0}).Router()

	body := `{"features":[1,0.5,2,8,150,1]}`
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "simulated")
}
