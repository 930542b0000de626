package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/noctalia/sleepsense/internal/logger"
	"github.com/noctalia/sleepsense/pkg/models"
)

type HTTPClient struct {
	client         *http.Client
	baseURL        string
	healthTimeout  time.Duration
	predictTimeout time.Duration
}

type HTTPClientConfig struct {
	BaseURL        string
	HealthTimeout  time.Duration
	PredictTimeout time.Duration
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	healthTimeout := cfg.HealthTimeout
	if healthTimeout == 0 {
		healthTimeout = 3 * time.Second
	}
	predictTimeout := cfg.PredictTimeout
	if predictTimeout == 0 {
		predictTimeout = 10 * time.Second
	}

	return &HTTPClient{
		client:         &http.Client{},
		baseURL:        cfg.BaseURL,
		healthTimeout:  healthTimeout,
		predictTimeout: predictTimeout,
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// predictResponse matches the model service wire format. Prediction is a
// pointer so a missing field is distinguishable from 0.
type predictResponse struct {
	Prediction         *float64               `json:"prediction"`
	Error              string                 `json:"error"`
	ModelUsed          string                 `json:"model_used"`
	AIRecommendedSleep *float64               `json:"ai_recommended_sleep"`
	SleepQuality       string                 `json:"sleep_quality"`
	QualityScore       *float64               `json:"quality_score"`
	HealthInsights     map[string]interface{} `json:"health_insights"`
	WasConstrained     *bool                  `json:"was_constrained"`
	Explanation        []string               `json:"explanation"`
	FeaturesUsed       map[string]interface{} `json:"features_used"`
}

func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/health", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create health request: %v", ErrUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: health check failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("%w: malformed health response: %v", ErrUnavailable, err)
	}

	if health.Status != "healthy" {
		return fmt.Errorf("%w: service reported status %q", ErrUnavailable, health.Status)
	}

	return nil
}

func (c *HTTPClient) Predict(ctx context.Context, features []float64) (*models.ModelResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.predictTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/predict", c.baseURL)

	payload, err := json.Marshal(map[string]interface{}{"features": features})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInvalidResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.WithComponent("modelclient").Debugf("Posting features to %s", url)

	resp, err := c.client.Do(req)
	if err != nil {
		// Request was made but no response arrived: recoverable locally.
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrInvalidResponse, err)
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	// A reachable service refusing the request is surfaced, not substituted.
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrModelRejected, parsed.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrModelRejected, resp.StatusCode)
	}

	if parsed.Prediction == nil || math.IsNaN(*parsed.Prediction) {
		return nil, fmt.Errorf("%w: prediction missing or not numeric", ErrInvalidResponse)
	}

	return c.convertResponse(&parsed), nil
}

func (c *HTTPClient) convertResponse(parsed *predictResponse) *models.ModelResult {
	result := &models.ModelResult{
		Prediction:         *parsed.Prediction,
		Model:              parsed.ModelUsed,
		Source:             models.SourceModel,
		AIRecommendedSleep: parsed.AIRecommendedSleep,
		SleepQuality:       parsed.SleepQuality,
		QualityScore:       parsed.QualityScore,
		HealthInsights:     parsed.HealthInsights,
		WasConstrained:     parsed.WasConstrained,
		Explanation:        parsed.Explanation,
	}

	if parsed.FeaturesUsed != nil {
		if v, ok := parsed.FeaturesUsed["available_time"].(float64); ok {
			result.AvailableTime = &v
		}
	}

	return result
}

func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
