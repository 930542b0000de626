package modelsim

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noctalia/sleepsense/internal/heuristic"
	"github.com/noctalia/sleepsense/internal/logger"
	"github.com/noctalia/sleepsense/pkg/models"
	"github.com/noctalia/sleepsense/pkg/validation"
)

// Server simulates the external model service for local development.
// It answers the same wire format the real service uses, backed by the
// heuristic, with optional latency and failure injection.
type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	port        int
	latency     time.Duration
	failureRate float64
}

type Config struct {
	Port        int
	Latency     time.Duration
	FailureRate float64
	Mode        string
}

func NewServer(cfg Config) *Server {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:      engine,
		port:        cfg.Port,
		latency:     cfg.Latency,
		failureRate: cfg.FailureRate,
	}

	engine.GET("/health", s.handleHealth)
	engine.POST("/predict", s.handlePredict)

	return s
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"model":  "linear_regression",
	})
}

type predictRequest struct {
	Model    string    `json:"model"`
	Features []float64 `json:"features"`
}

func (s *Server) handlePredict(c *gin.Context) {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	if s.failureRate > 0 && rand.Float64() < s.failureRate {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "simulated model failure",
		})
		return
	}

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateFeatures(req.Features); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := heuristic.Predict(req.Features)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := models.InputFromFeatures(req.Features)
	available := heuristic.AvailableTime(in)
	quality := heuristic.Quality(prediction)
	constrained := available < prediction

	c.JSON(http.StatusOK, gin.H{
		"prediction":           prediction,
		"model_used":           "linear_regression",
		"sleep_quality":        string(quality),
		"ai_recommended_sleep": 8.0,
		"health_insights": gin.H{
			"minimum_healthy_sleep":     heuristic.MinimumSleep(in.TotalActivityTime()),
			"maximum_healthy_sleep":     heuristic.MaxSleepHours,
			"meets_minimum_requirement": prediction >= 4.0,
			"ideal_sleep_range":         "6-8 hours",
			"available_time":            available,
		},
		"was_constrained": constrained,
		"explanation":     heuristic.Explanations(in, prediction),
		"features_used": gin.H{
			"available_time": available,
		},
	})
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Infof("Model simulator listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}
