package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noctalia/sleepsense/api/handlers"
	"github.com/noctalia/sleepsense/api/middleware"
	"github.com/noctalia/sleepsense/api/websocket"
	"github.com/noctalia/sleepsense/internal/auth"
	"github.com/noctalia/sleepsense/internal/events"
	"github.com/noctalia/sleepsense/internal/orchestrator"
	"github.com/noctalia/sleepsense/pkg/config"
	"github.com/noctalia/sleepsense/pkg/database"
	"github.com/noctalia/sleepsense/pkg/database/queries"
)

const maxRequestBody = 1 << 20 // 1 MiB

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      config.APIConfig
	db          *database.DB
	predictor   *orchestrator.Service
	eventBus    *events.EventBus
	authService *auth.Service
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

type ServerConfig struct {
	Mode      string
	API       config.APIConfig
	WebSocket config.WebSocketConfig
	DB        *database.DB
	Predictor *orchestrator.Service
	EventBus  *events.EventBus
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	jwtDuration := cfg.API.JWTDuration
	if jwtDuration <= 0 {
		jwtDuration = 24 * time.Hour
	}
	authService := auth.NewService(cfg.API.JWTSecret, jwtDuration)
	wsHub := websocket.NewHub(&cfg.WebSocket)

	s := &Server{
		router:      router,
		config:      cfg.API,
		db:          cfg.DB,
		predictor:   cfg.Predictor,
		eventBus:    cfg.EventBus,
		authService: authService,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// Start WebSocket hub
	go wsHub.Run()

	// Forward pipeline events to WebSocket clients
	if cfg.EventBus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, cfg.EventBus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestSizeLimit(maxRequestBody))

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))

	// The prediction endpoint fans out to external services, so it gets a
	// tighter budget than the global limit.
	endpointLimiter := middleware.NewEndpointRateLimiter()
	endpointLimiter.AddEndpoint("/api/predict", 30, time.Minute)
	s.router.Use(endpointLimiter.Middleware())
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.db, s.predictor)

	// Health endpoints
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/model", healthHandler.ModelHealth)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	var predictionRepo *queries.PredictionRepository
	if s.db != nil {
		predictionRepo = queries.NewPredictionRepository(s.db.DB)
	}
	predictionHandler := handlers.NewPredictionHandler(s.predictor, predictionRepo, s.config.DefaultLimit, s.config.MaxLimit)

	// The prediction endpoint is public; authenticated callers get their
	// stored predictions attributed to them.
	s.router.POST("/api/predict", middleware.OptionalJWTAuth(s.authService), predictionHandler.Predict)

	// Account and persistence routes need the database
	if s.db == nil {
		return
	}

	userRepo := queries.NewUserRepository(s.db.DB)
	authHandler := handlers.NewAuthHandler(userRepo, s.authService)
	reportHandler := handlers.NewReportHandler(predictionRepo)

	authRoutes := s.router.Group("/auth")
	authRoutes.Use(middleware.AuthRateLimiter())
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/register", authHandler.Register)
	}

	protected := s.router.Group("/api")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		protected.GET("/predictions", predictionHandler.List)
		protected.POST("/predictions", predictionHandler.Create)
		protected.GET("/predictions/me", predictionHandler.ListMine)
		protected.GET("/predictions/stats", predictionHandler.Stats)
		protected.GET("/predictions/user/:id", predictionHandler.ListByUser)
		protected.GET("/predictions/:id", predictionHandler.Get)

		protected.GET("/reports/overview", reportHandler.Overview)
		protected.GET("/reports/daily", reportHandler.Daily)
		protected.GET("/reports/monthly", reportHandler.Monthly)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
