package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noctalia/sleepsense/api/middleware"
	"github.com/noctalia/sleepsense/internal/orchestrator"
	"github.com/noctalia/sleepsense/pkg/database/queries"
	"github.com/noctalia/sleepsense/pkg/models"
)

// Predictor runs the prediction pipeline.
type Predictor interface {
	Predict(ctx context.Context, req orchestrator.Request, userID int) (*orchestrator.Response, error)
	SaveRecord(ctx context.Context, record *models.PredictionRecord) error
}

type PredictionHandler struct {
	service      Predictor
	repo         *queries.PredictionRepository
	defaultLimit int
	maxLimit     int
}

func NewPredictionHandler(service Predictor, repo *queries.PredictionRepository, defaultLimit, maxLimit int) *PredictionHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &PredictionHandler{
		service:      service,
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Predict handles the public prediction endpoint. Authenticated callers
// get their stored record attributed to them.
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req orchestrator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := middleware.GetUserID(c)

	resp, err := h.service.Predict(c.Request.Context(), req, userID)
	if err != nil {
		var inputErr *orchestrator.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create stores a caller-supplied prediction record.
func (h *PredictionHandler) Create(c *gin.Context) {
	var record models.PredictionRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record.ID = ""
	record.UserID = middleware.GetUserID(c)

	if err := h.service.SaveRecord(c.Request.Context(), &record); err != nil {
		var inputErr *orchestrator.InputError
		if errors.As(err, &inputErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save prediction"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// List returns stored predictions across all users.
func (h *PredictionHandler) List(c *gin.Context) {
	limit, offset := h.pagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	records, err := h.repo.GetAll(ctx, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load predictions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": records,
		"count":       len(records),
		"limit":       limit,
		"offset":      offset,
	})
}

// ListMine returns the authenticated user's predictions.
func (h *PredictionHandler) ListMine(c *gin.Context) {
	limit, offset := h.pagination(c)
	userID := middleware.GetUserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	records, err := h.repo.GetByUser(ctx, userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load predictions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": records,
		"count":       len(records),
		"limit":       limit,
		"offset":      offset,
	})
}

// ListByUser returns a given user's predictions.
func (h *PredictionHandler) ListByUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be a positive integer"})
		return
	}

	limit, offset := h.pagination(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	records, err := h.repo.GetByUser(ctx, userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load predictions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": records,
		"count":       len(records),
		"limit":       limit,
		"offset":      offset,
	})
}

// Get returns a single stored prediction by id.
func (h *PredictionHandler) Get(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.repo.GetByID(ctx, id)
	if err != nil {
		if err == queries.ErrPredictionNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "prediction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load prediction"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Stats aggregates the authenticated user's stored predictions. The
// optional days query bounds the window; zero means all time.
func (h *PredictionHandler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)

	days, err := strconv.Atoi(c.DefaultQuery("days", "0"))
	if err != nil || days < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
		return
	}

	var since time.Time
	if days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.repo.Stats(ctx, userID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *PredictionHandler) pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultLimit)))
	if err != nil || limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
