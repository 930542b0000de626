package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noctalia/sleepsense/api/middleware"
	"github.com/noctalia/sleepsense/pkg/database/queries"
	"github.com/noctalia/sleepsense/pkg/models"
)

const reportFetchLimit = 2000

type ReportHandler struct {
	repo *queries.PredictionRepository
}

func NewReportHandler(repo *queries.PredictionRepository) *ReportHandler {
	return &ReportHandler{repo: repo}
}

// ReportBucket is one aggregated period in a daily or monthly report.
type ReportBucket struct {
	Period       string  `json:"period"`
	Count        int     `json:"count"`
	AverageSleep float64 `json:"averageSleep"`
	GoodCount    int     `json:"goodCount"`
	NormalCount  int     `json:"normalCount"`
	PoorCount    int     `json:"poorCount"`
}

// Overview summarizes the user's stored predictions: all-time stats plus
// the last seven days.
func (h *ReportHandler) Overview(c *gin.Context) {
	userID := middleware.GetUserID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	allTime, err := h.repo.Stats(ctx, userID, time.Time{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	week, err := h.repo.Stats(ctx, userID, time.Now().AddDate(0, 0, -7))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"all_time":  allTime,
		"last_week": week,
	})
}

// Daily aggregates the user's predictions per calendar day over the
// requested number of days (default 30).
func (h *ReportHandler) Daily(c *gin.Context) {
	h.periodReport(c, "2006-01-02", 30, 365)
}

// Monthly aggregates the user's predictions per calendar month over the
// requested number of days (default 365).
func (h *ReportHandler) Monthly(c *gin.Context) {
	h.periodReport(c, "2006-01", 365, 3650)
}

func (h *ReportHandler) periodReport(c *gin.Context, layout string, defaultDays, maxDays int) {
	userID := middleware.GetUserID(c)

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultDays)))
	if err != nil || days <= 0 {
		days = defaultDays
	}
	if days > maxDays {
		days = maxDays
	}

	since := time.Now().AddDate(0, 0, -days)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.repo.GetSince(ctx, userID, since, reportFetchLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load predictions"})
		return
	}

	buckets := bucketRecords(records, layout)

	c.JSON(http.StatusOK, gin.H{
		"days":    days,
		"buckets": buckets,
	})
}

func bucketRecords(records []*models.PredictionRecord, layout string) []ReportBucket {
	type agg struct {
		count int
		sum   float64
		good  int
		norm  int
		poor  int
	}

	byPeriod := make(map[string]*agg)
	for _, r := range records {
		period := r.CreatedAt.Format(layout)
		a := byPeriod[period]
		if a == nil {
			a = &agg{}
			byPeriod[period] = a
		}
		a.count++
		a.sum += r.Prediction
		switch r.SleepQuality {
		case models.QualityGood:
			a.good++
		case models.QualityNormal:
			a.norm++
		case models.QualityPoor:
			a.poor++
		}
	}

	buckets := make([]ReportBucket, 0, len(byPeriod))
	for period, a := range byPeriod {
		buckets = append(buckets, ReportBucket{
			Period:       period,
			Count:        a.count,
			AverageSleep: a.sum / float64(a.count),
			GoodCount:    a.good,
			NormalCount:  a.norm,
			PoorCount:    a.poor,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Period < buckets[j].Period
	})

	return buckets
}
