package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/noctalia/sleepsense/pkg/models"
)

var ErrPredictionNotFound = errors.New("prediction not found")

const predictionColumns = `id, user_id, workout_time, reading_time, phone_time, work_hours,
	caffeine_intake, relaxation_time, prediction, sleep_quality, model, source,
	COALESCE(recommendation, ''), created_at`

// PredictionStats aggregates stored predictions for reporting.
type PredictionStats struct {
	Total          int     `json:"total"`
	AverageSleep   float64 `json:"averageSleep"`
	MinSleep       float64 `json:"minSleep"`
	MaxSleep       float64 `json:"maxSleep"`
	GoodCount      int     `json:"goodCount"`
	NormalCount    int     `json:"normalCount"`
	PoorCount      int     `json:"poorCount"`
	BelowSixHours  int     `json:"belowSixHours"`
	HeuristicCount int     `json:"heuristicCount"`
}

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(ctx context.Context, record *models.PredictionRecord) error {
	query := `
		INSERT INTO predictions (
			id, user_id, workout_time, reading_time, phone_time, work_hours,
			caffeine_intake, relaxation_time, prediction, sleep_quality, model,
			source, recommendation
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	var userID sql.NullInt64
	if record.UserID > 0 {
		userID = sql.NullInt64{Int64: int64(record.UserID), Valid: true}
	}

	return r.db.QueryRowContext(ctx, query,
		record.ID,
		userID,
		record.WorkoutTime,
		record.ReadingTime,
		record.PhoneTime,
		record.WorkHours,
		record.CaffeineIntake,
		record.RelaxationTime,
		record.Prediction,
		record.SleepQuality,
		record.Model,
		record.Source,
		record.Recommendation,
	).Scan(&record.CreatedAt)
}

func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*models.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	record, err := scanPrediction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrPredictionNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *PredictionRepository) GetAll(ctx context.Context, limit, offset int) ([]*models.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPredictions(rows)
}

func (r *PredictionRepository) GetByUser(ctx context.Context, userID, limit, offset int) ([]*models.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPredictions(rows)
}

// GetSince returns a user's predictions created at or after since,
// newest first.
func (r *PredictionRepository) GetSince(ctx context.Context, userID int, since time.Time, limit int) ([]*models.PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, userID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPredictions(rows)
}

// Stats aggregates predictions created at or after since. A zero time
// aggregates everything. userID of zero covers all users.
func (r *PredictionRepository) Stats(ctx context.Context, userID int, since time.Time) (*PredictionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(AVG(prediction), 0),
			COALESCE(MIN(prediction), 0),
			COALESCE(MAX(prediction), 0),
			COUNT(*) FILTER (WHERE sleep_quality = 'Good'),
			COUNT(*) FILTER (WHERE sleep_quality = 'Normal'),
			COUNT(*) FILTER (WHERE sleep_quality = 'Poor'),
			COUNT(*) FILTER (WHERE prediction < 6),
			COUNT(*) FILTER (WHERE source = 'heuristic')
		FROM predictions
		WHERE created_at >= $1
		  AND ($2 = 0 OR user_id = $2)`

	var stats PredictionStats
	err := r.db.QueryRowContext(ctx, query, since, userID).Scan(
		&stats.Total,
		&stats.AverageSleep,
		&stats.MinSleep,
		&stats.MaxSleep,
		&stats.GoodCount,
		&stats.NormalCount,
		&stats.PoorCount,
		&stats.BelowSixHours,
		&stats.HeuristicCount,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(row rowScanner) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	var userID sql.NullInt64

	err := row.Scan(
		&record.ID,
		&userID,
		&record.WorkoutTime,
		&record.ReadingTime,
		&record.PhoneTime,
		&record.WorkHours,
		&record.CaffeineIntake,
		&record.RelaxationTime,
		&record.Prediction,
		&record.SleepQuality,
		&record.Model,
		&record.Source,
		&record.Recommendation,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		record.UserID = int(userID.Int64)
	}
	return &record, nil
}

func collectPredictions(rows *sql.Rows) ([]*models.PredictionRecord, error) {
	var records []*models.PredictionRecord
	for rows.Next() {
		record, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
