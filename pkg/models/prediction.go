package models

import (
	"math"
	"time"
)

// FeatureCount is the number of lifestyle inputs a prediction is made from.
const FeatureCount = 6

// PredictionInput holds the six lifestyle inputs. All fields are hours
// except CaffeineIntake, which is milligrams.
type PredictionInput struct {
	WorkoutTime    float64 `json:"workoutTime"`
	ReadingTime    float64 `json:"readingTime"`
	PhoneTime      float64 `json:"phoneTime"`
	WorkHours      float64 `json:"workHours"`
	CaffeineIntake float64 `json:"caffeineIntake"`
	RelaxationTime float64 `json:"relaxationTime"`
}

// InputFromFeatures maps a positional feature vector onto the named inputs.
// Order matches the model service contract:
// [workout, reading, phone, work, caffeine, relaxation].
func InputFromFeatures(features []float64) PredictionInput {
	var in PredictionInput
	if len(features) != FeatureCount {
		return in
	}
	in.WorkoutTime = features[0]
	in.ReadingTime = features[1]
	in.PhoneTime = features[2]
	in.WorkHours = features[3]
	in.CaffeineIntake = features[4]
	in.RelaxationTime = features[5]
	return in
}

// Features returns the positional vector sent to the model service.
func (in PredictionInput) Features() []float64 {
	return []float64{
		in.WorkoutTime,
		in.ReadingTime,
		in.PhoneTime,
		in.WorkHours,
		in.CaffeineIntake,
		in.RelaxationTime,
	}
}

// TotalActivityTime sums the five time-valued inputs, capped at 24 hours.
// Caffeine is excluded because it is not a time quantity.
func (in PredictionInput) TotalActivityTime() float64 {
	total := in.WorkoutTime + in.ReadingTime + in.PhoneTime + in.WorkHours + in.RelaxationTime
	return math.Min(24, total)
}

// SleepQuality is the label derived from predicted sleep hours.
type SleepQuality string

const (
	QualityPoor   SleepQuality = "Poor"
	QualityNormal SleepQuality = "Normal"
	QualityGood   SleepQuality = "Good"
)

// PredictionSource records whether a prediction came from the external
// model service or the local heuristic fallback.
type PredictionSource string

const (
	SourceModel     PredictionSource = "model"
	SourceHeuristic PredictionSource = "heuristic"
)

// ModelResult is the outcome of a model gateway call. Beyond the predicted
// hours it passes through whatever enrichment the model service supplied.
type ModelResult struct {
	Prediction         float64                `json:"prediction"`
	Model              string                 `json:"model"`
	Accuracy           string                 `json:"accuracy"`
	Source             PredictionSource       `json:"source"`
	AIRecommendedSleep *float64               `json:"ai_recommended_sleep,omitempty"`
	SleepQuality       string                 `json:"sleep_quality,omitempty"`
	QualityScore       *float64               `json:"quality_score,omitempty"`
	HealthInsights     map[string]interface{} `json:"health_insights,omitempty"`
	WasConstrained     *bool                  `json:"was_constrained,omitempty"`
	Explanation        []string               `json:"explanation,omitempty"`
	AvailableTime      *float64               `json:"available_time,omitempty"`
	Note               string                 `json:"note,omitempty"`
}

// PredictionRecord is a persisted prediction, optionally owned by a user.
// UserID of zero marks an anonymous prediction.
type PredictionRecord struct {
	ID             string           `json:"id"`
	UserID         int              `json:"userId,omitempty"`
	WorkoutTime    float64          `json:"workoutTime"`
	ReadingTime    float64          `json:"readingTime"`
	PhoneTime      float64          `json:"phoneTime"`
	WorkHours      float64          `json:"workHours"`
	CaffeineIntake float64          `json:"caffeineIntake"`
	RelaxationTime float64          `json:"relaxationTime"`
	Prediction     float64          `json:"prediction"`
	SleepQuality   SleepQuality     `json:"sleepQuality"`
	Model          string           `json:"model"`
	Source         PredictionSource `json:"source"`
	Recommendation string           `json:"recommendation,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// Input returns the lifestyle inputs stored on the record.
func (r *PredictionRecord) Input() PredictionInput {
	return PredictionInput{
		WorkoutTime:    r.WorkoutTime,
		ReadingTime:    r.ReadingTime,
		PhoneTime:      r.PhoneTime,
		WorkHours:      r.WorkHours,
		CaffeineIntake: r.CaffeineIntake,
		RelaxationTime: r.RelaxationTime,
	}
}
