package heuristic

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/noctalia/sleepsense/pkg/models"
)

var (
	ErrInvalidFeatures = errors.New("exactly 6 non-negative feature values are required")
)

const (
	// MaxSleepHours caps every prediction, local or model-based.
	MaxSleepHours = 12.0

	// Activity loads above this threshold allow the shorter sleep floor.
	highActivityThreshold = 18.0

	minSleepHighActivity = 4.0
	minSleepDefault      = 5.0
)

// Predict estimates sleep hours from the six lifestyle features without
// calling the model service. The estimate weighs restorative activities
// against sleep-hostile ones and applies time pressure when the schedule
// approaches a full day.
func Predict(features []float64) (float64, error) {
	if len(features) != models.FeatureCount {
		return 0, ErrInvalidFeatures
	}
	for _, f := range features {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, ErrInvalidFeatures
		}
	}

	in := models.InputFromFeatures(features)
	totalActivity := in.TotalActivityTime()

	positive := math.Min(in.WorkoutTime, 2)*0.4 +
		math.Min(in.ReadingTime, 3)*0.3 +
		math.Min(in.RelaxationTime, 4)*0.5

	negative := math.Min(in.PhoneTime, 10)*0.15 +
		math.Max(0, in.WorkHours-8)*0.2 +
		math.Min(in.CaffeineIntake, 1000)*0.0008

	timePressure := math.Max(0, (totalActivity-16)*0.3)

	// Base of 7.5h with a bounded natural variation (7.25-7.75).
	baseSleep := 7.5 + (rand.Float64()-0.5)*0.5

	raw := baseSleep + positive - negative - timePressure

	floor := MinimumSleep(totalActivity)
	return math.Max(floor, math.Min(MaxSleepHours, raw)), nil
}

// MinimumSleep returns the lower clamp for a prediction. Heavily loaded
// schedules are allowed a shorter floor.
func MinimumSleep(totalActivity float64) float64 {
	if totalActivity > highActivityThreshold {
		return minSleepHighActivity
	}
	return minSleepDefault
}

// Quality derives the sleep-quality label from predicted hours.
// Good: 7-9h inclusive. Normal: 6-7h or 9-10h. Poor: everything else.
func Quality(hours float64) models.SleepQuality {
	switch {
	case hours >= 7 && hours <= 9:
		return models.QualityGood
	case (hours >= 6 && hours < 7) || (hours > 9 && hours <= 10):
		return models.QualityNormal
	default:
		return models.QualityPoor
	}
}

// AvailableTime is the time left in the day after scheduled activities.
func AvailableTime(in models.PredictionInput) float64 {
	return math.Max(0, 24-in.TotalActivityTime())
}

// Explanations builds the per-factor narrative returned alongside fallback
// predictions so clients can show why the estimate landed where it did.
func Explanations(in models.PredictionInput, prediction float64) []string {
	var explanation []string

	available := AvailableTime(in)
	if available < 6.0 {
		explanation = append(explanation, fmt.Sprintf(
			"Your scheduled activities leave only %.1f hours available, limiting possible sleep time.", available))
	}

	if in.WorkoutTime > 0 && in.WorkoutTime <= 2 {
		explanation = append(explanation, fmt.Sprintf(
			"Your %.1f hours of workout has a positive effect on sleep quality.", in.WorkoutTime))
	} else if in.WorkoutTime > 2 {
		explanation = append(explanation, fmt.Sprintf(
			"Your %.1f hours of workout may be excessive and could affect sleep quality.", in.WorkoutTime))
	}

	if in.PhoneTime > 3 {
		explanation = append(explanation, fmt.Sprintf(
			"Your %.1f hours of phone time before bed significantly reduces sleep quality.", in.PhoneTime))
	}

	if in.CaffeineIntake > 300 {
		explanation = append(explanation, "Your caffeine intake may be reducing your sleep duration.")
	}

	if in.WorkHours > 10 {
		explanation = append(explanation, fmt.Sprintf(
			"Your %.1f hours of work exceeds recommended limits and may affect sleep.", in.WorkHours))
	}

	if in.RelaxationTime > 1.5 {
		explanation = append(explanation, fmt.Sprintf(
			"Your %.1f hours of relaxation time positively impacts your sleep quality.", in.RelaxationTime))
	}

	if prediction < 6.0 {
		explanation = append(explanation,
			"While 6-8 hours of sleep is generally recommended for adults, your current schedule may limit this. "+
				"Consider reducing screen time or work hours if possible.")
	}

	return explanation
}
