package recommend

import (
	"fmt"
	"math"

	"github.com/noctalia/sleepsense/pkg/models"
)

// Fingerprint derives a bucketed cache key from the inputs and prediction.
// Near-identical requests deliberately collapse into the same bucket so
// the generative service is called once per bucket, not once per request.
func Fingerprint(in models.PredictionInput, prediction float64) string {
	rounded := math.Round(prediction*4) / 4 // quarter-hour precision

	workout := bucket(in.WorkoutTime, 0.5, 2.5)
	phone := bucket(in.PhoneTime, 1.5, 3)
	caffeine := bucket(in.CaffeineIntake, 100, 300)

	work := "long"
	if in.WorkHours < 8 {
		work = "normal"
	} else if in.WorkHours > 10 {
		work = "high"
	}

	return fmt.Sprintf("detailed_%s_%s_%s_%s_%.2f", workout, phone, caffeine, work, rounded)
}

func bucket(value, low, high float64) string {
	switch {
	case value < low:
		return "low"
	case value > high:
		return "high"
	default:
		return "med"
	}
}
