package recommend

import (
	"fmt"
	"strings"

	"github.com/noctalia/sleepsense/pkg/models"
)

const (
	minRecommendations = 3
	maxRecommendations = 5
)

// FallbackRecommendations produces the rule-based advice list used when
// the generative service is unavailable. Items are ordered by impact;
// generic advice pads the list up to three entries, five at most.
func FallbackRecommendations(in models.PredictionInput, prediction float64) []string {
	var recommendations []string

	if prediction < 6 {
		recommendations = append(recommendations,
			"Go to bed 1-2 hours earlier tonight",
			"See a doctor if poor sleep continues")
	} else if prediction < 7 {
		recommendations = append(recommendations,
			"Add 30-60 minutes to your sleep schedule")
	}

	if in.PhoneTime > 3 {
		recommendations = append(recommendations,
			"Reduce screen time 2 hours before bed")
	}

	if in.CaffeineIntake > 300 {
		recommendations = append(recommendations,
			"Cut caffeine after 2 PM")
	} else if in.CaffeineIntake > 150 && prediction < 7 {
		recommendations = append(recommendations,
			"Try reducing caffeine intake")
	}

	if in.WorkHours > 10 {
		recommendations = append(recommendations,
			"Set strict work boundaries")
	}

	if in.WorkoutTime < 0.5 && prediction < 7 {
		recommendations = append(recommendations,
			"Add 20-30 min daily walk")
	}

	if len(recommendations) < minRecommendations {
		recommendations = append(recommendations,
			"Keep consistent sleep schedule",
			"Create relaxing bedtime routine")
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	return recommendations
}

func fallbackBody(in models.PredictionInput, prediction float64) string {
	recommendations := FallbackRecommendations(in, prediction)

	var b strings.Builder
	for i, rec := range recommendations {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, rec)
	}
	return b.String()
}
