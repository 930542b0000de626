package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noctalia/sleepsense/internal/recommend"
	"github.com/noctalia/sleepsense/pkg/models"
)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name       string
		in         models.PredictionInput
		prediction float64
		expected   string
	}{
		{
			name: "typical day",
			in: models.PredictionInput{
				WorkoutTime:    1,
				PhoneTime:      2,
				CaffeineIntake: 150,
				WorkHours:      9,
			},
			prediction: 7.2,
			expected:   "detailed_med_med_med_long_7.25",
		},
		{
			name: "all low buckets",
			in: models.PredictionInput{
				WorkoutTime:    0.25,
				PhoneTime:      1,
				CaffeineIntake: 50,
				WorkHours:      6,
			},
			prediction: 8.0,
			expected:   "detailed_low_low_low_normal_8.00",
		},
		{
			name: "all high buckets",
			in: models.PredictionInput{
				WorkoutTime:    3,
				PhoneTime:      4,
				CaffeineIntake: 400,
				WorkHours:      11,
			},
			prediction: 5.6,
			expected:   "detailed_high_high_high_high_5.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, recommend.Fingerprint(tt.in, tt.prediction))
		})
	}
}

func TestFingerprint_NearbyPredictionsCollapse(t *testing.T) {
	in := models.PredictionInput{WorkoutTime: 1, PhoneTime: 2, CaffeineIntake: 150, WorkHours: 9}

	a := recommend.Fingerprint(in, 7.20)
	b := recommend.Fingerprint(in, 7.30)
	c := recommend.Fingerprint(in, 7.60)

	assert.Equal(t, a, b, "predictions within the same quarter hour share a bucket")
	assert.NotEqual(t, a, c)
}
