package validation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noctalia/sleepsense/pkg/validation"
)

func TestValidateModel(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		wantErr string
	}{
		{name: "supported model", model: "linear_regression"},
		{name: "empty model", model: "", wantErr: "must be a non-empty string"},
		{name: "whitespace model", model: "   ", wantErr: "must be a non-empty string"},
		{name: "unsupported model", model: "random_forest", wantErr: "invalid model 'random_forest'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateModel(tt.model)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, validation.ErrInvalidInput)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateFeatures(t *testing.T) {
	tests := []struct {
		name     string
		features []float64
		wantErr  string
	}{
		{name: "valid features", features: []float64{1, 0.5, 2, 8, 150, 1}},
		{name: "all zeros", features: []float64{0, 0, 0, 0, 0, 0}},
		{name: "too few", features: []float64{1, 2, 3, 4, 5}, wantErr: "exactly 6 numeric values"},
		{name: "too many", features: []float64{1, 2, 3, 4, 5, 6, 7}, wantErr: "exactly 6 numeric values"},
		{name: "nil", features: nil, wantErr: "exactly 6 numeric values"},
		{name: "negative value", features: []float64{1, -0.5, 2, 8, 150, 1}, wantErr: "feature 2 must be a non-negative number"},
		{name: "NaN value", features: []float64{1, 0.5, math.NaN(), 8, 150, 1}, wantErr: "feature 3 must be a non-negative number"},
		{name: "infinite value", features: []float64{1, 0.5, 2, math.Inf(1), 150, 1}, wantErr: "feature 4 must be a non-negative number"},
		{name: "day overbooked", features: []float64{5, 5, 5, 8, 150, 5}, wantErr: "exceeds the 24 hours"},
		{name: "caffeine excluded from cumulative check", features: []float64{1, 1, 1, 8, 900, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateFeatures(tt.features)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, validation.ErrInvalidInput)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, validation.ValidateUsername("alice_01"))
	assert.Error(t, validation.ValidateUsername(""))
	assert.Error(t, validation.ValidateUsername("ab"))
	assert.Error(t, validation.ValidateUsername("has spaces"))
	assert.Error(t, validation.ValidateUsername("has-dash"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validation.ValidateEmail("user@example.com"))
	assert.Error(t, validation.ValidateEmail(""))
	assert.Error(t, validation.ValidateEmail("not-an-email"))
	assert.Error(t, validation.ValidateEmail("user@@example.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, validation.ValidatePassword("Sup3rSecret"))
	assert.Error(t, validation.ValidatePassword("short"))
	assert.Error(t, validation.ValidatePassword("alllowercase1"))
	assert.Error(t, validation.ValidatePassword("ALLUPPERCASE1"))
	assert.Error(t, validation.ValidatePassword("NoNumbersHere"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", validation.SanitizeString("  hello  "))
	assert.Equal(t, "hello", validation.SanitizeString("he\x00llo"))
	assert.Equal(t, "line1\nline2", validation.SanitizeString("line1\nline2"))
}
