package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/noctalia/sleepsense/pkg/models"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Username must be alphanumeric with underscores, 3-50 chars
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// MaxCumulativeHours bounds the sum of the five time-valued inputs.
// A day only has 24 hours; requests claiming more are rejected outright.
const MaxCumulativeHours = 24.0

// SupportedModels lists the model identifiers the service accepts.
var SupportedModels = []string{"linear_regression"}

// timeValuedFeatures are the feature indices measured in hours.
// Index 4 (caffeine intake) is milligrams and excluded from the cumulative check.
var timeValuedFeatures = []int{0, 1, 2, 3, 5}

// ValidateModel checks the requested model identifier.
func ValidateModel(model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("%w: invalid model parameter, must be a non-empty string", ErrInvalidInput)
	}

	for _, m := range SupportedModels {
		if model == m {
			return nil
		}
	}

	return fmt.Errorf("%w: invalid model '%s', only 'linear_regression' is supported as it's the best performing model",
		ErrInvalidInput, model)
}

// ValidateFeatures checks the positional feature vector: exactly six
// non-negative finite numbers whose time-valued entries fit within a day.
func ValidateFeatures(features []float64) error {
	if len(features) != models.FeatureCount {
		return fmt.Errorf("%w: invalid features, must be an array with exactly 6 numeric values", ErrInvalidInput)
	}

	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return fmt.Errorf("%w: feature %d must be a non-negative number, received: %v",
				ErrInvalidInput, i+1, f)
		}
	}

	var totalHours float64
	for _, i := range timeValuedFeatures {
		totalHours += features[i]
	}
	if totalHours > MaxCumulativeHours {
		return fmt.Errorf("%w: combined activity time is %.1f hours, which exceeds the 24 hours in a day",
			ErrInvalidInput, totalHours)
	}

	return nil
}

// ValidateInput applies the feature rules to a named input struct.
func ValidateInput(in models.PredictionInput) error {
	return ValidateFeatures(in.Features())
}

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	// Trim whitespace
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if username == "" {
		return errors.New("username cannot be empty")
	}

	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}

	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}

	if !usernameRegex.MatchString(username) {
		return errors.New("username must contain only letters, numbers, and underscores")
	}

	return nil
}

// ValidateEmail checks if an email address is plausibly valid
func ValidateEmail(email string) error {
	email = SanitizeString(email)

	if email == "" {
		return errors.New("email cannot be empty")
	}

	if len(email) > 255 {
		return errors.New("email must not exceed 255 characters")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("email format is invalid")
	}

	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return errors.New("password must not exceed 128 characters")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}

	return nil
}
