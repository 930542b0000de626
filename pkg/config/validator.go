package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation only applies when persistence is on
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	// Model server validation
	if c.Model.URL == "" {
		errs = append(errs, errors.New("model.url is required"))
	}
	if c.Model.HealthTimeout <= 0 {
		errs = append(errs, errors.New("model.health_timeout must be positive"))
	}
	if c.Model.PredictTimeout <= 0 {
		errs = append(errs, errors.New("model.predict_timeout must be positive"))
	}
	if c.Model.CircuitBreaker.MaxFailures <= 0 {
		errs = append(errs, errors.New("model.circuit_breaker.max_failures must be positive"))
	}

	// Recommender validation
	if c.Recommender.CacheSize <= 0 {
		errs = append(errs, errors.New("recommender.cache_size must be positive"))
	}
	if c.Recommender.MaxAttempts <= 0 {
		errs = append(errs, errors.New("recommender.max_attempts must be positive"))
	}
	if c.Recommender.BaseDelay <= 0 {
		errs = append(errs, errors.New("recommender.base_delay must be positive"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
