package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Gateway.InstanceID == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.instanceId",
			Message: "instance id is required",
		})
	}
	if cfg.Gateway.Token == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.token",
			Message: "token is required",
		})
	}
	if cfg.Gateway.ReceiveTimeoutSec < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.receiveTimeoutSec",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Gateway.ReceiveTimeoutSec),
		})
	}

	validProviders := []string{"claude", "ollama", "mock"}
	if cfg.Answerer.Provider != "" && !slices.Contains(validProviders, cfg.Answerer.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "answerer.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Answerer.Provider),
		})
	}
	if cfg.Answerer.Provider == "claude" && cfg.Answerer.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "answerer.apiKey",
			Message: "required for the claude provider",
		})
	}
	if cfg.Answerer.Provider == "claude" && cfg.Answerer.Model == "" {
		issues = append(issues, ValidationIssue{
			Path:    "answerer.model",
			Message: "required for the claude provider",
		})
	}

	if cfg.Session.Capacity < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.capacity",
			Message: fmt.Sprintf("must be non-negative, got %d", cfg.Session.Capacity),
		})
	}

	validStores := []string{"sqlite", "none"}
	if cfg.Transcript.Store != "" && !slices.Contains(validStores, cfg.Transcript.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "transcript.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Transcript.Store),
		})
	}

	if cfg.Console.Port < 0 || cfg.Console.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "console.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Console.Port),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
