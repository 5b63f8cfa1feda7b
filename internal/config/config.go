package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// DefaultGatewayBaseURL is the messaging provider's API root.
const DefaultGatewayBaseURL = "https://api.green-api.com"

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			BaseURL:           DefaultGatewayBaseURL,
			ReceiveTimeoutSec: 20,
		},
		Answerer: AnswererConfig{
			Provider:  "claude",
			MaxTokens: 1024,
		},
		Transcript: TranscriptConfig{
			Store: "sqlite",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
