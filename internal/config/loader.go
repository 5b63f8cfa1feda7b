package config

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so tokens and API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Gateway.Token = expandEnvVars(cfg.Gateway.Token)
	cfg.Answerer.APIKey = expandEnvVars(cfg.Answerer.APIKey)
	cfg.Console.Token = expandEnvVars(cfg.Console.Token)
}

// Load reads the config file, applies environment overrides, and returns a
// merged Config. A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = DefaultGatewayBaseURL
	}
	if cfg.Gateway.ReceiveTimeoutSec == 0 {
		cfg.Gateway.ReceiveTimeoutSec = 20
	}
	if cfg.Answerer.Provider == "" {
		cfg.Answerer.Provider = "claude"
	}
	if cfg.Answerer.MaxTokens == 0 {
		cfg.Answerer.MaxTokens = 1024
	}
	if cfg.Transcript.Store == "" {
		cfg.Transcript.Store = "sqlite"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides reads CHARBOT_* environment variables over config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHARBOT_GATEWAY_ID"); v != "" {
		cfg.Gateway.InstanceID = v
	}
	if v := os.Getenv("CHARBOT_GATEWAY_TOKEN"); v != "" {
		cfg.Gateway.Token = v
	}
	if v := os.Getenv("CHARBOT_DEFAULT_CHARACTER"); v != "" {
		cfg.Characters.Default = v
	}
	if v := os.Getenv("CHARBOT_MODEL"); v != "" {
		cfg.Answerer.Model = v
	}
	if v := os.Getenv("CHARBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
