package config

// Config is the root configuration for charbot.
type Config struct {
	Gateway    GatewayConfig    `yaml:"gateway,omitempty"`
	Answerer   AnswererConfig   `yaml:"answerer,omitempty"`
	Characters CharactersConfig `yaml:"characters,omitempty"`
	Session    SessionConfig    `yaml:"session,omitempty"`
	Transcript TranscriptConfig `yaml:"transcript,omitempty"`
	Console    ConsoleConfig    `yaml:"console,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
}

// GatewayConfig identifies the messaging gateway instance the bot polls.
type GatewayConfig struct {
	InstanceID string `yaml:"instanceId"`
	Token      string `yaml:"token"`
	BaseURL    string `yaml:"baseUrl,omitempty"`
	// ReceiveTimeoutSec is the long-poll duration hint sent to the gateway.
	ReceiveTimeoutSec int `yaml:"receiveTimeoutSec,omitempty"`
}

// AnswererConfig selects and configures the answering engine.
type AnswererConfig struct {
	Provider  string `yaml:"provider,omitempty"` // "claude" | "ollama" | "mock"
	APIKey    string `yaml:"apiKey,omitempty"`
	Model     string `yaml:"model,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"` // Ollama base URL
	MaxTokens int    `yaml:"maxTokens,omitempty"`
}

// CharactersConfig locates character profiles and names the default.
type CharactersConfig struct {
	Dir     string `yaml:"dir,omitempty"` // default ~/.charbot/characters
	Default string `yaml:"default,omitempty"`
}

// SessionConfig controls the in-memory session store.
type SessionConfig struct {
	// Capacity bounds the number of live conversations; 0 means unbounded.
	// When exceeded, the least recently used conversation is evicted and
	// its sender goes through lost-session recovery on the next message.
	Capacity int `yaml:"capacity,omitempty"`
}

// TranscriptConfig controls the turn archive.
type TranscriptConfig struct {
	Store string `yaml:"store,omitempty"` // "sqlite" | "none"
}

// ConsoleConfig controls the local status/feed server.
type ConsoleConfig struct {
	Port  int    `yaml:"port,omitempty"` // 0 disables the console
	Token string `yaml:"token,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}
