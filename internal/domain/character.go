package domain

// Character is a persona profile the bot answers as. Immutable once loaded;
// conversations hold it by value and never modify it.
type Character struct {
	ID           string `yaml:"id" json:"id"`
	Name         string `yaml:"name" json:"name"`
	SystemPrompt string `yaml:"systemPrompt" json:"systemPrompt,omitempty"`
	// UserPrompt is the per-turn template. A "{query}" placeholder is
	// replaced with the user message; without one the message is appended.
	UserPrompt string `yaml:"userPrompt" json:"userPrompt,omitempty"`
}
