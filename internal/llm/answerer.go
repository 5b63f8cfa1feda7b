package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rovelle/charbot/internal/domain"
	"github.com/rovelle/charbot/internal/logging"
)

// Answerer adapts an LLM client to the conversation turn contract: it turns
// a character profile plus accumulated history into a completion request and
// returns the generated reply. Augmentation options (search, documents,
// actions) are accepted but not implemented; they are off in this deployment.
type Answerer struct {
	client    Client
	model     string
	maxTokens int
	log       *logging.Logger
}

// NewAnswerer creates an answerer backed by the given client.
func NewAnswerer(client Client, model string, maxTokens int, log *logging.Logger) *Answerer {
	return &Answerer{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		log:       log.Sub("answerer"),
	}
}

// Answer produces a reply for one conversation turn.
func (a *Answerer) Answer(ctx context.Context, req domain.AnswerRequest) (string, error) {
	messages := make([]Message, 0, len(req.History)*2+1)
	for _, t := range req.History {
		messages = append(messages,
			Message{Role: RoleUser, Content: t.User},
			Message{Role: RoleAssistant, Content: t.Assistant},
		)
	}
	messages = append(messages, Message{
		Role:    RoleUser,
		Content: renderTemplate(req.Template, req.Message),
	})

	resp, err := a.client.Complete(ctx, CompletionRequest{
		Model:     a.model,
		System:    systemPrompt(req.Character),
		Messages:  messages,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}

	a.log.Info().
		Str("messageId", req.MessageID).
		Str("character", req.Character.ID).
		Str("provider", a.client.Name()).
		Int("historyLen", len(req.History)).
		Int("inputTokens", resp.Usage.InputTokens).
		Int("outputTokens", resp.Usage.OutputTokens).
		Msg("reply generated")

	return resp.Content, nil
}

// renderTemplate applies the character's per-turn template to the message.
func renderTemplate(template, message string) string {
	if template == "" {
		return message
	}
	if strings.Contains(template, "{query}") {
		return strings.ReplaceAll(template, "{query}", message)
	}
	return template + "\n\n" + message
}

// systemPrompt builds the system prompt for a character.
func systemPrompt(ch domain.Character) string {
	if ch.SystemPrompt != "" {
		return ch.SystemPrompt
	}
	return fmt.Sprintf("You are %s. Stay in character and answer as they would.", ch.Name)
}
