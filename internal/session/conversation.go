// Package session owns active conversations and routes senders to them.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rovelle/charbot/internal/domain"
)

// Answerer produces a reply for one conversation turn.
type Answerer interface {
	Answer(ctx context.Context, req domain.AnswerRequest) (string, error)
}

// Conversation is one active chat session. It owns its history, shares its
// character by value, and holds a reference to the answering engine.
type Conversation struct {
	ID         string
	SenderName string
	Character  domain.Character
	History    domain.History
	CreatedAt  time.Time

	answerer Answerer
}

// NewConversation creates a conversation with an empty history.
func NewConversation(id, senderName string, character domain.Character, answerer Answerer) *Conversation {
	return &Conversation{
		ID:         id,
		SenderName: senderName,
		Character:  character,
		CreatedAt:  time.Now(),
		answerer:   answerer,
	}
}

// Answer runs one conversation turn: it builds the prompt context from the
// history as it stands (the new message is not yet part of it), invokes the
// answering engine, and appends the completed turn only on success. A failed
// turn leaves the history untouched, so the session stays consistent and the
// message can be retried.
func (c *Conversation) Answer(ctx context.Context, message string) (string, error) {
	req := domain.AnswerRequest{
		MessageID: NewID(),
		History:   c.History.Turns(),
		Message:   message,
		Template:  c.Character.UserPrompt,
		Character: c.Character,
		// Augmentation is off in this deployment: no search, no external
		// documents, no external agent actions.
		Options: domain.AnswerOptions{},
	}

	reply, err := c.answerer.Answer(ctx, req)
	if err != nil {
		return "", err
	}

	c.History.Append(message, reply)
	return reply, nil
}

// NewID returns a fresh 16-hex-character opaque id, used for conversations
// and per-turn message ids.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
