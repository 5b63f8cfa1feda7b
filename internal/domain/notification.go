// Package domain holds the value types shared across charbot packages.
package domain

import "time"

// Webhook types the bot processes. Anything else is acknowledged and skipped.
const (
	WebhookIncomingMessage    = "incomingMessageReceived"
	WebhookOutgoingAPIMessage = "outgoingAPIMessageReceived"
)

// ReplyMarker prefixes every bot-authored outbound reply. An inbound message
// starting with it is the bot's own echo and is dropped before routing.
// Prefix matching is literal; a user message that happens to start with the
// marker is dropped too.
const ReplyMarker = "AI:"

// AnonymousName substitutes for senders whose display name is empty.
const AnonymousName = "Anonymous"

// Notification is one inbound event from the messaging gateway. It is
// ephemeral: consumed once on the success path, or left unacknowledged so
// the gateway redelivers it.
type Notification struct {
	ReceiptID   int64  `json:"receiptId"`
	WebhookType string `json:"typeWebhook"`
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName,omitempty"`
	Text        string `json:"text"`
}

// TurnEvent describes one completed conversation turn. Published after the
// reply has been dispatched, for the transcript archive and the console feed.
type TurnEvent struct {
	ConversationID string        `json:"conversationId"`
	SenderID       string        `json:"senderId"`
	SenderName     string        `json:"senderName,omitempty"`
	Message        string        `json:"message"`
	Reply          string        `json:"reply"`
	Duration       time.Duration `json:"duration"`
	At             time.Time     `json:"at"`
}
