package poller

import (
	"context"

	"github.com/rovelle/charbot/internal/domain"
	"github.com/rovelle/charbot/internal/logging"
)

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID, text string) error
}

// Dispatcher formats generated replies and sends them back through the
// gateway. Every outbound reply is tagged with the reply marker so the bot
// can recognize its own echo on the inbound side.
type Dispatcher struct {
	sender Sender
	log    *logging.Logger
}

// NewDispatcher creates a dispatcher sending through the given transport.
func NewDispatcher(sender Sender, log *logging.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log.Sub("dispatcher")}
}

// Dispatch sends the reply, marker-prefixed, to the originating chat. No
// retry on failure; the caller decides what a failed send means.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID, reply string) error {
	text := domain.ReplyMarker + " " + reply
	if err := d.sender.Send(ctx, chatID, text); err != nil {
		return err
	}
	d.log.Debug().Str("chat_id", chatID).Int("length", len(text)).Msg("reply dispatched")
	return nil
}
