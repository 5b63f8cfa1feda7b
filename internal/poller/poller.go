// Package poller drives the receive, route, answer, dispatch, acknowledge
// cycle against the messaging gateway.
package poller

import (
	"context"
	"strings"
	"time"

	"github.com/rovelle/charbot/internal/domain"
	"github.com/rovelle/charbot/internal/logging"
	"github.com/rovelle/charbot/internal/session"
)

// Gateway is the inbound side of the messaging transport.
type Gateway interface {
	// Receive blocks until a notification arrives or the poll window closes.
	// A nil notification with a nil error means the queue was empty.
	Receive(ctx context.Context) (*domain.Notification, error)
	// Ack removes a consumed notification from the gateway queue.
	Ack(ctx context.Context, receiptID int64) error
}

// Resolver maps a sender to a live conversation.
type Resolver interface {
	Resolve(senderID, senderName string) *session.Conversation
}

// Recorder archives completed turns.
type Recorder interface {
	RecordTurn(ctx context.Context, ev domain.TurnEvent) error
}

// Poller is the single-threaded ingestion loop. Message handling is fully
// serialized: no second notification is taken while a turn is in flight, so
// gateway delivery order is the processing order.
type Poller struct {
	gateway    Gateway
	router     Resolver
	dispatcher *Dispatcher
	recorder   Recorder
	broker     *Broker
	retryDelay time.Duration
	log        *logging.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithRecorder attaches a turn archive.
func WithRecorder(r Recorder) Option {
	return func(p *Poller) { p.recorder = r }
}

// WithBroker attaches a turn event broker.
func WithBroker(b *Broker) Option {
	return func(p *Poller) { p.broker = b }
}

// WithRetryDelay overrides the pause after a failed cycle.
func WithRetryDelay(d time.Duration) Option {
	return func(p *Poller) { p.retryDelay = d }
}

// New creates a poller over the given gateway, router, and dispatcher.
func New(gateway Gateway, router Resolver, dispatcher *Dispatcher, log *logging.Logger, opts ...Option) *Poller {
	p := &Poller{
		gateway:    gateway,
		router:     router,
		dispatcher: dispatcher,
		retryDelay: 5 * time.Second,
		log:        log.Sub("poller"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until the context is cancelled. A failed cycle is logged and the
// loop continues after a delay; the failed notification stays unacknowledged
// so the gateway redelivers it.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info().Msg("poller started")
	for {
		if err := ctx.Err(); err != nil {
			p.log.Info().Msg("poller stopped")
			return err
		}

		if err := p.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				p.log.Info().Msg("poller stopped")
				return ctx.Err()
			}
			p.log.Error().Err(err).Msg("poll cycle failed")
			select {
			case <-ctx.Done():
				p.log.Info().Msg("poller stopped")
				return ctx.Err()
			case <-time.After(p.retryDelay):
			}
		}
	}
}

// RunOnce executes a single poll cycle. It returns without acknowledging
// on any failure, leaving the notification queued for redelivery.
func (p *Poller) RunOnce(ctx context.Context) error {
	n, err := p.gateway.Receive(ctx)
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}

	switch n.WebhookType {
	case domain.WebhookIncomingMessage, domain.WebhookOutgoingAPIMessage:
	default:
		p.log.Debug().Str("type", n.WebhookType).Msg("skipping webhook")
		return p.gateway.Ack(ctx, n.ReceiptID)
	}

	if strings.HasPrefix(n.Text, domain.ReplyMarker) {
		p.log.Debug().Str("sender", n.SenderID).Msg("own reply echo trapped, dropping")
		return p.gateway.Ack(ctx, n.ReceiptID)
	}

	name := n.SenderName
	if name == "" {
		name = domain.AnonymousName
	}

	conv := p.router.Resolve(n.SenderID, name)

	start := time.Now()
	reply, err := conv.Answer(ctx, n.Text)
	if err != nil {
		p.log.Error().Err(err).
			Str("conversation_id", conv.ID).
			Str("sender", n.SenderID).
			Msg("answer failed, leaving notification queued")
		return err
	}

	if err := p.dispatcher.Dispatch(ctx, n.SenderID, reply); err != nil {
		return err
	}

	p.publish(ctx, domain.TurnEvent{
		ConversationID: conv.ID,
		SenderID:       n.SenderID,
		SenderName:     name,
		Message:        n.Text,
		Reply:          reply,
		Duration:       time.Since(start),
		At:             time.Now().UTC(),
	})

	return p.gateway.Ack(ctx, n.ReceiptID)
}

// publish records and broadcasts a completed turn. Archive failures are
// logged, not propagated: the reply already went out.
func (p *Poller) publish(ctx context.Context, ev domain.TurnEvent) {
	if p.recorder != nil {
		if err := p.recorder.RecordTurn(ctx, ev); err != nil {
			p.log.Warn().Err(err).Msg("failed to archive turn")
		}
	}
	if p.broker != nil {
		p.broker.Publish(ev)
	}
}
