package session

import (
	"sync"

	"github.com/rovelle/charbot/internal/catalog"
	"github.com/rovelle/charbot/internal/logging"
)

// Router maps sender identities to conversations. It is the sole mutator of
// its two mappings; resolution is idempotent and always yields a live
// conversation. A sender whose conversation has gone missing (evicted, or the
// process restarted) goes through lost-session recovery: a new conversation
// with a new id and an empty history. Continuity is traded for availability.
type Router struct {
	mu sync.Mutex

	senderToConversation map[string]string
	conversationToSender map[string]string
	conversations        Store

	characters *catalog.Catalog
	answerer   Answerer
	log        *logging.Logger
}

// NewRouter creates a session router. A capacity-bounded store is hooked up
// to prune the sender mappings of whatever it evicts, so the mappings stay
// bounded along with the conversations.
func NewRouter(conversations Store, characters *catalog.Catalog, answerer Answerer, log *logging.Logger) *Router {
	r := &Router{
		senderToConversation: make(map[string]string),
		conversationToSender: make(map[string]string),
		conversations:        conversations,
		characters:           characters,
		answerer:             answerer,
		log:                  log.Sub("session"),
	}
	if ms, ok := conversations.(*MemoryStore); ok {
		ms.SetOnEvict(r.pruneMapping)
	}
	return r
}

// Resolve returns the live conversation for a sender, creating one on first
// contact and re-creating one when the previous conversation is gone.
func (r *Router) Resolve(senderID, senderName string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversationID, known := r.senderToConversation[senderID]
	if !known {
		r.log.Info().Str("sender", senderID).Msg("creating conversation for new sender")
		return r.create(senderID, senderName)
	}

	conv, ok := r.conversations.Get(conversationID)
	if !ok {
		// Stale mapping: the conversation id no longer resolves. Prior
		// history is unrecoverable; start over for this sender.
		r.log.Info().
			Str("sender", senderID).
			Str("conversationId", conversationID).
			Msg("conversation lost, recreating")
		return r.create(senderID, senderName)
	}

	return conv
}

// Len returns the number of live conversations.
func (r *Router) Len() int {
	return r.conversations.Len()
}

// create allocates a conversation bound to the default character and records
// both mappings, dropping any stale mapping for the sender. Caller holds r.mu.
func (r *Router) create(senderID, senderName string) *Conversation {
	if old, ok := r.senderToConversation[senderID]; ok {
		delete(r.conversationToSender, old)
	}

	conv := NewConversation(NewID(), senderName, r.characters.Default(), r.answerer)
	r.senderToConversation[senderID] = conv.ID
	r.conversationToSender[conv.ID] = senderID
	r.conversations.Put(conv.ID, conv)

	r.log.Debug().
		Str("sender", senderID).
		Str("conversationId", conv.ID).
		Str("character", conv.Character.ID).
		Msg("conversation registered")
	return conv
}

// pruneMapping drops the sender mapping for an evicted conversation. Invoked
// synchronously from the store's Put; the router only calls Put from create,
// which already holds r.mu, so no extra locking here.
func (r *Router) pruneMapping(conversationID string) {
	senderID, ok := r.conversationToSender[conversationID]
	if !ok {
		return
	}
	delete(r.conversationToSender, conversationID)
	if r.senderToConversation[senderID] == conversationID {
		delete(r.senderToConversation, senderID)
	}
}
