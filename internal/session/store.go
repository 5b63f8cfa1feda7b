package session

import (
	"container/list"
	"sync"
)

// Store holds live conversations by id. Implementations may evict entries;
// the router treats a miss as a lost session and re-creates it.
type Store interface {
	// Get returns the conversation for an id, marking it recently used.
	Get(id string) (*Conversation, bool)

	// Put inserts a conversation, possibly evicting another.
	Put(id string, c *Conversation)

	// Remove deletes a conversation by id.
	Remove(id string)

	// Len returns the number of live conversations.
	Len() int
}

// MemoryStore is an in-memory Store with an optional LRU capacity bound.
// Capacity 0 means unbounded.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
	onEvict  func(id string)
}

type storeEntry struct {
	id   string
	conv *Conversation
}

// NewMemoryStore creates a store bounded to capacity conversations.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (s *MemoryStore) Get(id string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*storeEntry).conv, true
}

// SetOnEvict registers a callback receiving the id of each conversation the
// capacity bound pushes out. Called synchronously from Put, so it must not
// call back into the store.
func (s *MemoryStore) SetOnEvict(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

func (s *MemoryStore) Put(id string, c *Conversation) {
	s.mu.Lock()

	if el, ok := s.entries[id]; ok {
		el.Value.(*storeEntry).conv = c
		s.order.MoveToFront(el)
		s.mu.Unlock()
		return
	}

	s.entries[id] = s.order.PushFront(&storeEntry{id: id, conv: c})

	var evicted string
	if s.capacity > 0 && s.order.Len() > s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			evicted = oldest.Value.(*storeEntry).id
			delete(s.entries, evicted)
		}
	}
	onEvict := s.onEvict
	s.mu.Unlock()

	if evicted != "" && onEvict != nil {
		onEvict(evicted)
	}
}

func (s *MemoryStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[id]; ok {
		s.order.Remove(el)
		delete(s.entries, id)
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
