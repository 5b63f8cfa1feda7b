package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovelle/charbot/internal/catalog"
	"github.com/rovelle/charbot/internal/domain"
	"github.com/rovelle/charbot/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

// mockAnswerer is a test double for Answerer.
type mockAnswerer struct {
	answerFunc func(ctx context.Context, req domain.AnswerRequest) (string, error)
	requests   []domain.AnswerRequest
}

func (m *mockAnswerer) Answer(ctx context.Context, req domain.AnswerRequest) (string, error) {
	m.requests = append(m.requests, req)
	if m.answerFunc != nil {
		return m.answerFunc(ctx, req)
	}
	return "hi there", nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]domain.Character{
		{ID: "elon_musk", Name: "Elon Musk", SystemPrompt: "You are Elon Musk."},
	}, "elon_musk", testLogger())
	require.NoError(t, err)
	return c
}

func testRouter(t *testing.T, ans Answerer, capacity int) *Router {
	t.Helper()
	return NewRouter(NewMemoryStore(capacity), testCatalog(t), ans, testLogger())
}

// --- id tests ---

func TestNewID_Format(t *testing.T) {
	id := NewID()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), id)
	assert.NotEqual(t, id, NewID())
}

// --- Conversation tests ---

func TestConversation_Answer_AccumulatesHistory(t *testing.T) {
	ans := &mockAnswerer{
		answerFunc: func(_ context.Context, req domain.AnswerRequest) (string, error) {
			return "re: " + req.Message, nil
		},
	}
	conv := NewConversation(NewID(), "Alice", domain.Character{ID: "x", Name: "X"}, ans)

	messages := []string{"one", "two", "three"}
	for _, m := range messages {
		reply, err := conv.Answer(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, "re: "+m, reply)
	}

	require.Equal(t, len(messages), conv.History.Len())
	for i, turn := range conv.History.Turns() {
		assert.Equal(t, messages[i], turn.User)
		assert.Equal(t, "re: "+messages[i], turn.Assistant)
	}
}

func TestConversation_Answer_ContextBuiltBeforeAppend(t *testing.T) {
	ans := &mockAnswerer{}
	conv := NewConversation(NewID(), "Alice", domain.Character{ID: "x"}, ans)

	_, err := conv.Answer(context.Background(), "first")
	require.NoError(t, err)
	_, err = conv.Answer(context.Background(), "second")
	require.NoError(t, err)

	// First turn saw empty history; second saw exactly one prior turn.
	require.Len(t, ans.requests, 2)
	assert.Empty(t, ans.requests[0].History)
	require.Len(t, ans.requests[1].History, 1)
	assert.Equal(t, "first", ans.requests[1].History[0].User)
}

func TestConversation_Answer_FailureLeavesHistoryUntouched(t *testing.T) {
	boom := errors.New("engine down")
	fail := true
	ans := &mockAnswerer{
		answerFunc: func(_ context.Context, req domain.AnswerRequest) (string, error) {
			if fail {
				return "", boom
			}
			return "recovered", nil
		},
	}
	conv := NewConversation(NewID(), "Alice", domain.Character{ID: "x"}, ans)

	_, err := conv.Answer(context.Background(), "hello")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, conv.History.Len())

	// Retryable: the same message succeeds later and appends exactly once.
	fail = false
	_, err = conv.Answer(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, conv.History.Len())
}

func TestConversation_Answer_FreshMessageIDPerTurn(t *testing.T) {
	ans := &mockAnswerer{}
	conv := NewConversation(NewID(), "Alice", domain.Character{ID: "x"}, ans)

	_, _ = conv.Answer(context.Background(), "a")
	_, _ = conv.Answer(context.Background(), "b")

	require.Len(t, ans.requests, 2)
	assert.NotEmpty(t, ans.requests[0].MessageID)
	assert.NotEqual(t, ans.requests[0].MessageID, ans.requests[1].MessageID)
}

func TestConversation_Answer_AugmentationDisabled(t *testing.T) {
	ans := &mockAnswerer{}
	conv := NewConversation(NewID(), "Alice", domain.Character{ID: "x"}, ans)

	_, _ = conv.Answer(context.Background(), "a")

	require.Len(t, ans.requests, 1)
	assert.Equal(t, domain.AnswerOptions{}, ans.requests[0].Options)
}

// --- Router tests ---

func TestRouter_Resolve_StableForKnownSender(t *testing.T) {
	r := testRouter(t, &mockAnswerer{}, 0)

	c1 := r.Resolve("U1", "Alice")
	c2 := r.Resolve("U1", "Alice")

	assert.Equal(t, c1.ID, c2.ID)
	assert.Same(t, c1, c2)
	assert.Equal(t, 1, r.Len())
}

func TestRouter_Resolve_DistinctSenders(t *testing.T) {
	ans := &mockAnswerer{}
	r := testRouter(t, ans, 0)

	c1 := r.Resolve("U1", "Alice")
	c2 := r.Resolve("U2", "Bob")

	assert.NotEqual(t, c1.ID, c2.ID)
	assert.Equal(t, 2, r.Len())

	_, err := c1.Answer(context.Background(), "hello from U1")
	require.NoError(t, err)
	_, err = c2.Answer(context.Background(), "hello from U2")
	require.NoError(t, err)

	assert.Equal(t, 1, c1.History.Len())
	assert.Equal(t, 1, c2.History.Len())
	assert.Equal(t, "hello from U1", c1.History.Turns()[0].User)
	assert.Equal(t, "hello from U2", c2.History.Turns()[0].User)
}

func TestRouter_Resolve_LostSessionRecovery(t *testing.T) {
	store := NewMemoryStore(0)
	r := NewRouter(store, testCatalog(t), &mockAnswerer{}, testLogger())

	c1 := r.Resolve("U1", "Alice")
	_, err := c1.Answer(context.Background(), "remember me")
	require.NoError(t, err)

	// Simulate the conversation disappearing from the store.
	store.Remove(c1.ID)

	c2 := r.Resolve("U1", "Alice")
	assert.NotEqual(t, c1.ID, c2.ID)
	assert.Equal(t, 0, c2.History.Len())

	// The fresh mapping is stable again.
	assert.Same(t, c2, r.Resolve("U1", "Alice"))
}

func TestRouter_Resolve_UsesDefaultCharacter(t *testing.T) {
	r := testRouter(t, &mockAnswerer{}, 0)
	c := r.Resolve("U1", "Alice")
	assert.Equal(t, "elon_musk", c.Character.ID)
	assert.Equal(t, "Alice", c.SenderName)
}

func TestRouter_EvictionTriggersRecovery(t *testing.T) {
	r := testRouter(t, &mockAnswerer{}, 2)

	c1 := r.Resolve("U1", "Alice")
	r.Resolve("U2", "Bob")
	r.Resolve("U3", "Carol") // evicts U1's conversation (LRU)

	assert.Equal(t, 2, r.Len())

	recovered := r.Resolve("U1", "Alice")
	assert.NotEqual(t, c1.ID, recovered.ID)
	assert.Equal(t, 0, recovered.History.Len())
}

func TestRouter_EvictionPrunesSenderMapping(t *testing.T) {
	r := testRouter(t, &mockAnswerer{}, 2)

	r.Resolve("U1", "Alice")
	r.Resolve("U2", "Bob")
	r.Resolve("U3", "Carol") // evicts U1's conversation (LRU)

	// Both mappings stay bounded along with the store.
	assert.Len(t, r.senderToConversation, 2)
	assert.Len(t, r.conversationToSender, 2)
	_, ok := r.senderToConversation["U1"]
	assert.False(t, ok)

	// U1 comes back through the first-contact path, evicting U2 in turn.
	r.Resolve("U1", "Alice")
	assert.Len(t, r.senderToConversation, 2)
	assert.Len(t, r.conversationToSender, 2)
	_, ok = r.senderToConversation["U2"]
	assert.False(t, ok)
}

func TestRouter_StaleRecoveryPrunesOldMapping(t *testing.T) {
	store := NewMemoryStore(0)
	r := NewRouter(store, testCatalog(t), &mockAnswerer{}, testLogger())

	c1 := r.Resolve("U1", "Alice")
	store.Remove(c1.ID)
	r.Resolve("U1", "Alice")

	// The recreated mapping replaces the stale one in both directions.
	assert.Len(t, r.senderToConversation, 1)
	assert.Len(t, r.conversationToSender, 1)
	_, ok := r.conversationToSender[c1.ID]
	assert.False(t, ok)
}

// --- Store tests ---

func TestMemoryStore_EvictionCallback(t *testing.T) {
	s := NewMemoryStore(1)
	var evicted []string
	s.SetOnEvict(func(id string) { evicted = append(evicted, id) })

	s.Put("c1", NewConversation("c1", "x", domain.Character{}, &mockAnswerer{}))
	s.Put("c2", NewConversation("c2", "x", domain.Character{}, &mockAnswerer{}))

	assert.Equal(t, []string{"c1"}, evicted)

	// Overwriting an existing id evicts nothing.
	s.Put("c2", NewConversation("c2", "y", domain.Character{}, &mockAnswerer{}))
	assert.Len(t, evicted, 1)
}

func TestMemoryStore_PutGetRemove(t *testing.T) {
	s := NewMemoryStore(0)
	conv := NewConversation("abc", "Alice", domain.Character{}, &mockAnswerer{})

	s.Put("abc", conv)
	got, ok := s.Get("abc")
	require.True(t, ok)
	assert.Same(t, conv, got)

	s.Remove("abc")
	_, ok = s.Get("abc")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	s := NewMemoryStore(2)
	ans := &mockAnswerer{}

	for i := 1; i <= 2; i++ {
		id := fmt.Sprintf("c%d", i)
		s.Put(id, NewConversation(id, "x", domain.Character{}, ans))
	}

	// Touch c1 so c2 becomes the eviction candidate.
	_, ok := s.Get("c1")
	require.True(t, ok)

	s.Put("c3", NewConversation("c3", "x", domain.Character{}, ans))

	_, ok = s.Get("c1")
	assert.True(t, ok)
	_, ok = s.Get("c2")
	assert.False(t, ok)
	_, ok = s.Get("c3")
	assert.True(t, ok)
}

func TestMemoryStore_UnboundedByDefault(t *testing.T) {
	s := NewMemoryStore(0)
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("c%d", i)
		s.Put(id, NewConversation(id, "x", domain.Character{}, &mockAnswerer{}))
	}
	assert.Equal(t, 100, s.Len())
}
