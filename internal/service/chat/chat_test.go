package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasile/mnemo/internal/core"
)

type fakeStore struct {
	nextConvID int64
	created    []string
	messages   map[int64][]core.StoredMessage
	appendErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextConvID: 1, messages: make(map[int64][]core.StoredMessage)}
}

func (f *fakeStore) CreateConversation(ctx context.Context, name string) (int64, error) {
	f.created = append(f.created, name)
	id := f.nextConvID
	f.nextConvID++
	return id, nil
}

func (f *fakeStore) AppendMessage(ctx context.Context, id int64, role, content string) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	seq := int64(len(f.messages[id]) + 1)
	f.messages[id] = append(f.messages[id], core.StoredMessage{
		Seq: seq, ConversationID: id, Role: role, Content: content,
	})
	return seq, nil
}

func (f *fakeStore) AppendMessages(ctx context.Context, id int64, msgs []core.Message) (int, error) {
	for _, m := range msgs {
		if _, err := f.AppendMessage(ctx, id, m.Role, m.Content); err != nil {
			return 0, err
		}
	}
	return len(msgs), nil
}

func (f *fakeStore) ListMessages(ctx context.Context, id int64) ([]core.StoredMessage, error) {
	return f.messages[id], nil
}

func (f *fakeStore) ListConversations(ctx context.Context) ([]core.Conversation, error) {
	return nil, nil
}

type fakeMemories struct {
	hits      []core.MemoryHit
	searchErr error
	queries   []string
	limits    []int
}

func (f *fakeMemories) InsertMemories(ctx context.Context, records []core.MemoryRecord) (int, error) {
	return len(records), nil
}

func (f *fakeMemories) SearchMemories(ctx context.Context, query string, limit int) ([]core.MemoryHit, error) {
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

type fakeProvider struct {
	reply    string
	err      error
	received [][]core.Message
}

func (f *fakeProvider) Generate(ctx context.Context, messages []core.Message) (string, error) {
	f.received = append(f.received, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newService(store *fakeStore, memories *fakeMemories, provider *fakeProvider) *Service {
	return NewService(store, memories, provider, 8)
}

func TestChatCreatesConversationLazily(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{reply: "hi there"}
	svc := newService(store, &fakeMemories{}, provider)

	resp, err := svc.Chat(context.Background(), Request{User: "hello"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ConversationID)
	assert.Equal(t, "hi there", resp.Reply)
	assert.Equal(t, []string{core.DefaultConversationName}, store.created)
}

func TestChatResumesConversation(t *testing.T) {
	store := newFakeStore()
	convID, err := store.CreateConversation(context.Background(), "existing")
	require.NoError(t, err)
	_, err = store.AppendMessage(context.Background(), convID, core.RoleUser, "earlier question")
	require.NoError(t, err)
	_, err = store.AppendMessage(context.Background(), convID, core.RoleAssistant, "earlier answer")
	require.NoError(t, err)

	provider := &fakeProvider{reply: "next answer"}
	svc := newService(store, &fakeMemories{}, provider)

	resp, err := svc.Chat(context.Background(), Request{ConversationID: &convID, User: "next question"})
	require.NoError(t, err)
	assert.Equal(t, convID, resp.ConversationID)
	// No second conversation was created.
	assert.Equal(t, []string{"existing"}, store.created)

	// The backend saw the prior history verbatim before the new turn.
	require.Len(t, provider.received, 1)
	sent := provider.received[0]
	require.Len(t, sent, 4)
	assert.Equal(t, core.Message{Role: core.RoleSystem, Content: core.DefaultSystemPrompt}, sent[0])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "earlier question"}, sent[1])
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "earlier answer"}, sent[2])
	assert.Equal(t, core.Message{Role: core.RoleUser, Content: "next question"}, sent[3])
}

func TestChatTurnOrdering(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{reply: "r"}
	svc := newService(store, &fakeMemories{}, provider)

	// Three turns on the same conversation.
	resp, err := svc.Chat(context.Background(), Request{User: "t1"})
	require.NoError(t, err)
	convID := resp.ConversationID
	for _, text := range []string{"t2", "t3"} {
		_, err := svc.Chat(context.Background(), Request{ConversationID: &convID, User: text})
		require.NoError(t, err)
	}

	stored, err := store.ListMessages(context.Background(), convID)
	require.NoError(t, err)
	require.Len(t, stored, 6)
	for i, msg := range stored {
		assert.Equal(t, int64(i+1), msg.Seq)
		if i%2 == 0 {
			assert.Equal(t, core.RoleUser, msg.Role)
		} else {
			assert.Equal(t, core.RoleAssistant, msg.Role)
		}
	}
}

func TestChatBackendFailureLeavesUserTurn(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{err: &core.BackendError{Status: 500, Detail: "upstream exploded"}}
	svc := newService(store, &fakeMemories{}, provider)

	_, err := svc.Chat(context.Background(), Request{User: "doomed"})
	var backendErr *core.BackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Contains(t, backendErr.Detail, "upstream exploded")

	// The user turn was committed before the call; the reply never was.
	stored, err := store.ListMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, core.RoleUser, stored[0].Role)
	assert.Equal(t, "doomed", stored[0].Content)
}

func TestChatValidation(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeMemories{}, &fakeProvider{reply: "r"})

	_, err := svc.Chat(context.Background(), Request{})
	var validationErr *core.ValidationError
	require.True(t, errors.As(err, &validationErr))
	// Rejected before any store access.
	assert.Empty(t, store.created)
}

func TestChatMemoryRetrieval(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	t.Run("memory block lands between history and user text", func(t *testing.T) {
		memories := &fakeMemories{hits: []core.MemoryHit{{Scope: "p", Title: "T", Snippet: "C"}}}
		provider := &fakeProvider{reply: "r"}
		svc := newService(newFakeStore(), memories, provider)

		_, err := svc.Chat(context.Background(), Request{User: "U", SystemPrompt: "S"})
		require.NoError(t, err)

		sent := provider.received[0]
		require.Len(t, sent, 3)
		assert.Equal(t, "S", sent[0].Content)
		assert.Equal(t, core.RoleSystem, sent[1].Role)
		assert.Contains(t, sent[1].Content, "[p] T: C")
		assert.Equal(t, core.Message{Role: core.RoleUser, Content: "U"}, sent[2])
	})

	t.Run("defaults to on with query from user text", func(t *testing.T) {
		memories := &fakeMemories{}
		svc := newService(newFakeStore(), memories, &fakeProvider{reply: "r"})

		_, err := svc.Chat(context.Background(), Request{User: "what is my timezone"})
		require.NoError(t, err)
		assert.Equal(t, []string{"what is my timezone"}, memories.queries)
		assert.Equal(t, []int{8}, memories.limits)
	})

	t.Run("long user text is truncated for the query", func(t *testing.T) {
		memories := &fakeMemories{}
		svc := newService(newFakeStore(), memories, &fakeProvider{reply: "r"})

		long := strings.Repeat("x", 500)
		_, err := svc.Chat(context.Background(), Request{User: long})
		require.NoError(t, err)
		require.Len(t, memories.queries, 1)
		assert.Len(t, memories.queries[0], 128)
	})

	t.Run("truncation counts characters and keeps valid utf-8", func(t *testing.T) {
		memories := &fakeMemories{}
		svc := newService(newFakeStore(), memories, &fakeProvider{reply: "r"})

		// 200 characters across 3-byte and 2-byte runes; a byte cap
		// would cut mid-rune at byte 128.
		long := strings.Repeat("€á", 100)
		_, err := svc.Chat(context.Background(), Request{User: long})
		require.NoError(t, err)
		require.Len(t, memories.queries, 1)

		query := memories.queries[0]
		assert.True(t, utf8.ValidString(query))
		assert.Equal(t, 128, utf8.RuneCountInString(query))
		assert.Equal(t, strings.Repeat("€á", 64), query)
	})

	t.Run("multi-byte text under the cap passes through whole", func(t *testing.T) {
		memories := &fakeMemories{}
		svc := newService(newFakeStore(), memories, &fakeProvider{reply: "r"})

		// 60 characters but 180 bytes: the cap must not touch it.
		long := strings.Repeat("€", 60)
		_, err := svc.Chat(context.Background(), Request{User: long})
		require.NoError(t, err)
		require.Len(t, memories.queries, 1)
		assert.Equal(t, long, memories.queries[0])
	})

	t.Run("explicit memory query wins", func(t *testing.T) {
		memories := &fakeMemories{}
		svc := newService(newFakeStore(), memories, &fakeProvider{reply: "r"})

		_, err := svc.Chat(context.Background(), Request{User: "hello", MemoryQuery: "timezone"})
		require.NoError(t, err)
		assert.Equal(t, []string{"timezone"}, memories.queries)
	})

	t.Run("use_memory false skips retrieval", func(t *testing.T) {
		memories := &fakeMemories{hits: []core.MemoryHit{{Scope: "p", Title: "T", Snippet: "C"}}}
		provider := &fakeProvider{reply: "r"}
		svc := newService(newFakeStore(), memories, provider)

		_, err := svc.Chat(context.Background(), Request{User: "U", UseMemory: boolPtr(false)})
		require.NoError(t, err)
		assert.Empty(t, memories.queries)
		// system + user only
		require.Len(t, provider.received[0], 2)
	})

	t.Run("search failure degrades to no memory block", func(t *testing.T) {
		memories := &fakeMemories{searchErr: errors.New("index down")}
		provider := &fakeProvider{reply: "r"}
		svc := newService(newFakeStore(), memories, provider)

		resp, err := svc.Chat(context.Background(), Request{User: "U"})
		require.NoError(t, err)
		assert.Equal(t, "r", resp.Reply)
		require.Len(t, provider.received[0], 2)
	})
}
