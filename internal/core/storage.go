package core

import "context"

// ConversationStore is the durable record of conversations and their
// ordered messages. Sequence positions are assigned at insertion time
// by the backing store; callers never pick them.
type ConversationStore interface {
	CreateConversation(ctx context.Context, name string) (int64, error)
	AppendMessage(ctx context.Context, conversationID int64, role, content string) (int64, error)
	// AppendMessages inserts a batch in input order inside one
	// transaction: either all messages become visible or none do.
	AppendMessages(ctx context.Context, conversationID int64, msgs []Message) (int, error)
	ListMessages(ctx context.Context, conversationID int64) ([]StoredMessage, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
}

// MemoryStore holds long-term memory records and answers ranked
// retrieval queries over them.
type MemoryStore interface {
	InsertMemories(ctx context.Context, records []MemoryRecord) (int, error)
	// SearchMemories filters records whose title+content match the
	// query and orders matches most-recently-updated first. A limit
	// of zero or less yields no results.
	SearchMemories(ctx context.Context, query string, limit int) ([]MemoryHit, error)
}
