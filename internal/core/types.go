package core

import "time"

const (
	ServiceName          = "mnemo"
	ServiceVersion       = "0.1.0"
	ServiceRepositoryURL = "https://github.com/avasile/mnemo"

	// DefaultConversationName is used when a conversation is created
	// lazily on the first chat turn.
	DefaultConversationName = "default"

	// DefaultImportName is used when a chat log import does not name
	// its target conversation.
	DefaultImportName = "imported"

	// DefaultSystemPrompt is the preamble sent when a request carries
	// no system prompt of its own.
	DefaultSystemPrompt = "You are a helpful assistant."

	// SnippetLength caps memory snippets returned from search.
	SnippetLength = 800
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ValidRole reports whether role is one of the three roles a stored
// message may carry.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is the wire form of a single conversation entry, both as sent
// to a generation backend and as accepted by the import surface.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StoredMessage is a message as persisted, with its store-assigned
// sequence position. Replaying a conversation's stored messages in
// Seq order reconstructs the exact turn history.
type StoredMessage struct {
	Seq            int64     `json:"seq"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type Conversation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryRecord is a standalone scope-tagged fact usable as retrieval
// context across conversations.
type MemoryRecord struct {
	Scope   string `json:"scope"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MemoryHit is one search result. Snippet is the record content capped
// at SnippetLength characters.
type MemoryHit struct {
	ID      int64  `json:"id"`
	Scope   string `json:"scope"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
