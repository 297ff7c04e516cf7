// Package importer ingests legacy export formats into the store.
// Imports are additive: re-running one inserts the same records again
// rather than merging, and never corrupts what is already there.
package importer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avasile/mnemo/internal/core"
	"github.com/avasile/mnemo/pkg/log"
)

const (
	ScopePreference = "preference"
	ScopeProject    = "project"
	ScopePersona    = "persona"
)

// MemoryDocument is the exported memory format. Every field is
// optional; absent sections are simply skipped.
type MemoryDocument struct {
	Preferences struct {
		Style        string `json:"style"`
		Deliverables string `json:"deliverables"`
	} `json:"preferences"`
	Projects         []json.RawMessage `json:"projects"`
	LongTermMemories []struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"long_term_memories"`
}

type Service struct {
	store    core.ConversationStore
	memories core.MemoryStore
}

func NewService(store core.ConversationStore, memories core.MemoryStore) *Service {
	return &Service{store: store, memories: memories}
}

// FlattenMemoryDocument turns the nested export document into the flat
// (scope, title, content) records the store holds.
func FlattenMemoryDocument(raw []byte) ([]core.MemoryRecord, error) {
	var doc MemoryDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, core.NewImportError("malformed memory document: %v", err)
	}

	var records []core.MemoryRecord
	if doc.Preferences.Style != "" {
		records = append(records, core.MemoryRecord{
			Scope: ScopePreference, Title: "style", Content: doc.Preferences.Style,
		})
	}
	if doc.Preferences.Deliverables != "" {
		records = append(records, core.MemoryRecord{
			Scope: ScopePreference, Title: "deliverables", Content: doc.Preferences.Deliverables,
		})
	}

	for i, p := range doc.Projects {
		var fields struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(p, &fields); err != nil {
			return nil, core.NewImportError("malformed project entry %d: %v", i, err)
		}
		// The full project structure goes into content, not just the name.
		records = append(records, core.MemoryRecord{
			Scope:   ScopeProject,
			Title:   fmt.Sprintf("project:%s", fields.Name),
			Content: string(p),
		})
	}

	for i, m := range doc.LongTermMemories {
		if m.Title == "" {
			return nil, core.NewImportError("long_term_memories entry %d has no title", i)
		}
		records = append(records, core.MemoryRecord{
			Scope: ScopePersona, Title: m.Title, Content: m.Summary,
		})
	}

	return records, nil
}

// ImportMemory flattens the document and inserts all records in one
// batch. Returns how many were inserted.
func (s *Service) ImportMemory(ctx context.Context, raw []byte) (int, error) {
	records, err := FlattenMemoryDocument(raw)
	if err != nil {
		return 0, err
	}

	inserted, err := s.memories.InsertMemories(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("failed to insert memories: %w", err)
	}

	log.FromCtx(ctx).Info().Int("inserted", inserted).Msg("imported memory document")
	return inserted, nil
}

// ChatLog is an exported conversation transcript.
type ChatLog struct {
	ConversationID *int64         `json:"conversation_id"`
	Name           string         `json:"name"`
	Messages       []core.Message `json:"messages"`
}

// ImportChat resolves or creates the target conversation and appends
// all messages preserving input order. Returns the conversation id and
// the number of messages inserted.
func (s *Service) ImportChat(ctx context.Context, payload ChatLog) (int64, int, error) {
	if len(payload.Messages) == 0 {
		return 0, 0, core.NewImportError("chat log has no messages")
	}
	for i, m := range payload.Messages {
		if !core.ValidRole(m.Role) {
			return 0, 0, core.NewImportError("message %d has invalid role %q", i, m.Role)
		}
	}

	convID := int64(0)
	if payload.ConversationID != nil {
		convID = *payload.ConversationID
	} else {
		name := payload.Name
		if name == "" {
			name = core.DefaultImportName
		}
		id, err := s.store.CreateConversation(ctx, name)
		if err != nil {
			return 0, 0, err
		}
		convID = id
	}

	inserted, err := s.store.AppendMessages(ctx, convID, payload.Messages)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to append chat log: %w", err)
	}

	log.FromCtx(ctx).Info().
		Int64("conversation_id", convID).
		Int("inserted", inserted).
		Msg("imported chat log")
	return convID, inserted, nil
}
