// Package chat runs the end-to-end chat turn: resolve the conversation,
// load its history, retrieve memory, assemble the prompt, call the
// backend and persist both sides of the turn.
package chat

import (
	"context"
	"fmt"

	"github.com/avasile/mnemo/internal/core"
	"github.com/avasile/mnemo/internal/service/prompt"
	"github.com/avasile/mnemo/pkg/log"
)

// memoryQueryLength caps the fallback retrieval query taken from the
// user text when no explicit memory_query is given. The cap counts
// characters, not bytes.
const memoryQueryLength = 128

type Request struct {
	ConversationID *int64 `json:"conversation_id"`
	User           string `json:"user"`
	UseMemory      *bool  `json:"use_memory"`
	MemoryQuery    string `json:"memory_query"`
	SystemPrompt   string `json:"system_prompt"`
}

type Response struct {
	ConversationID int64  `json:"conversation_id"`
	Reply          string `json:"reply"`
}

type Service struct {
	store       core.ConversationStore
	memories    core.MemoryStore
	provider    core.Provider
	memoryLimit int
}

func NewService(store core.ConversationStore, memories core.MemoryStore, provider core.Provider, memoryLimit int) *Service {
	return &Service{
		store:       store,
		memories:    memories,
		provider:    provider,
		memoryLimit: memoryLimit,
	}
}

// Chat executes one turn. The user message is committed strictly before
// the backend call, so a generation failure leaves the conversation
// ending in an unanswered user message; nothing rolls it back.
func (s *Service) Chat(ctx context.Context, req Request) (Response, error) {
	if req.User == "" {
		return Response{}, core.NewValidationError("user text is required")
	}

	convID, err := s.resolveConversation(ctx, req.ConversationID)
	if err != nil {
		return Response{}, err
	}

	history, err := s.store.ListMessages(ctx, convID)
	if err != nil {
		return Response{}, fmt.Errorf("failed to load history: %w", err)
	}

	var hits []core.MemoryHit
	if req.UseMemory == nil || *req.UseMemory {
		hits = s.retrieveMemory(ctx, req)
	}

	messages := prompt.Assemble(req.SystemPrompt, history, hits, req.User)

	if _, err := s.store.AppendMessage(ctx, convID, core.RoleUser, req.User); err != nil {
		return Response{}, fmt.Errorf("failed to persist user turn: %w", err)
	}

	reply, err := s.provider.Generate(ctx, messages)
	if err != nil {
		return Response{}, err
	}

	if _, err := s.store.AppendMessage(ctx, convID, core.RoleAssistant, reply); err != nil {
		return Response{}, fmt.Errorf("failed to persist assistant turn: %w", err)
	}

	return Response{ConversationID: convID, Reply: reply}, nil
}

// resolveConversation keeps lazy creation an explicit branch so the
// create and resume paths stay independently testable.
func (s *Service) resolveConversation(ctx context.Context, id *int64) (int64, error) {
	if id != nil {
		return *id, nil
	}
	convID, err := s.store.CreateConversation(ctx, core.DefaultConversationName)
	if err != nil {
		return 0, fmt.Errorf("failed to create conversation: %w", err)
	}
	return convID, nil
}

// retrieveMemory is advisory: a failed search degrades to an empty
// block instead of failing the turn.
func (s *Service) retrieveMemory(ctx context.Context, req Request) []core.MemoryHit {
	query := req.MemoryQuery
	if query == "" {
		query = truncateRunes(req.User, memoryQueryLength)
	}

	hits, err := s.memories.SearchMemories(ctx, query, s.memoryLimit)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("memory retrieval failed")
		return nil
	}
	return hits
}

// truncateRunes caps s at n characters without ever splitting a rune;
// a byte slice here would hand the store invalid UTF-8.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
