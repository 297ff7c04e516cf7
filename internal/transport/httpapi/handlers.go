package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/avasile/mnemo/internal/core"
	"github.com/avasile/mnemo/internal/service/chat"
	"github.com/avasile/mnemo/internal/service/importer"
	"github.com/avasile/mnemo/pkg/log"
)

const defaultSearchLimit = 8

type Handlers struct {
	chat     *chat.Service
	importer *importer.Service
	store    core.ConversationStore
	memories core.MemoryStore
}

func NewHandlers(chatSvc *chat.Service, importSvc *importer.Service, store core.ConversationStore, memories core.MemoryStore) *Handlers {
	return &Handlers{
		chat:     chatSvc,
		importer: importSvc,
		store:    store,
		memories: memories,
	}
}

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, core.NewValidationError("malformed request body: %v", err))
		return
	}

	resp, err := h.chat.Chat(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ImportMemory(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, core.NewImportError("failed to read body: %v", err))
		return
	}

	inserted, err := h.importer.ImportMemory(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}

func (h *Handlers) ImportChat(w http.ResponseWriter, r *http.Request) {
	var payload importer.ChatLog
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, core.NewImportError("malformed request body: %v", err))
		return
	}

	convID, inserted, err := h.importer.ImportChat(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"conversation_id": convID,
		"inserted":        int64(inserted),
	})
}

func (h *Handlers) SearchMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, r, core.NewValidationError("query parameter q is required"))
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, core.NewValidationError("limit must be an integer"))
			return
		}
		limit = n
	}

	hits, err := h.memories.SearchMemories(r.Context(), q, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if hits == nil {
		hits = []core.MemoryHit{}
	}
	writeJSON(w, http.StatusOK, hits)
}

func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.ListConversations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if conversations == nil {
		conversations = []core.Conversation{}
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes: malformed
// requests and import documents are the caller's fault, everything
// else (store, backend) is a server failure carrying its diagnostic.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var validationErr *core.ValidationError
	var importErr *core.ImportError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &importErr):
		status = http.StatusBadRequest
	}

	if status >= 500 {
		log.FromCtx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.FromCtx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
