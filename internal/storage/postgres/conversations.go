package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avasile/mnemo/internal/core"
	"github.com/avasile/mnemo/pkg/log"
)

type ConversationsRepo struct {
	db *sql.DB
}

func NewConversationsRepo(db *sql.DB) *ConversationsRepo {
	return &ConversationsRepo{db: db}
}

func (r *ConversationsRepo) CreateConversation(ctx context.Context, name string) (int64, error) {
	if name == "" {
		name = core.DefaultConversationName
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO conversations (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create conversation: %w", err)
	}

	log.FromCtx(ctx).Debug().Int64("conversation_id", id).Str("name", name).Msg("created conversation")
	return id, nil
}

func (r *ConversationsRepo) AppendMessage(ctx context.Context, conversationID int64, role, content string) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (conversation_id, role, content) VALUES ($1, $2, $3) RETURNING id`,
		conversationID, role, content,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}
	return seq, nil
}

// AppendMessages inserts msgs in input order inside one transaction, so
// a partial chat-log import is never visible.
func (r *ConversationsRepo) AppendMessages(ctx context.Context, conversationID int64, msgs []core.Message) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (conversation_id, role, content) VALUES ($1, $2, $3)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range msgs {
		if _, err := stmt.ExecContext(ctx, conversationID, msg.Role, msg.Content); err != nil {
			return 0, fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(msgs), nil
}

func (r *ConversationsRepo) ListMessages(ctx context.Context, conversationID int64) ([]core.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.StoredMessage
	for rows.Next() {
		var msg core.StoredMessage
		if err := rows.Scan(&msg.Seq, &msg.ConversationID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

func (r *ConversationsRepo) ListConversations(ctx context.Context) ([]core.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM conversations ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var conversations []core.Conversation
	for rows.Next() {
		var c core.Conversation
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}
