package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avasile/mnemo/internal/core"
	"github.com/avasile/mnemo/pkg/log"
)

type MemoriesRepo struct {
	db *sql.DB
}

func NewMemoriesRepo(db *sql.DB) *MemoriesRepo {
	return &MemoriesRepo{db: db}
}

// InsertMemories writes the batch inside one transaction. Duplicate
// (scope, title) pairs are allowed; repeated imports accumulate.
func (r *MemoriesRepo) InsertMemories(ctx context.Context, records []core.MemoryRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO memories (scope, title, content) VALUES ($1, $2, $3)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Scope, rec.Title, rec.Content); err != nil {
			return 0, fmt.Errorf("failed to insert memory: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// SearchMemories filters by full-text match over title and content and
// orders matches by update recency. Recency, not lexical score, is the
// ranking: the newest matching record comes first.
func (r *MemoriesRepo) SearchMemories(ctx context.Context, query string, limit int) ([]core.MemoryHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scope, title, left(content, $1) AS snippet
		 FROM memories
		 WHERE to_tsvector('english', title || ' ' || content) @@ plainto_tsquery('english', $2)
		 ORDER BY updated_at DESC
		 LIMIT $3`,
		core.SnippetLength, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("memory search failed: %w", err)
	}
	defer rows.Close()

	var hits []core.MemoryHit
	for rows.Next() {
		var h core.MemoryHit
		if err := rows.Scan(&h.ID, &h.Scope, &h.Title, &h.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan memory hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("query", query).Int("hits", len(hits)).Msg("memory search")
	return hits, nil
}
