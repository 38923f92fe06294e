package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/profiletwin/internal/core"
)

// MessagesRepo keeps a transcript of answered questions for later review.
type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

// AddExchange stores the question and the answer in one transaction.
func (h *MessagesRepo) AddExchange(ctx context.Context, ex core.Exchange) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO messages (session_id, role, content, language, pattern, results, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	// 1. User question
	if _, err := tx.ExecContext(ctx, query,
		ex.SessionID, core.RoleUser, ex.Question.Text, ex.Language, "", 0, false, ex.Question.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	// 2. Assistant answer with retrieval metadata
	if _, err := tx.ExecContext(ctx, query,
		ex.SessionID, core.RoleAssistant, ex.Answer.Text, ex.Language, string(ex.Pattern), ex.ResultsFound, ex.Degraded, ex.Answer.Timestamp,
	); err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}

	return tx.Commit()
}

// GetTurns returns the last limit turns of a session in chronological order.
func (h *MessagesRepo) GetTurns(ctx context.Context, sessionID string, limit int) ([]core.Turn, error) {
	// Fetch the LAST 'limit' messages by ordering DESC
	query := `SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := h.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		if err := rows.Scan(&t.Role, &t.Text, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to restore chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (h *MessagesRepo) CountSessions(ctx context.Context) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT session_id) FROM messages`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
