package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"yasmingpt/internal/models"
)

// Tx is a transaction-bound view of the store. All writes are staged until
// Commit; Rollback discards them. One turn's mutations live in one Tx.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

// ResolveOrCreate loads the conversation for id when it exists. Otherwise it
// stages a new conversation with a fresh uuid and the supplied title. The
// bool reports whether a new row was staged. A valid existing id never
// produces a second row.
func (t *Tx) ResolveOrCreate(ctx context.Context, id, title string) (*models.Conversation, bool, error) {
	if id != "" {
		conversation, err := getConversation(ctx, t.tx, id)
		if err == nil {
			return conversation, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, err
		}
	}

	if title == "" {
		title = models.DefaultTitle
	}
	now := time.Now().UTC()
	conversation := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		conversation.ID, conversation.Title, conversation.CreatedAt, conversation.UpdatedAt,
	); err != nil {
		return nil, false, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, true, nil
}

// GetConversation loads one conversation inside the transaction.
func (t *Tx) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return getConversation(ctx, t.tx, id)
}

// Messages returns the conversation's messages in creation order.
func (t *Tx) Messages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	return listMessages(ctx, t.tx, conversationID)
}

// LastMessage returns the most recently appended message or sql.ErrNoRows.
func (t *Tx) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	m := new(models.Message)
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, conversation_id, role, content, COALESCE(origin, ''), created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		conversationID,
	).Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Origin, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("last message: %w", err)
	}
	return m, nil
}

// AppendMessage stages a message insert and advances the conversation's
// updated_at timestamp.
func (t *Tx) AppendMessage(ctx context.Context, conversationID string, role models.Role, content string, origin models.Origin) (*models.Message, error) {
	if content == "" {
		return nil, errors.New("message content cannot be empty")
	}
	now := time.Now().UTC()
	var originVal any
	if origin != "" {
		originVal = string(origin)
	}
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, role, content, origin, created_at) VALUES (?, ?, ?, ?, ?)`,
		conversationID, role, content, originVal, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, now, conversationID,
	); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}
	return &models.Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Origin:         origin,
		CreatedAt:      now,
	}, nil
}

// DeleteMessage stages the removal of one message and its votes.
func (t *Tx) DeleteMessage(ctx context.Context, messageID int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM votes WHERE message_id = ?`, messageID); err != nil {
		return fmt.Errorf("delete message votes: %w", err)
	}
	res, err := t.tx.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("message rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Commit makes the staged writes durable and drops the summary cache.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit turn: %w", err)
	}
	t.store.invalidateSummaries(ctx)
	return nil
}

// Rollback discards all staged writes. Safe to call after Commit.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
