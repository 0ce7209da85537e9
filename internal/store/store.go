package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"yasmingpt/internal/models"
	"yasmingpt/internal/redis"
)

const (
	summariesCacheKey = "conversations:summaries"
	summariesCacheTTL = 30 * time.Second
)

// ErrTitleInvalid rejects empty or over-long titles.
var ErrTitleInvalid = errors.New("title must be non-empty and at most 100 characters")

// Store owns durable access to conversations, messages and votes. The redis
// cache is optional; a nil client disables it.
type Store struct {
	db    *sql.DB
	cache *redis.Client
}

// New builds a Store.
func New(db *sql.DB, cache *redis.Client) *Store {
	return &Store{db: db, cache: cache}
}

// Begin opens a transaction-bound view for one turn's staged writes.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, store: s}, nil
}

// GetConversation returns one conversation row or sql.ErrNoRows.
func (s *Store) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return getConversation(ctx, s.db, id)
}

// ListSummaries returns all conversations ordered by last activity, most
// recent first. Results are served from the redis cache when warm.
func (s *Store) ListSummaries(ctx context.Context) ([]models.ConversationSummary, error) {
	if cached, err := s.cache.Get(ctx, summariesCacheKey); err == nil {
		var summaries []models.ConversationSummary
		if err := json.Unmarshal([]byte(cached), &summaries); err == nil {
			return summaries, nil
		}
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		log.Printf("summaries cache read failed: %v", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, updated_at FROM conversations ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.ConversationSummary, 0)
	for rows.Next() {
		var c models.ConversationSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		summaries = append(summaries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(summaries); err == nil {
		if err := s.cache.Set(ctx, summariesCacheKey, encoded, summariesCacheTTL); err != nil {
			log.Printf("summaries cache write failed: %v", err)
		}
	}
	return summaries, nil
}

// GetConversationWithMessages returns one conversation and its messages in
// creation order, or sql.ErrNoRows when the id is unknown.
func (s *Store) GetConversationWithMessages(ctx context.Context, id string) (*models.Conversation, []*models.Message, error) {
	conversation, err := getConversation(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	messages, err := listMessages(ctx, s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return conversation, messages, nil
}

// UpdateTitle renames a conversation and advances updated_at. Returns
// sql.ErrNoRows for unknown ids and ErrTitleInvalid for bad titles.
func (s *Store) UpdateTitle(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > models.MaxTitleLen {
		return ErrTitleInvalid
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("title rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	s.invalidateSummaries(ctx)
	return nil
}

// DeleteConversation removes a conversation with its messages and votes.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("conversation rows affected: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return sql.ErrNoRows
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM votes WHERE message_id IN (SELECT id FROM messages WHERE conversation_id = ?)`, id,
	); err != nil {
		return fmt.Errorf("delete votes: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete conversation: %w", err)
	}
	s.invalidateSummaries(ctx)
	return nil
}

// AddVote appends a reaction for a message. Returns sql.ErrNoRows when the
// message id is unknown.
func (s *Store) AddVote(ctx context.Context, messageID int64, voteType models.VoteType) (*models.Vote, error) {
	var exists int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM messages WHERE id = ?`, messageID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup message: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO votes (message_id, vote_type, created_at) VALUES (?, ?, ?)`,
		messageID, voteType, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert vote: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("vote id: %w", err)
	}
	return &models.Vote{ID: id, MessageID: messageID, VoteType: voteType, CreatedAt: now}, nil
}

func (s *Store) invalidateSummaries(ctx context.Context) {
	if err := s.cache.Del(ctx, summariesCacheKey); err != nil {
		log.Printf("summaries cache invalidation failed: %v", err)
	}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func getConversation(ctx context.Context, q querier, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := q.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// listMessages returns messages in conversation order: created_at ascending,
// id as the tie-break for equal timestamps.
func listMessages(ctx context.Context, q querier, conversationID string) ([]*models.Message, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, COALESCE(origin, ''), created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m := new(models.Message)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Origin, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
