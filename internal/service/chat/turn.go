package chat

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"yasmingpt/internal/models"
	"yasmingpt/internal/provider"
)

// duplicateWindow bounds the advisory duplicate check: a user message
// identical to the immediately preceding stored one inside this window is
// assumed to be a client retry and is not staged again.
const duplicateWindow = 10 * time.Second

// ChatRequest is one turn. History carries the full client-side transcript,
// ending with the user message to answer.
type ChatRequest struct {
	History        []provider.ChatMessage
	Model          string
	ConversationID string
	Temperature    *float64
	MaxTokens      int
}

// ChatResult is the committed (or, on commit failure, best-effort) answer.
type ChatResult struct {
	ConversationID string
	Content        string
	UsedBackup     bool
	Warning        string
}

// Chat validates the request, resolves or creates the conversation, stages
// the user message, runs the fallback chain and commits the whole turn as
// one transaction.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if len(req.History) == 0 {
		return nil, ErrEmptyMessage
	}
	last := req.History[len(req.History)-1]
	if last.Role != models.RoleUser {
		return nil, ErrHistoryNotUserEnding
	}
	userMessage := last.Content
	if strings.TrimSpace(userMessage) == "" {
		return nil, ErrEmptyMessage
	}
	model, temperature, maxTokens := s.normalize(req.Model, req.Temperature, req.MaxTokens)

	release, err := s.acquireTurn(req.ConversationID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	conversation, created, err := tx.ResolveOrCreate(ctx, req.ConversationID, models.DeriveTitle(userMessage))
	if err != nil {
		return nil, err
	}

	stageUser := true
	if !created {
		prev, err := tx.LastMessage(ctx, conversation.ID)
		switch {
		case err == nil:
			if prev.Role == models.RoleUser && prev.Content == userMessage &&
				time.Since(prev.CreatedAt) < duplicateWindow {
				log.Printf("skipping duplicate user message for conversation %s", conversation.ID)
				stageUser = false
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return nil, err
		}
	}
	if stageUser {
		if _, err := tx.AppendMessage(ctx, conversation.ID, models.RoleUser, userMessage, ""); err != nil {
			return nil, err
		}
	}

	outcome := s.orchestrator.Complete(ctx, provider.Request{
		Messages:    req.History,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err := ctx.Err(); err != nil {
		// request cancelled mid-flight, the staged writes roll back
		return nil, err
	}

	result := &ChatResult{
		ConversationID: conversation.ID,
		Content:        outcome.Text,
		UsedBackup:     outcome.UsedBackup,
	}
	if _, err := tx.AppendMessage(ctx, conversation.ID, models.RoleAssistant, outcome.Text, outcome.Origin); err != nil {
		// the answer exists even though it could not be staged; hand it
		// back instead of discarding it
		log.Printf("stage assistant message for conversation %s: %v", conversation.ID, err)
		result.Warning = "reply could not be saved"
		return result, nil
	}
	if err := tx.Commit(ctx); err != nil {
		log.Printf("commit turn for conversation %s: %v", conversation.ID, err)
		result.Warning = "reply could not be saved"
		return result, nil
	}
	return result, nil
}
