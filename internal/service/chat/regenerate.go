package chat

import (
	"context"

	"yasmingpt/internal/models"
	"yasmingpt/internal/provider"
)

// RegenerateRequest asks for the last assistant reply to be replaced.
type RegenerateRequest struct {
	ConversationID string
	Model          string
	Temperature    *float64
	MaxTokens      int
}

// RegenerateResult is the replacement reply.
type RegenerateResult struct {
	Content    string
	UsedBackup bool
}

// Regenerate stage-deletes the most recent assistant message, replays the
// fallback chain against the truncated history and swaps in the new reply.
// The delete and the insert commit together; any failure rolls back so the
// original reply is preserved.
func (s *Service) Regenerate(ctx context.Context, req RegenerateRequest) (*RegenerateResult, error) {
	if req.ConversationID == "" {
		return nil, ErrConversationRequired
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

	conversation, err := tx.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	messages, err := tx.Messages(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}
	last := messages[len(messages)-1]
	if last.Role != models.RoleAssistant {
		return nil, ErrLastNotAssistant
	}

	if err := tx.DeleteMessage(ctx, last.ID); err != nil {
		return nil, err
	}

	remaining := messages[:len(messages)-1]
	history := make([]provider.ChatMessage, 0, len(remaining))
	for _, msg := range remaining {
		history = append(history, provider.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	if len(history) == 0 {
		// the deleted reply was the only message; there is no user
		// context to replay and a provider must never see zero history
		return nil, ErrNoMessages
	}

	outcome := s.orchestrator.Complete(ctx, provider.Request{
		Messages:    history,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if outcome.Origin == models.OriginOffline {
		// swapping a real answer for a canned one is a downgrade;
		// roll back so the original reply stays in place
		return nil, ErrRegenerationFailed
	}

	if _, err := tx.AppendMessage(ctx, conversation.ID, models.RoleAssistant, outcome.Text, outcome.Origin); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &RegenerateResult{Content: outcome.Text, UsedBackup: outcome.UsedBackup}, nil
}
