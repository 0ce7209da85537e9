package chat

import (
	"errors"

	"yasmingpt/internal/store"
	"yasmingpt/internal/worker"
)

const (
	// DefaultModel is sent to the primary provider when the request does
	// not name one.
	DefaultModel       = "mistralai/mistral-7b-instruct"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 512
)

// Validation sentinels, surfaced as 4xx by the HTTP layer.
var (
	ErrEmptyMessage         = errors.New("user message is empty")
	ErrHistoryNotUserEnding = errors.New("history must end with a user message")
	ErrConversationRequired = errors.New("conversation id is required")
	ErrNoMessages           = errors.New("conversation has no messages")
	ErrLastNotAssistant     = errors.New("last message is not an assistant reply")
)

// ErrRegenerationFailed reports that no provider produced a replacement
// reply, so the original assistant message was kept.
var ErrRegenerationFailed = errors.New("no provider produced a replacement reply")

// Service runs chat turns and regenerations against the conversation store.
type Service struct {
	store        *store.Store
	orchestrator *Orchestrator
	turns        *worker.Manager
}

// NewService wires the coordinators. turns may be nil to disable
// per-conversation serialization (tests).
func NewService(st *store.Store, orchestrator *Orchestrator, turns *worker.Manager) *Service {
	return &Service{store: st, orchestrator: orchestrator, turns: turns}
}

func (s *Service) acquireTurn(conversationID string) (func(), error) {
	if s.turns == nil {
		return func() {}, nil
	}
	return s.turns.Acquire(conversationID)
}

func (s *Service) normalize(model string, temperature *float64, maxTokens int) (string, float64, int) {
	if model == "" {
		model = DefaultModel
	}
	temp := DefaultTemperature
	if temperature != nil {
		temp = *temperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return model, temp, maxTokens
}
