package provider

import (
	"context"
	"fmt"

	"yasmingpt/internal/models"
)

// ChatMessage is one entry of the normalized history sent to a provider.
type ChatMessage struct {
	Role    models.Role `json:"role"`
	Content string      `json:"content"`
}

// Request carries the normalized history plus generation parameters.
type Request struct {
	Messages    []ChatMessage
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider is one remote completion endpoint. Complete returns the generated
// text or a classified *Error; it never returns empty text with a nil error.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// FailureKind classifies provider failures for diagnostics. The fallback
// chain treats every kind the same way: fall through to the next stage.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureTransport FailureKind = "transport"
	FailureHTTP      FailureKind = "http"
	FailureMalformed FailureKind = "malformed"
	FailureBlocked   FailureKind = "blocked"
	FailureEmpty     FailureKind = "empty"
)

// Error is a classified provider failure.
type Error struct {
	Provider string
	Kind     FailureKind
	Status   int
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }
