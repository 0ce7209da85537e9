package chat

import (
	"context"
	"log"
	"strings"

	"yasmingpt/internal/models"
	"yasmingpt/internal/provider"
)

// Outcome is the single result of the fallback chain.
type Outcome struct {
	Text       string
	Origin     models.Origin
	UsedBackup bool
}

// stage pairs a provider with the origin its replies carry. The pairing is
// fixed at construction so a chain with no primary still labels secondary
// replies correctly.
type stage struct {
	provider provider.Provider
	origin   models.Origin
}

// Orchestrator runs the ordered fallback chain: the configured providers in
// priority order, then the offline responder. Providers are never called
// concurrently; each turn is billed at most once per provider.
type Orchestrator struct {
	stages []stage
}

// NewOrchestrator builds the chain. The first provider is the primary, every
// later one is a backup. Nil providers are skipped, so a deployment with no
// backup (or none at all) degrades to the offline stage.
func NewOrchestrator(providers ...provider.Provider) *Orchestrator {
	stages := make([]stage, 0, len(providers))
	for i, p := range providers {
		if p == nil {
			continue
		}
		origin := models.OriginPrimary
		if i > 0 {
			origin = models.OriginBackup
		}
		stages = append(stages, stage{provider: p, origin: origin})
	}
	return &Orchestrator{stages: stages}
}

// Complete tries each provider in order and short-circuits on the first
// success. Provider failures are logged and swallowed; the terminal offline
// stage guarantees a non-empty reply, so Complete itself cannot fail.
func (o *Orchestrator) Complete(ctx context.Context, req provider.Request) Outcome {
	for _, st := range o.stages {
		if ctx.Err() != nil {
			break
		}
		text, err := st.provider.Complete(ctx, req)
		if err != nil {
			log.Printf("provider %s failed: %v", st.provider.Name(), err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			// an empty reply is a soft failure, never a user-visible answer
			log.Printf("provider %s returned empty text, falling through", st.provider.Name())
			continue
		}
		return Outcome{
			Text:       text,
			Origin:     st.origin,
			UsedBackup: st.origin == models.OriginBackup,
		}
	}

	return Outcome{
		Text:   provider.OfflineReply(lastUserContent(req.Messages)),
		Origin: models.OriginOffline,
	}
}

func lastUserContent(messages []provider.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
