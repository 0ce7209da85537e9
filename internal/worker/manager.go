package worker

import (
	"errors"
	"sync"
)

const defaultMaxInflight = 64

// ErrBusy signals that the global in-flight limit is saturated.
var ErrBusy = errors.New("server is busy")

// ErrConversationBusy signals that another turn is already running for the
// same conversation.
var ErrConversationBusy = errors.New("conversation has a turn in flight")

// Manager serializes turns per conversation and bounds how many provider
// calls may be in flight at once. Turns on different conversations proceed
// independently; a second chat or regenerate on the same conversation is
// rejected instead of queued.
type Manager struct {
	mu     sync.Mutex
	active map[string]struct{}
	slots  chan struct{}
}

// NewManager builds a Manager allowing up to maxInflight concurrent turns.
func NewManager(maxInflight int) *Manager {
	if maxInflight <= 0 {
		maxInflight = defaultMaxInflight
	}
	return &Manager{
		active: make(map[string]struct{}),
		slots:  make(chan struct{}, maxInflight),
	}
}

// Acquire claims a turn slot. conversationID may be empty for turns that
// create a new conversation; those only count against the global limit.
// The returned release func is idempotent.
func (m *Manager) Acquire(conversationID string) (func(), error) {
	select {
	case m.slots <- struct{}{}:
	default:
		return nil, ErrBusy
	}

	if conversationID != "" {
		m.mu.Lock()
		if _, busy := m.active[conversationID]; busy {
			m.mu.Unlock()
			<-m.slots
			return nil, ErrConversationBusy
		}
		m.active[conversationID] = struct{}{}
		m.mu.Unlock()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if conversationID != "" {
				m.mu.Lock()
				delete(m.active, conversationID)
				m.mu.Unlock()
			}
			<-m.slots
		})
	}
	return release, nil
}

// Inflight reports how many turns are currently running.
func (m *Manager) Inflight() int {
	return len(m.slots)
}
