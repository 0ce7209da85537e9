package worker

import (
	"errors"
	"testing"
)

func TestAcquireSerializesPerConversation(t *testing.T) {
	m := NewManager(4)

	release, err := m.Acquire("conv-1")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := m.Acquire("conv-1"); !errors.Is(err, ErrConversationBusy) {
		t.Fatalf("expected ErrConversationBusy, got %v", err)
	}

	// a different conversation proceeds independently
	other, err := m.Acquire("conv-2")
	if err != nil {
		t.Fatalf("other conversation: %v", err)
	}
	other()

	release()
	release2, err := m.Acquire("conv-1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestAcquireGlobalLimit(t *testing.T) {
	m := NewManager(1)

	release, err := m.Acquire("a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := m.Acquire("b"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	release()
	release2, err := m.Acquire("b")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestReleaseIdempotent(t *testing.T) {
	m := NewManager(2)

	release, err := m.Acquire("conv")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	release()
	release()
	release()

	if got := m.Inflight(); got != 0 {
		t.Fatalf("expected 0 inflight after repeated release, got %d", got)
	}
	again, err := m.Acquire("conv")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	again()
}

func TestEmptyConversationIDOnlyCountsGlobally(t *testing.T) {
	m := NewManager(3)

	r1, err := m.Acquire("")
	if err != nil {
		t.Fatalf("first anonymous acquire: %v", err)
	}
	r2, err := m.Acquire("")
	if err != nil {
		t.Fatalf("second anonymous acquire: %v", err)
	}
	if got := m.Inflight(); got != 2 {
		t.Fatalf("expected 2 inflight, got %d", got)
	}
	r1()
	r2()
}
