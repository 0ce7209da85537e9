package provider

import "testing"

func TestOfflineReplyKeywordMatch(t *testing.T) {
	got := OfflineReply("أهلا، السلام عليكم ورحمة الله")
	if got != offlineReplies[0].reply {
		t.Fatalf("expected greeting reply, got %q", got)
	}
}

func TestOfflineReplyFirstMatchWins(t *testing.T) {
	// contains both كيف حالك and مرحبا; the table is checked in order
	got := OfflineReply("مرحبا كيف حالك اليوم")
	if got != offlineReplies[1].reply {
		t.Fatalf("expected the earlier table entry, got %q", got)
	}
}

func TestOfflineReplyDefault(t *testing.T) {
	got := OfflineReply("what is the weather like")
	if got != DefaultOfflineReply {
		t.Fatalf("expected default reply, got %q", got)
	}
}

func TestOfflineReplyNeverEmpty(t *testing.T) {
	for _, msg := range []string{"", "   ", "مرحبا", "random text"} {
		if OfflineReply(msg) == "" {
			t.Fatalf("empty reply for %q", msg)
		}
	}
}
