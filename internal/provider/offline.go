package provider

import "strings"

// Canned replies used when no remote provider could answer. Matching is a
// case-insensitive substring check on the most recent user utterance; the
// entries are checked in order and the first hit wins.
var offlineReplies = []struct {
	keyword string
	reply   string
}{
	{"السلام عليكم", "وعليكم السلام! أنا ياسمين. للأسف، لا يوجد اتصال بالإنترنت حاليًا."},
	{"كيف حالك", "أنا بخير شكراً لك. لكن لا يمكنني الوصول للنماذج الذكية الآن بسبب انقطاع الإنترنت."},
	{"مرحبا", "أهلاً بك! أنا ياسمين. أعتذر، خدمة الإنترنت غير متوفرة حاليًا."},
	{"شكرا", "على الرحب والسعة! أتمنى أن يعود الاتصال قريباً."},
	{"مع السلامة", "إلى اللقاء! آمل أن أتمكن من مساعدتك بشكل أفضل عند عودة الإنترنت."},
}

// DefaultOfflineReply is returned when no keyword matches.
const DefaultOfflineReply = "أعتذر، لا يمكنني معالجة طلبك الآن. يبدو أن هناك مشكلة في الاتصال بالإنترنت."

// OfflineReply maps a user utterance to a canned reply. It never fails and
// never returns an empty string.
func OfflineReply(userMessage string) string {
	lower := strings.ToLower(userMessage)
	for _, entry := range offlineReplies {
		if strings.Contains(lower, strings.ToLower(entry.keyword)) {
			return entry.reply
		}
	}
	return DefaultOfflineReply
}
