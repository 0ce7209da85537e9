package translate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"yasmingpt/internal/models"
	"yasmingpt/internal/provider"
)

var (
	ErrEmptyText           = errors.New("text is empty")
	ErrUnsupportedLanguage = errors.New("target language is not supported")
	ErrTranslationFailed   = errors.New("all translation attempts failed")
)

// Language is one supported translation target.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// supportedLanguages is the fixed table of translation targets.
var supportedLanguages = []Language{
	{"ar", "العربية"},
	{"en", "الإنجليزية"},
	{"fr", "الفرنسية"},
	{"es", "الإسبانية"},
	{"de", "الألمانية"},
	{"it", "الإيطالية"},
	{"ru", "الروسية"},
	{"zh", "الصينية"},
	{"ja", "اليابانية"},
	{"ko", "الكورية"},
	{"tr", "التركية"},
	{"fa", "الفارسية"},
	{"ur", "الأردية"},
	{"hi", "الهندية"},
	{"pt", "البرتغالية"},
	{"nl", "الهولندية"},
	{"sw", "السواحيلية"},
	{"he", "العبرية"},
}

// commonPhrases is the last-resort en→ar table used when no provider could
// translate.
var commonPhrases = map[string]string{
	"Hello":        "مرحبا",
	"Thank you":    "شكرا لك",
	"Yes":          "نعم",
	"No":           "لا",
	"Good morning": "صباح الخير",
	"Good evening": "مساء الخير",
}

// Result carries a completed translation.
type Result struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	OriginalText   string `json:"original_text"`
	Provider       string `json:"provider"`
}

// Service translates text through the same ordered provider chain the chat
// pipeline uses, with its own terminal fallbacks.
type Service struct {
	providers []provider.Provider
}

// New builds the service; nil providers are skipped.
func New(providers ...provider.Provider) *Service {
	chain := make([]provider.Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return &Service{providers: chain}
}

// Languages lists the supported translation targets.
func (s *Service) Languages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

func languageName(code string) (string, bool) {
	for _, lang := range supportedLanguages {
		if lang.Code == code {
			return lang.Name, true
		}
	}
	return "", false
}

// Translate converts text into targetLang. sourceLang may be "auto".
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}
	if targetLang == "" {
		targetLang = "ar"
	}
	targetName, ok := languageName(targetLang)
	if !ok {
		return nil, ErrUnsupportedLanguage
	}
	sourceName := "اللغة المناسبة"
	if name, ok := languageName(sourceLang); ok {
		sourceName = name
	}

	prompt := fmt.Sprintf("ترجم النص التالي من %s إلى %s.\n"+
		"أرجو تقديم الترجمة فقط بدون أي تفسيرات أو مقدمات أو توضيحات.\n\n"+
		"النص: %s\n\nالترجمة:", sourceName, targetName, text)

	req := provider.Request{
		Messages: []provider.ChatMessage{
			{Role: models.RoleSystem, Content: "أنت مترجم محترف ودقيق."},
			{Role: models.RoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	}

	result := &Result{
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		OriginalText:   text,
	}
	for _, p := range s.providers {
		translated, err := p.Complete(ctx, req)
		if err != nil {
			log.Printf("translation via %s failed: %v", p.Name(), err)
			continue
		}
		result.TranslatedText = strings.TrimSpace(translated)
		result.Provider = p.Name()
		return result, nil
	}

	if sourceLang == targetLang {
		result.TranslatedText = text
		result.Provider = "direct"
		return result, nil
	}
	if targetLang == "ar" {
		if phrase, ok := commonPhrases[text]; ok {
			result.TranslatedText = phrase
			result.Provider = "fallback"
			return result, nil
		}
	}
	return nil, ErrTranslationFailed
}

// DetectLanguage returns the language code of text, or "unknown".
func (s *Service) DetectLanguage(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return "unknown"
	}

	prompt := "اكتشف لغة النص التالي وأعط الرمز فقط (مثل 'ar' للعربية، 'en' للإنجليزية، إلخ.) دون أي تفسير:\n\n" + text
	req := provider.Request{
		Messages: []provider.ChatMessage{
			{Role: models.RoleSystem, Content: "أنت خبير في اكتشاف اللغات. أجب برمز اللغة فقط مثل 'ar' أو 'en'."},
			{Role: models.RoleUser, Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   10,
	}

	for _, p := range s.providers {
		detected, err := p.Complete(ctx, req)
		if err != nil {
			log.Printf("language detection via %s failed: %v", p.Name(), err)
			continue
		}
		if code := parseLanguageCode(detected); code != "unknown" {
			return code
		}
	}
	return heuristicLanguage(text)
}

func parseLanguageCode(answer string) string {
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, lang := range supportedLanguages {
		if strings.Contains(answer, lang.Code) {
			return lang.Code
		}
	}
	if len(answer) >= 2 && len(answer) <= 3 {
		return answer
	}
	return "unknown"
}

// heuristicLanguage is a character-class guess used when no provider
// answered.
func heuristicLanguage(text string) string {
	var arabic, english int
	runes := []rune(text)
	for _, r := range runes {
		switch {
		case r >= 0x0600 && r <= 0x06FF:
			arabic++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			english++
		}
	}
	total := len(runes)
	if total == 0 {
		return "unknown"
	}
	switch {
	case arabic*10 > total*3:
		return "ar"
	case english*10 > total*3:
		return "en"
	}
	return "unknown"
}
