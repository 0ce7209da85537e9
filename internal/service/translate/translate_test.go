package translate

import (
	"context"
	"errors"
	"testing"

	"yasmingpt/internal/models"
	"yasmingpt/internal/provider"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
	last  provider.Request
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, req provider.Request) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func failing(name string) *fakeProvider {
	return &fakeProvider{name: name, err: &provider.Error{Provider: name, Kind: provider.FailureTransport}}
}

func TestTranslateViaProvider(t *testing.T) {
	primary := &fakeProvider{name: "primary", text: "  مرحبا  "}
	svc := New(primary)

	result, err := svc.Translate(context.Background(), "Hello", "en", "ar")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.TranslatedText != "مرحبا" {
		t.Fatalf("expected trimmed translation, got %q", result.TranslatedText)
	}
	if result.Provider != "primary" || result.SourceLanguage != "en" || result.TargetLanguage != "ar" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.OriginalText != "Hello" {
		t.Fatalf("original text missing: %+v", result)
	}
	if len(primary.last.Messages) != 2 || primary.last.Messages[0].Role != models.RoleSystem {
		t.Fatalf("expected system+user prompt, got %+v", primary.last.Messages)
	}
}

func TestTranslateFallsBackToSecondProvider(t *testing.T) {
	primary := failing("primary")
	backup := &fakeProvider{name: "backup", text: "Bonjour"}
	svc := New(primary, backup)

	result, err := svc.Translate(context.Background(), "Hello", "en", "fr")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.Provider != "backup" || result.TranslatedText != "Bonjour" {
		t.Fatalf("unexpected result %+v", result)
	}
	if primary.calls != 1 {
		t.Fatalf("primary should have been tried first")
	}
}

func TestTranslateValidation(t *testing.T) {
	svc := New()
	ctx := context.Background()

	if _, err := svc.Translate(ctx, "   ", "en", "ar"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if _, err := svc.Translate(ctx, "Hello", "en", "xx"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestTranslateIdentityFallback(t *testing.T) {
	svc := New(failing("primary"))

	result, err := svc.Translate(context.Background(), "unchanged", "en", "en")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.TranslatedText != "unchanged" || result.Provider != "direct" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTranslateCommonPhraseFallback(t *testing.T) {
	svc := New(failing("primary"), failing("backup"))

	result, err := svc.Translate(context.Background(), "Hello", "en", "ar")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.TranslatedText != "مرحبا" || result.Provider != "fallback" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestTranslateAllAttemptsFail(t *testing.T) {
	svc := New(failing("primary"))

	_, err := svc.Translate(context.Background(), "something unusual", "en", "ar")
	if !errors.Is(err, ErrTranslationFailed) {
		t.Fatalf("expected ErrTranslationFailed, got %v", err)
	}
}

func TestDetectLanguageFromProvider(t *testing.T) {
	svc := New(&fakeProvider{name: "primary", text: "The language is 'ar'."})
	if got := svc.DetectLanguage(context.Background(), "مرحبا"); got != "ar" {
		t.Fatalf("expected ar, got %q", got)
	}
}

func TestDetectLanguageHeuristic(t *testing.T) {
	svc := New(failing("primary"))
	ctx := context.Background()

	if got := svc.DetectLanguage(ctx, "مرحبا كيف حالك"); got != "ar" {
		t.Fatalf("expected ar, got %q", got)
	}
	if got := svc.DetectLanguage(ctx, "hello there friend"); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}
	if got := svc.DetectLanguage(ctx, "123456789"); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := svc.DetectLanguage(ctx, "   "); got != "unknown" {
		t.Fatalf("expected unknown for blank text, got %q", got)
	}
}

func TestLanguagesIsACopy(t *testing.T) {
	svc := New()
	langs := svc.Languages()
	if len(langs) == 0 {
		t.Fatalf("expected supported languages")
	}
	langs[0].Code = "zz"
	if svc.Languages()[0].Code == "zz" {
		t.Fatalf("Languages must return a defensive copy")
	}
}

func TestParseLanguageCode(t *testing.T) {
	cases := map[string]string{
		"ar":                      "ar",
		" EN ":                    "en",
		"the code is 'fr'":        "fr",
		"0123456789": "unknown",
	}
	for in, want := range cases {
		if got := parseLanguageCode(in); got != want {
			t.Fatalf("parseLanguageCode(%q) = %q, want %q", in, got, want)
		}
	}
}
