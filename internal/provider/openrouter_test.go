package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"yasmingpt/internal/config"

	"yasmingpt/internal/models"
)

func newOpenRouterAgainst(url string) *OpenRouter {
	return NewOpenRouter(config.ProviderConfig{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "default-model",
	}, "http://app.example", "Test App")
}

func asProviderError(t *testing.T, err error) *Error {
	t.Helper()
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *provider.Error, got %T: %v", err, err)
	}
	return perr
}

func TestOpenRouterComplete(t *testing.T) {
	var gotPath, gotAuth, gotReferer, gotTitle string
	var gotBody openRouterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "hello!"}},
			},
			"usage": map[string]int{"total_tokens": 7},
		})
	}))
	defer srv.Close()

	p := newOpenRouterAgainst(srv.URL)
	text, err := p.Complete(context.Background(), Request{
		Messages:    []ChatMessage{{Role: models.RoleUser, Content: "hi"}},
		Model:       "custom-model",
		Temperature: 0.5,
		MaxTokens:   128,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "hello!" {
		t.Fatalf("unexpected text %q", text)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected authorization %q", gotAuth)
	}
	if gotReferer != "http://app.example" || gotTitle != "Test App" {
		t.Fatalf("missing attribution headers: %q %q", gotReferer, gotTitle)
	}
	if gotBody.Model != "custom-model" {
		t.Fatalf("expected requested model to win, got %q", gotBody.Model)
	}
	if gotBody.MaxTokens != 128 || gotBody.Temperature != 0.5 {
		t.Fatalf("generation params not forwarded: %+v", gotBody)
	}
}

func TestOpenRouterDefaultModel(t *testing.T) {
	var gotBody openRouterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	p := newOpenRouterAgainst(srv.URL)
	if _, err := p.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if gotBody.Model != "default-model" {
		t.Fatalf("expected configured model fallback, got %q", gotBody.Model)
	}
}

func TestOpenRouterHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newOpenRouterAgainst(srv.URL)
	_, err := p.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	perr := asProviderError(t, err)
	if perr.Kind != FailureHTTP || perr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected classification: %+v", perr)
	}
}

func TestOpenRouterMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	p := newOpenRouterAgainst(srv.URL)
	_, err := p.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	if perr := asProviderError(t, err); perr.Kind != FailureMalformed {
		t.Fatalf("unexpected classification: %+v", perr)
	}
}

func TestOpenRouterMissingChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	p := newOpenRouterAgainst(srv.URL)
	_, err := p.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	if perr := asProviderError(t, err); perr.Kind != FailureMalformed {
		t.Fatalf("unexpected classification: %+v", perr)
	}
}

func TestOpenRouterEmptyContentIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"content": "   "}}]}`))
	}))
	defer srv.Close()

	p := newOpenRouterAgainst(srv.URL)
	_, err := p.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	if perr := asProviderError(t, err); perr.Kind != FailureEmpty {
		t.Fatalf("unexpected classification: %+v", perr)
	}
}

func TestOpenRouterTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	p := newOpenRouterAgainst(srv.URL)
	_, err := p.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	if perr := asProviderError(t, err); perr.Kind != FailureTransport {
		t.Fatalf("unexpected classification: %+v", perr)
	}
}

func TestClassifyTransportErrorTimeout(t *testing.T) {
	perr := classifyTransportError("openrouter", context.DeadlineExceeded)
	if perr.Kind != FailureTimeout {
		t.Fatalf("expected timeout classification, got %s", perr.Kind)
	}
}
