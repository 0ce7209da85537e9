package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"yasmingpt/internal/config"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterTimeout        = 45 * time.Second
)

// OpenRouter is the primary completion client. It speaks the
// chat-completions dialect: bearer auth, choices[0].message.content.
type OpenRouter struct {
	baseURL  string
	apiKey   string
	model    string
	appURL   string
	appTitle string
	hc       *http.Client
}

// NewOpenRouter builds the primary client. appURL and appTitle are sent as
// the HTTP-Referer and X-Title headers the endpoint expects.
func NewOpenRouter(cfg config.ProviderConfig, appURL, appTitle string) *OpenRouter {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouter{
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		appURL:   appURL,
		appTitle: appTitle,
		hc:       &http.Client{Timeout: openRouterTimeout},
	}
}

func (p *OpenRouter) Name() string { return "openrouter" }

type openRouterRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage json.RawMessage `json:"usage"`
}

// Complete sends the full history and returns the generated text.
func (p *OpenRouter) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	payload, err := json.Marshal(openRouterRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", &Error{Provider: p.Name(), Kind: FailureMalformed, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Provider: p.Name(), Kind: FailureTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("HTTP-Referer", p.appURL)
	httpReq.Header.Set("X-Title", p.appTitle)

	resp, err := p.hc.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Provider: p.Name(), Kind: FailureHTTP, Status: resp.StatusCode}
	}

	var body openRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &Error{Provider: p.Name(), Kind: FailureMalformed, Err: err}
	}
	if len(body.Choices) == 0 {
		return "", &Error{Provider: p.Name(), Kind: FailureMalformed, Detail: "response missing choices"}
	}
	if len(body.Usage) > 0 {
		log.Printf("%s usage: %s", p.Name(), body.Usage)
	}

	text := body.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", &Error{Provider: p.Name(), Kind: FailureEmpty}
	}
	return text, nil
}

func classifyTransportError(name string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &Error{Provider: name, Kind: FailureTimeout, Err: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Provider: name, Kind: FailureTimeout, Err: err}
	}
	return &Error{Provider: name, Kind: FailureTransport, Err: err}
}

