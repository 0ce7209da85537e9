package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"yasmingpt/internal/config"
	"yasmingpt/internal/models"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
	geminiTimeout        = 30 * time.Second
)

// Gemini is the backup completion client. Its dialect uses user/model role
// names and a contents/parts body, so the history is translated at this
// boundary.
type Gemini struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
}

func NewGemini(cfg config.ProviderConfig) *Gemini {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		hc:      &http.Client{Timeout: geminiTimeout},
	}
}

func (p *Gemini) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Complete translates the history into the endpoint's dialect and returns the
// generated text.
func (p *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	contents, err := p.translateHistory(req.Messages)
	if err != nil {
		return "", err
	}

	body := geminiRequest{Contents: contents}
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens
	body.GenerationConfig.Temperature = req.Temperature
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &Error{Provider: p.Name(), Kind: FailureMalformed, Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Provider: p.Name(), Kind: FailureTransport, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.hc.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Provider: p.Name(), Kind: FailureHTTP, Status: resp.StatusCode}
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &Error{Provider: p.Name(), Kind: FailureMalformed, Err: err}
	}
	if len(decoded.Candidates) == 0 {
		if reason := decoded.PromptFeedback.BlockReason; reason != "" {
			return "", &Error{Provider: p.Name(), Kind: FailureBlocked, Detail: reason}
		}
		return "", &Error{Provider: p.Name(), Kind: FailureMalformed, Detail: "response missing candidates"}
	}

	var sb strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", &Error{Provider: p.Name(), Kind: FailureEmpty}
	}
	return text, nil
}

// translateHistory converts user/assistant roles into the endpoint's
// user/model naming. The endpoint requires the history to start with a user
// entry and rejects consecutive model entries, so offending entries are
// skipped rather than failing the call.
func (p *Gemini) translateHistory(messages []ChatMessage) ([]geminiContent, error) {
	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		if role == "model" && len(contents) == 0 {
			continue
		}
		if role == "model" && contents[len(contents)-1].Role == "model" {
			continue
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	if len(contents) == 0 {
		return nil, &Error{Provider: p.Name(), Kind: FailureMalformed, Detail: "history has no user message"}
	}
	return contents, nil
}
