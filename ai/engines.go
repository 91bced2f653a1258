package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Engine is the pluggable (system_prompt, user_prompt) -> text primitive
// plus JSON extraction, grounded on original_source/sim/ai_engines.py's
// BaseEngine/StubEngine/OllamaAgentsEngine/OpenAIAgentsEngine (§4.9).
// net/http is used directly rather than a third-party HTTP client: no
// example repo in the pack imports one (see DESIGN.md).
type Engine interface {
	Name() string
	ProposeFleetIntent(ctx context.Context, summary map[string]any) (map[string]any, error)
	ProposeShipTool(ctx context.Context, summary map[string]any) (map[string]any, error)
}

// StubEngine is the deterministic, offline default: a conservative patrol
// plan for the fleet, and "unknown tool" for ships (so the orchestrator's
// intent-derived-navigation fallback always engages, §8 scenario S6).
type StubEngine struct{}

func (StubEngine) Name() string { return "stub" }

func (StubEngine) ProposeFleetIntent(ctx context.Context, summary map[string]any) (map[string]any, error) {
	return map[string]any{
		"objectives": map[string]any{},
		"emcon":      map[string]any{"active_ping_allowed": false, "radio_discipline": "restricted"},
		"summary":    "Maintain patrol stations; hold EMCON restricted.",
		"notes":      []any{map[string]any{"ship_id": nil, "text": "No contacts reported; continuing conservative patrol."}},
	}, nil
}

func (StubEngine) ProposeShipTool(ctx context.Context, summary map[string]any) (map[string]any, error) {
	return map[string]any{"tool": "unknown", "arguments": map[string]any{}, "summary": "stub: no action"}, nil
}

// chatClient is the shared HTTP POST-a-chat-payload, read-back-content
// helper both HTTP-backed engines use.
type chatClient struct {
	httpClient *http.Client
}

func newChatClient(timeout time.Duration) *chatClient {
	return &chatClient{httpClient: &http.Client{Timeout: timeout}}
}

func (c *chatClient) postJSON(ctx context.Context, url string, body any, headers map[string]string) ([]byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// OllamaEngine talks to a local Ollama /api/chat endpoint, grounded on
// OllamaAgentsEngine._chat.
type OllamaEngine struct {
	Model  string
	Host   string
	client *chatClient
}

func NewOllamaEngine(model, host string, timeout time.Duration) *OllamaEngine {
	return &OllamaEngine{Model: model, Host: host, client: newChatClient(timeout)}
}

func (e *OllamaEngine) Name() string { return "ollama:" + e.Model }

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string               `json:"model"`
	Messages []ollamaChatMessage  `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

func (e *OllamaEngine) chat(ctx context.Context, system, user string) (string, error) {
	req := ollamaChatRequest{
		Model: e.Model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	data, err := e.client.postJSON(ctx, e.Host+"/api/chat", req, nil)
	if err != nil {
		return "", err
	}
	var resp ollamaChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	if resp.Message.Content == "" {
		return "", fmt.Errorf("empty response content from ollama")
	}
	return resp.Message.Content, nil
}

func (e *OllamaEngine) ProposeFleetIntent(ctx context.Context, summary map[string]any) (map[string]any, error) {
	content, err := e.chat(ctx, fleetSystemPrompt, fleetUserPrompt(summary))
	if err != nil {
		return nil, err
	}
	obj, ok := ExtractJSON(content)
	if !ok {
		return nil, fmt.Errorf("failed to extract FleetIntent JSON from ollama output")
	}
	return obj, nil
}

func (e *OllamaEngine) ProposeShipTool(ctx context.Context, summary map[string]any) (map[string]any, error) {
	content, err := e.chat(ctx, shipSystemPrompt, shipUserPrompt(summary))
	if err != nil {
		return nil, err
	}
	obj, ok := ExtractJSON(content)
	if !ok {
		return nil, fmt.Errorf("failed to extract tool call JSON from ollama output")
	}
	return obj, nil
}

// OpenAIEngine talks to an OpenAI-compatible chat completions endpoint,
// grounded on OpenAIAgentsEngine._chat.
type OpenAIEngine struct {
	Model   string
	BaseURL string
	APIKey  string
	client  *chatClient
}

func NewOpenAIEngine(model, baseURL, apiKey string, timeout time.Duration) *OpenAIEngine {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIEngine{Model: model, BaseURL: baseURL, APIKey: apiKey, client: newChatClient(timeout)}
}

func (e *OpenAIEngine) Name() string { return "openai:" + e.Model }

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []ollamaChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (e *OpenAIEngine) chat(ctx context.Context, system, user string) (string, error) {
	req := openAIChatRequest{
		Model: e.Model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.0,
	}
	headers := map[string]string{"Authorization": "Bearer " + e.APIKey}
	data, err := e.client.postJSON(ctx, e.BaseURL+"/chat/completions", req, headers)
	if err != nil {
		return "", err
	}
	var resp openAIChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty content from openai chat completion")
	}
	return resp.Choices[0].Message.Content, nil
}

func (e *OpenAIEngine) ProposeFleetIntent(ctx context.Context, summary map[string]any) (map[string]any, error) {
	content, err := e.chat(ctx, fleetSystemPrompt, fleetUserPrompt(summary))
	if err != nil {
		return nil, err
	}
	obj, ok := ExtractJSON(content)
	if !ok {
		return nil, fmt.Errorf("failed to parse FleetIntent JSON from openai response")
	}
	return obj, nil
}

func (e *OpenAIEngine) ProposeShipTool(ctx context.Context, summary map[string]any) (map[string]any, error) {
	content, err := e.chat(ctx, shipSystemPrompt, shipUserPrompt(summary))
	if err != nil {
		return nil, err
	}
	obj, ok := ExtractJSON(content)
	if !ok {
		return nil, fmt.Errorf("failed to parse tool call JSON from openai response")
	}
	return obj, nil
}
