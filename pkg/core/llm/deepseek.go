package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const deepseekURL = "https://api.deepseek.com/chat/completions"

// DeepSeekProvider is a budget text completion backend, useful for the
// high-volume agents (QA batch prompts, scriptwriter drafts).
type DeepSeekProvider struct {
	apiKey string
	model  string
	http   *http.Client
}

var _ TextProvider = (*DeepSeekProvider)(nil)

func NewDeepSeekProvider(apiKey, model string) (*DeepSeekProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepseek api key not set")
	}
	if model == "" {
		model = "deepseek-chat"
	}
	return &DeepSeekProvider{apiKey: apiKey, model: model, http: &http.Client{}}, nil
}

type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepseekRequest struct {
	Model          string            `json:"model"`
	Messages       []deepseekMessage `json:"messages"`
	MaxTokens      int               `json:"max_tokens"`
	Temperature    float64           `json:"temperature"`
	Stream         bool              `json:"stream"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type deepseekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) Query(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	body := deepseekRequest{
		Model:       optString(options, "model", p.model),
		MaxTokens:   4096,
		Temperature: 0.7,
	}
	body.ResponseFormat.Type = "text"
	if wantsJSON(options) {
		body.ResponseFormat.Type = "json_object"
	}
	if systemPrompt != "" {
		body.Messages = append(body.Messages, deepseekMessage{Role: "system", Content: systemPrompt})
	}
	body.Messages = append(body.Messages, deepseekMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal deepseek request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, deepseekURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build deepseek request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek call failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read deepseek response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek returned status %d: %s", res.StatusCode, string(raw))
	}

	var out deepseekResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode deepseek response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("deepseek returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
