package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/avasile/mnemo/internal/core"
)

// OpenAICompatible speaks the chat-completions dialect shared by every
// supported backend. Vendor-specific providers wrap it with their base
// URL and auth scheme.
type OpenAICompatible struct {
	baseProvider
	chatPath     string
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// ChatPath defaults to /v1/chat/completions; endpoints whose base
	// URL already contains /v1 override it.
	ChatPath     string
	AuthHeader   string // e.g. "Authorization"
	AuthPrefix   string // e.g. "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	chatPath := cfg.ChatPath
	if chatPath == "" {
		chatPath = "/v1/chat/completions"
	}
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		chatPath:     chatPath,
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) Generate(ctx context.Context, messages []core.Message) (string, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": messages,
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	resp, err := o.doRequest(ctx, http.MethodPost, o.chatPath, payload, headers)
	if err != nil {
		return "", &core.BackendError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	return parseCompletionResponse(resp)
}

func parseCompletionResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &core.BackendError{Status: resp.StatusCode, Detail: string(data)}
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", &core.BackendError{Detail: fmt.Sprintf("decode: %v", err)}
	}
	if len(result.Choices) == 0 {
		return "", &core.BackendError{Detail: "empty choices: " + string(data)}
	}
	return result.Choices[0].Message.Content, nil
}
