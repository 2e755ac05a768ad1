// Package openai adapts the official OpenAI Go SDK to the sdkadapter.Adapter contract.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"netexec/internal/sdkadapter"
	"netexec/pkg/neterr"
)

func init() {
	sdkadapter.Register("openai", New)
}

// Adapter wraps an openai-go client.
type Adapter struct {
	client openaisdk.Client
	model  string
}

// New constructs an OpenAI adapter from a config map with keys "api_key" and
// optionally "model" (default gpt-4o).
func New(config map[string]any) (sdkadapter.Adapter, error) {
	apiKey, _ := config["api_key"].(string)
	if apiKey == "" {
		return nil, errors.New("sdkadapter/openai: api_key is required")
	}
	model, _ := config["model"].(string)
	if model == "" {
		model = "gpt-4o"
	}
	return &Adapter{
		client: openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Call dispatches methodPath via a small, known switch: "chat.completions.create"
// is the only method path in scope.
func (a *Adapter) Call(ctx context.Context, methodPath string, kwargs map[string]any) (any, error) {
	switch methodPath {
	case "chat.completions.create", "":
		return a.chatCompletionsCreate(ctx, kwargs)
	default:
		return nil, fmt.Errorf("sdkadapter/openai: unsupported method %q", methodPath)
	}
}

func (a *Adapter) chatCompletionsCreate(ctx context.Context, kwargs map[string]any) (any, error) {
	model := a.model
	if m, ok := kwargs["model"].(string); ok && m != "" {
		model = m
	}

	var messages []openaisdk.ChatCompletionMessageParamUnion
	if rawMessages, ok := kwargs["messages"].([]any); ok {
		for _, rm := range rawMessages {
			entry, ok := rm.(map[string]any)
			if !ok {
				continue
			}
			role, _ := entry["role"].(string)
			content, _ := entry["content"].(string)
			switch role {
			case "system":
				messages = append(messages, openaisdk.SystemMessage(content))
			case "assistant":
				messages = append(messages, openaisdk.AssistantMessage(content))
			default:
				messages = append(messages, openaisdk.UserMessage(content))
			}
		}
	}
	if len(messages) == 0 {
		return nil, errors.New("sdkadapter/openai: chat.completions.create requires a non-empty messages list")
	}

	resp, err := a.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, neterr.New(neterr.KindSDK, "openai: empty response")
	}

	return map[string]any{"content": resp.Choices[0].Message.Content}, nil
}

// Close releases adapter resources; the OpenAI SDK client has no explicit
// close, so this is a no-op kept for interface symmetry.
func (a *Adapter) Close() error { return nil }

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return neterr.Wrap(neterr.KindTimeout, err, "openai request timed out")
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized"):
		return neterr.Wrap(neterr.KindAuth, err, "openai authentication failed")
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate"):
		return neterr.Wrap(neterr.KindRateLimit, err, "openai rate limit exceeded")
	case strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504"):
		return neterr.Wrap(neterr.KindServer, err, "openai server error")
	default:
		return neterr.Wrap(neterr.KindSDK, err, "openai request failed")
	}
}
