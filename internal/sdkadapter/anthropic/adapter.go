// Package anthropic adapts the Anthropic Go SDK to the sdkadapter.Adapter contract.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"netexec/internal/sdkadapter"
	"netexec/pkg/neterr"
)

func init() {
	sdkadapter.Register("anthropic", New)
}

// Adapter wraps an anthropic-sdk-go client.
type Adapter struct {
	client anthropicsdk.Client
	model  string
}

// New constructs an Anthropic adapter from a config map with keys "api_key"
// and optionally "model" (default claude-3-5-sonnet-20241022).
func New(config map[string]any) (sdkadapter.Adapter, error) {
	apiKey, _ := config["api_key"].(string)
	if apiKey == "" {
		return nil, errors.New("sdkadapter/anthropic: api_key is required")
	}
	model, _ := config["model"].(string)
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &Adapter{
		client: anthropicsdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Call dispatches methodPath via a small, known switch rather than
// reflection, since the Anthropic surface exercised here is known ahead of
// time: "messages.create" is the only method path in scope.
func (a *Adapter) Call(ctx context.Context, methodPath string, kwargs map[string]any) (any, error) {
	switch methodPath {
	case "messages.create", "":
		return a.messagesCreate(ctx, kwargs)
	default:
		return nil, fmt.Errorf("sdkadapter/anthropic: unsupported method %q", methodPath)
	}
}

func (a *Adapter) messagesCreate(ctx context.Context, kwargs map[string]any) (any, error) {
	model := a.model
	if m, ok := kwargs["model"].(string); ok && m != "" {
		model = m
	}

	maxTokens := int64(1024)
	if mt, ok := kwargs["max_tokens"].(int); ok {
		maxTokens = int64(mt)
	}

	var messages []anthropicsdk.MessageParam
	if rawMessages, ok := kwargs["messages"].([]any); ok {
		for _, rm := range rawMessages {
			entry, ok := rm.(map[string]any)
			if !ok {
				continue
			}
			role, _ := entry["role"].(string)
			content, _ := entry["content"].(string)
			messages = append(messages, anthropicsdk.MessageParam{
				Role:    anthropicsdk.MessageParamRole(role),
				Content: []anthropicsdk.ContentBlockParamUnion{anthropicsdk.NewTextBlock(content)},
			})
		}
	}
	if len(messages) == 0 {
		return nil, errors.New("sdkadapter/anthropic: messages.create requires a non-empty messages list")
	}

	resp, err := a.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(model),
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return nil, neterr.New(neterr.KindSDK, "anthropic: empty response")
	}

	var text string
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	return map[string]any{"content": text}, nil
}

// Close releases adapter resources. The Anthropic SDK client has no
// explicit close; this is a no-op kept for interface symmetry.
func (a *Adapter) Close() error { return nil }

// classifyError maps Anthropic SDK errors into the shared error taxonomy by
// pattern-matching the error text, mirroring the approach used when the SDK
// surfaces its status code embedded in the error message rather than as a
// typed field.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return neterr.Wrap(neterr.KindTimeout, err, "anthropic request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return neterr.Wrap(neterr.KindSDK, err, "anthropic request canceled")
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized"):
		return neterr.Wrap(neterr.KindAuth, err, "anthropic authentication failed")
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate"):
		return neterr.Wrap(neterr.KindRateLimit, err, "anthropic rate limit exceeded")
	case strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504"):
		return neterr.Wrap(neterr.KindServer, err, "anthropic server error")
	default:
		return neterr.Wrap(neterr.KindSDK, err, "anthropic request failed")
	}
}
