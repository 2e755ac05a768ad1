// Package ollama adapts the Ollama Go API client to the sdkadapter.Adapter contract.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollamaapi "github.com/ollama/ollama/api"

	"netexec/internal/sdkadapter"
	"netexec/pkg/neterr"
)

func init() {
	sdkadapter.Register("ollama", New)
}

// Adapter wraps an ollama/api client against a local or remote Ollama server.
type Adapter struct {
	client *ollamaapi.Client
	model  string
}

// New constructs an Ollama adapter from a config map with keys "base_url"
// (default http://localhost:11434) and "model".
func New(config map[string]any) (sdkadapter.Adapter, error) {
	baseURL, _ := config["base_url"].(string)
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model, _ := config["model"].(string)
	if model == "" {
		return nil, errors.New("sdkadapter/ollama: model is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("sdkadapter/ollama: invalid base_url: %w", err)
	}

	return &Adapter{
		client: ollamaapi.NewClient(parsed, http.DefaultClient),
		model:  model,
	}, nil
}

// Call dispatches methodPath via a small, known switch: "chat" is the only
// method path in scope.
func (a *Adapter) Call(ctx context.Context, methodPath string, kwargs map[string]any) (any, error) {
	switch methodPath {
	case "chat", "":
		return a.chat(ctx, kwargs)
	default:
		return nil, fmt.Errorf("sdkadapter/ollama: unsupported method %q", methodPath)
	}
}

func (a *Adapter) chat(ctx context.Context, kwargs map[string]any) (any, error) {
	model := a.model
	if m, ok := kwargs["model"].(string); ok && m != "" {
		model = m
	}

	var messages []ollamaapi.Message
	if rawMessages, ok := kwargs["messages"].([]any); ok {
		for _, rm := range rawMessages {
			entry, ok := rm.(map[string]any)
			if !ok {
				continue
			}
			role, _ := entry["role"].(string)
			content, _ := entry["content"].(string)
			messages = append(messages, ollamaapi.Message{Role: role, Content: content})
		}
	}
	if len(messages) == 0 {
		return nil, errors.New("sdkadapter/ollama: chat requires a non-empty messages list")
	}

	stream := false
	req := &ollamaapi.ChatRequest{Model: model, Messages: messages, Stream: &stream}

	var response ollamaapi.ChatResponse
	err := a.client.Chat(ctx, req, func(resp ollamaapi.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return nil, classifyError(err)
	}

	return map[string]any{"content": response.Message.Content}, nil
}

// Close releases adapter resources; the Ollama API client has no explicit
// close, so this is a no-op kept for interface symmetry.
func (a *Adapter) Close() error { return nil }

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "connection refused"):
		return neterr.Wrap(neterr.KindConnection, err, "ollama server not reachable")
	case strings.Contains(errStr, "model") && strings.Contains(errStr, "not found"):
		return neterr.Wrap(neterr.KindAPI, err, "ollama model not found")
	case strings.Contains(errStr, "context canceled"):
		return neterr.Wrap(neterr.KindSDK, err, "ollama request canceled")
	case strings.Contains(errStr, "timeout"):
		return neterr.Wrap(neterr.KindTimeout, err, "ollama request timeout")
	default:
		return neterr.Wrap(neterr.KindSDK, err, "ollama request failed")
	}
}
