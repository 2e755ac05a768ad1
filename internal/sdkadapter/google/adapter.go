// Package google adapts the Google genai Go SDK to the sdkadapter.Adapter contract.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"netexec/internal/sdkadapter"
	"netexec/pkg/neterr"
)

func init() {
	sdkadapter.Register("google", New)
}

// Adapter wraps a google.golang.org/genai client.
type Adapter struct {
	client *genai.Client
	model  string
}

// New constructs a Google genai adapter from a config map with keys
// "api_key" and optionally "model" (default gemini-1.5-flash).
func New(config map[string]any) (sdkadapter.Adapter, error) {
	apiKey, _ := config["api_key"].(string)
	if apiKey == "" {
		return nil, errors.New("sdkadapter/google: api_key is required")
	}
	model, _ := config["model"].(string)
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("sdkadapter/google: constructing client: %w", err)
	}

	return &Adapter{client: client, model: model}, nil
}

// Call dispatches methodPath via a small, known switch: "models.generateContent"
// is the only method path in scope.
func (a *Adapter) Call(ctx context.Context, methodPath string, kwargs map[string]any) (any, error) {
	switch methodPath {
	case "models.generateContent", "":
		return a.generateContent(ctx, kwargs)
	default:
		return nil, fmt.Errorf("sdkadapter/google: unsupported method %q", methodPath)
	}
}

func (a *Adapter) generateContent(ctx context.Context, kwargs map[string]any) (any, error) {
	model := a.model
	if m, ok := kwargs["model"].(string); ok && m != "" {
		model = m
	}

	prompt, _ := kwargs["prompt"].(string)
	if prompt == "" {
		return nil, errors.New("sdkadapter/google: models.generateContent requires a non-empty prompt")
	}

	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return nil, classifyError(err)
	}
	if resp == nil {
		return nil, neterr.New(neterr.KindSDK, "google: empty response")
	}

	return map[string]any{"content": resp.Text()}, nil
}

// Close releases adapter resources.
func (a *Adapter) Close() error { return nil }

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "permission"):
		return neterr.Wrap(neterr.KindAuth, err, "google authentication failed")
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate") || strings.Contains(errStr, "quota"):
		return neterr.Wrap(neterr.KindRateLimit, err, "google rate limit exceeded")
	case strings.Contains(errStr, "500") || strings.Contains(errStr, "503"):
		return neterr.Wrap(neterr.KindServer, err, "google server error")
	default:
		return neterr.Wrap(neterr.KindSDK, err, "google request failed")
	}
}
