// Package transport implements the generic, unopinionated HTTP client used
// by http-discriminant endpoints, and the status-to-error classification
// shared by every caller of it.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"netexec/pkg/neterr"
)

// HTTPClient is a pooled, reusable HTTP client bound to a base URL and a set
// of default headers. It is safe for concurrent use.
type HTTPClient struct {
	baseURL        string
	defaultHeaders map[string]string

	once    sync.Once
	client  *http.Client
	closed  bool
	closeMu sync.Mutex
}

// NewHTTPClient creates a client and its underlying *http.Client. Lazy
// construction happens one level up: an Endpoint calls this only on its
// first GetHTTPClient.
func NewHTTPClient(baseURL string, timeout time.Duration, defaultHeaders map[string]string) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), defaultHeaders: defaultHeaders}
	c.once.Do(func() {
		c.client = &http.Client{Timeout: timeout}
	})
	return c
}

// Close marks the client closed. Idempotent; further Request/Call calls fail.
func (c *HTTPClient) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	c.closed = true
	return nil
}

func (c *HTTPClient) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

// Request issues an HTTP call against path (relative to the client's base
// URL), with optional query params and/or a JSON body, and returns the
// decoded JSON body, the response headers, and the status code. Non-2xx
// responses are classified into *neterr.Error per the taxonomy: 401→Auth,
// 404→NotFound, 429→RateLimit (with parsed Retry-After), 5xx→Server,
// otherwise→API. Connection and timeout failures are classified similarly
// before the HTTP round trip even completes.
func (c *HTTPClient) Request(ctx context.Context, method, path string, params map[string]string, body any, headers map[string]string) (statusCode int, respHeaders http.Header, respBody any, err error) {
	if c.isClosed() {
		return 0, nil, nil, neterr.ErrEndpointClosed
	}

	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		fullURL += "?" + q.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, mErr := json.Marshal(body)
		if mErr != nil {
			return 0, nil, nil, fmt.Errorf("netexec: encoding request body: %w", mErr)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("netexec: building request: %w", err)
	}
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, resp.Header, nil, fmt.Errorf("netexec: reading response body: %w", readErr)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var decoded any
		if len(raw) > 0 {
			if jsonErr := json.Unmarshal(raw, &decoded); jsonErr != nil {
				decoded = string(raw)
			}
		}
		return resp.StatusCode, resp.Header, decoded, nil
	}

	return resp.StatusCode, resp.Header, nil, classifyStatusError(resp.StatusCode, resp.Header, raw)
}

// Call is a convenience method mirroring a request dict: it accepts a map
// with "method", "url" (path), and optionally "params"/"json"/"headers",
// merges it with extras, and delegates to Request.
func (c *HTTPClient) Call(ctx context.Context, request map[string]any, extras map[string]any) (int, http.Header, any, error) {
	merged := make(map[string]any, len(request)+len(extras))
	for k, v := range request {
		merged[k] = v
	}
	for k, v := range extras {
		merged[k] = v
	}

	method, _ := merged["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	path, _ := merged["url"].(string)

	var params map[string]string
	if p, ok := merged["params"].(map[string]string); ok {
		params = p
	}
	var headers map[string]string
	if h, ok := merged["headers"].(map[string]string); ok {
		headers = h
	}
	body := merged["json"]

	return c.Request(ctx, strings.ToUpper(method), path, params, body, headers)
}

func classifyTransportError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "context deadline exceeded") || strings.Contains(msg, "Client.Timeout") {
		return neterr.Wrap(neterr.KindTimeout, err, "request timed out")
	}
	return neterr.Wrap(neterr.KindConnection, err, "connection error")
}

func classifyStatusError(status int, headers http.Header, raw []byte) error {
	message := extractErrorMessage(raw)

	switch {
	case status == http.StatusUnauthorized:
		return &neterr.Error{Kind: neterr.KindAuth, StatusCode: status, Message: message, Body: string(raw)}
	case status == http.StatusNotFound:
		return &neterr.Error{Kind: neterr.KindNotFound, StatusCode: status, Message: message, Body: string(raw)}
	case status == http.StatusTooManyRequests:
		retryAfter := 0.0
		if v := headers.Get("Retry-After"); v != "" {
			if parsed, pErr := strconv.ParseFloat(v, 64); pErr == nil {
				retryAfter = parsed
			}
		}
		return &neterr.Error{Kind: neterr.KindRateLimit, StatusCode: status, Message: message, Body: string(raw), RetryAfter: retryAfter}
	case status >= 500 && status < 600:
		return &neterr.Error{Kind: neterr.KindServer, StatusCode: status, Message: message, Body: string(raw)}
	default:
		return &neterr.Error{Kind: neterr.KindAPI, StatusCode: status, Message: message, Body: string(raw)}
	}
}

// extractErrorMessage sniffs common error-body shapes ("detail", "message",
// "error") before falling back to the raw body text.
func extractErrorMessage(raw []byte) string {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			if v, ok := decoded[key]; ok {
				if s, ok := v.(string); ok {
					return s
				}
			}
		}
	}
	return string(raw)
}
