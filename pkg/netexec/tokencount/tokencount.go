// Package tokencount estimates the token cost of a request payload so the
// executor's token-rate limiter can be driven by an accurate cost rather
// than a flat per-call charge.
package tokencount

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Counter estimates token counts for text, falling back to a character-based
// approximation if the codec is unavailable or errors.
type Counter struct {
	codec tokenizer.Codec
}

// New creates a counter using the GPT-4 encoding, the closest general-purpose
// approximation for providers that don't publish their own tokenizer.
func New() *Counter {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return &Counter{}
	}
	return &Counter{codec: codec}
}

// Count returns the estimated token count of text.
func (c *Counter) Count(text string) int {
	if c.codec == nil {
		return fallback(text)
	}
	n, err := c.codec.Count(text)
	if err != nil {
		return fallback(text)
	}
	return n
}

func fallback(text string) int {
	return len(text) / 4
}

// CountPayload estimates the token cost of an arbitrary request payload by
// stringifying it first. Nothing in the module calls it automatically: an
// event's tokens-needed value comes only from the caller.
func (c *Counter) CountPayload(payload any) int {
	return c.Count(fmt.Sprintf("%v", payload))
}
