// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai abstracts the text-generation API behind a small interface so
// the pipeline stages (relevance scoring, extraction, synthesis, evaluation)
// can share backends and tests can supply mocks. Each backend (Anthropic,
// OpenAI-compatible) implements Generator per the Strategy pattern.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable reports that a generation call failed, timed out, or
// returned output that does not match the expected schema. Callers decide
// whether to retry, degrade, or abort.
var ErrUnavailable = errors.New("generation unavailable")

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// WithTimeout bounds every call to the wrapped generator. A timed-out call
// surfaces as an ordinary generation failure to the caller.
func WithTimeout(g Generator, d time.Duration) Generator {
	return &timeoutGenerator{g: g, d: d}
}

type timeoutGenerator struct {
	g Generator
	d time.Duration
}

func (t *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.g.Generate(ctx, prompt)
}

// CallJSON runs a prompt and decodes the response into T. The response must
// be a single JSON document; surrounding prose or Markdown code fences are
// stripped first. Any failure, transport or schema, is reported as
// ErrUnavailable so call sites fail fast instead of trusting malformed
// output downstream.
func CallJSON[T any](ctx context.Context, g Generator, prompt string) (T, error) {
	var out T

	text, err := g.Generate(ctx, prompt)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	doc := extractJSON(text)
	if doc == "" {
		return out, fmt.Errorf("%w: no JSON document in response", ErrUnavailable)
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return out, fmt.Errorf("%w: parsing response: %v", ErrUnavailable, err)
	}
	return out, nil
}

// extractJSON returns the outermost JSON object or array embedded in text,
// tolerating Markdown code fences and leading or trailing prose.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}

	var end int
	if text[start] == '{' {
		end = strings.LastIndex(text, "}")
	} else {
		end = strings.LastIndex(text, "]")
	}
	if end <= start {
		return ""
	}
	return text[start : end+1]
}
