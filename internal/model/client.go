package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/actuallystonmai/mood-recommender/internal/metrics"
	"github.com/actuallystonmai/mood-recommender/internal/resilience"
)

const (
	titleMaxTokens       = 100
	explanationMaxTokens = 200
)

// Completer turns a prompt into a single text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int64) (string, error)
}

type Client struct {
	completer Completer
	breaker   *gobreaker.CircuitBreaker[string]
}

func NewClient(completer Completer) *Client {
	return &Client{
		completer: completer,
		breaker:   resilience.NewBreaker[string](resilience.DefaultBreakerConfig("llm")),
	}
}

type ModelInferenceError struct {
	Msg string
	Err error
}

func (e *ModelInferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ModelInferenceError) Unwrap() error {
	return e.Err
}

func IsModelInferenceError(err error) bool {
	var target *ModelInferenceError
	return errors.As(err, &target)
}

// SuggestTitle asks the model for one title matching the mood.
func (c *Client) SuggestTitle(ctx context.Context, mood, genre string) (string, error) {
	text, err := c.complete(ctx, "suggest_title", TitlePrompt(mood, genre), titleMaxTokens)
	if err != nil {
		return "", err
	}
	title := CleanTitle(text)
	if title == "" {
		return "", &ModelInferenceError{Msg: "model returned an empty title"}
	}
	return title, nil
}

// Explain asks the model why title suits the mood.
func (c *Client) Explain(ctx context.Context, title, mood string) (string, error) {
	text, err := c.complete(ctx, "explain", ExplanationPrompt(title, mood), explanationMaxTokens)
	if err != nil {
		return "", err
	}
	explanation := strings.TrimSpace(text)
	if explanation == "" {
		return "", &ModelInferenceError{Msg: "model returned an empty explanation"}
	}
	return explanation, nil
}

func (c *Client) complete(ctx context.Context, operation, prompt string, maxTokens int64) (string, error) {
	start := time.Now()
	text, err := resilience.Execute(ctx, c.breaker, func() (string, error) {
		return c.completer.Complete(ctx, prompt, maxTokens)
	})
	metrics.ObserveCollaborator("llm", operation, start, err)
	if err != nil {
		if IsModelInferenceError(err) {
			return "", err
		}
		return "", &ModelInferenceError{Msg: operation + " failed", Err: err}
	}
	return text, nil
}

// CleanTitle trims whitespace and one wrapping quote character at each end.
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s)
}
