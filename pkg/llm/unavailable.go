package llm

import (
	"context"
	"fmt"
)

// Unavailable stands in for a backend that could not be constructed. Every
// call fails with the construction error, so callers take their own
// fallback path.
type Unavailable struct {
	Reason error
}

func NewUnavailable(reason error) *Unavailable {
	return &Unavailable{Reason: reason}
}

func (u *Unavailable) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return "", fmt.Errorf("llm unavailable: %w", u.Reason)
}

func (u *Unavailable) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return "", fmt.Errorf("llm unavailable: %w", u.Reason)
}

func (u *Unavailable) Name() string { return "unavailable" }
