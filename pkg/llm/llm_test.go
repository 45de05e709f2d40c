package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOptions(t *testing.T) {
	got := Apply(Options{Temperature: 0.7, Model: "default"},
		WithTemperature(0.3),
		WithMaxTokens(150),
	)

	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 150, got.MaxTokens)
	assert.Equal(t, "default", got.Model)

	got = Apply(Options{Model: "default"}, WithModel("override"))
	assert.Equal(t, "override", got.Model)
}

func TestUnavailableWrapsReason(t *testing.T) {
	reason := errors.New("apiKey must not be empty")
	p := NewUnavailable(reason)

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, reason)

	_, err = p.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, reason)
	assert.Equal(t, "unavailable", p.Name())
}
