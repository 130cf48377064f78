package analysis

import (
	"context"
	"strings"
)

// DefaultProvider names the model vendor used when none is configured.
const DefaultProvider = "Gemini"

// Generator sends one prompt to a text generation backend and returns the raw reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is the handle the pipeline uses to reach the model. A client built
// without a generator is unconfigured and fails locally on every call.
type Client struct {
	provider  string
	generator Generator
}

// NewClient wraps a ready generator. A nil generator yields an unconfigured client.
func NewClient(provider string, generator Generator) *Client {
	return &Client{provider: displayName(provider), generator: generator}
}

// NewUnconfiguredClient is used when no credential was available at start-up.
func NewUnconfiguredClient(provider string) *Client {
	return &Client{provider: displayName(provider)}
}

// Provider returns the vendor name used in error messages.
func (c *Client) Provider() string {
	if c == nil {
		return DefaultProvider
	}
	return c.provider
}

// Configured reports whether calls can reach a backend.
func (c *Client) Configured() bool {
	return c != nil && c.generator != nil
}

// Complete issues a single completion and returns the reply verbatim.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", notConfigured(c.Provider())
	}
	reply, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", serviceCallFailed(c.provider, err)
	}
	return reply, nil
}

func displayName(provider string) string {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return DefaultProvider
	}
	return provider
}
