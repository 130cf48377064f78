package langchain

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Generator adapts any langchaingo model to analysis.Generator.
type Generator struct {
	model       llms.Model
	temperature float64
}

// NewGenerator wraps an already constructed model.
func NewGenerator(model llms.Model, temperature float64) *Generator {
	return &Generator{model: model, temperature: temperature}
}

// NewGemini builds a Google AI backed generator.
func NewGemini(ctx context.Context, apiKey, model string, temperature float64) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, err
	}
	return NewGenerator(llm, temperature), nil
}

// NewOllama builds a generator for a local Ollama server. Replies are forced to JSON.
func NewOllama(serverURL, model string, temperature float64) (*Generator, error) {
	opts := []ollama.Option{
		ollama.WithModel(model),
		ollama.WithFormat("json"),
	}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewGenerator(llm, temperature), nil
}

// Generate sends prompt as the only message.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(g.temperature))
}
