package chatgpt

import (
	"context"
	"errors"
	"log/slog"
)

// Generator adapts Client to analysis.Generator.
type Generator struct {
	client      *Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// NewGenerator binds a model and temperature to client.
func NewGenerator(client *Client, model string, temperature float64, logger *slog.Logger) *Generator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Generator{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		logger:      logger.With("component", "chatgpt.generator"),
	}
}

// Generate sends prompt as the single user message and requests a JSON object reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, ChatCompletionRequest{
		Model:          g.model,
		Messages:       []Message{{Role: "user", Content: prompt}},
		Temperature:    g.temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	g.logger.Debug("completion received",
		"model", g.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason,
	)
	return resp.Choices[0].Message.Content, nil
}
