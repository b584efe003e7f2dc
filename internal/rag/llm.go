package rag

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// LLM generates free-form text from a prompt. Implementations must return a
// descriptive error on failure; callers degrade to deterministic output.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAILLM generates narratives through the OpenAI chat completions API
type OpenAILLM struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAILLM creates an LLM client for the given API key and model
func NewOpenAILLM(apiKey, model string, timeout time.Duration) *OpenAILLM {
	return &OpenAILLM{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Generate sends the prompt as a single-turn chat completion
func (l *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion with model %s: %w", l.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion with model %s returned no choices", l.model)
	}
	return resp.Choices[0].Message.Content, nil
}
