package gateway

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// completeHosted talks to the OpenAI Chat Completions API.
func (g *Gateway) completeHosted(ctx context.Context, prompt string, backend BackendDescriptor) (string, string, error) {
	if g.opts.OpenAIKey == "" {
		return "", "", fmt.Errorf("OPENAI_API_KEY is not configured")
	}
	cfg := openai.DefaultConfig(g.opts.OpenAIKey)
	cfg.HTTPClient = g.client
	return completeChat(ctx, openai.NewClientWithConfig(cfg), prompt, backend)
}

// completeLocalFile reaches a model file served through an OpenAI-compatible
// local endpoint such as llama.cpp's server or a llamafile.
func (g *Gateway) completeLocalFile(ctx context.Context, prompt string, backend BackendDescriptor) (string, string, error) {
	if g.opts.FileServerURL == "" {
		return "", "", fmt.Errorf("file server URL is not configured")
	}
	// Local servers ignore the key but the client requires a non-empty one.
	cfg := openai.DefaultConfig("local")
	cfg.BaseURL = g.opts.FileServerURL
	cfg.HTTPClient = g.client
	return completeChat(ctx, openai.NewClientWithConfig(cfg), prompt, backend)
}

func completeChat(ctx context.Context, client *openai.Client, prompt string, backend BackendDescriptor) (string, string, error) {
	req := openai.ChatCompletionRequest{
		Model: backend.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(backend.Temperature),
		MaxTokens:   backend.MaxTokens,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", resp.Model, fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, resp.Model, nil
}
