// Package cloudclient wraps the cloud chat-completion API behind the small
// interface the router needs.
package cloudclient

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/danielpatrickdp/rag-gateway/internal/router"
)

// #region config

// Config holds cloud provider settings. BaseURL is optional and exists so
// tests and OpenAI-compatible local servers can stand in for the real API.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// #endregion

// #region client-struct

// Client is the cloud chat collaborator.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// New creates a cloud client from cfg. Missing fields get conservative
// defaults.
func New(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

// #endregion

// #region chat

// Chat sends one system+user exchange and returns the assistant's text.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// #endregion

var _ router.CloudService = (*Client)(nil)
