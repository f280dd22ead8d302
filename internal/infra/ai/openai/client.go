package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/truesight/internal/domain/ai"
	"github.com/bryanwahyu/truesight/internal/infra/ai/prompt"
)

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.1
	defaultTimeout     = 30 * time.Second
)

// Config describes one OpenAI-compatible chat endpoint.
type Config struct {
	Name        string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client talks to an OpenAI-compatible chat completion API (Groq, DeepSeek,
// OpenAI itself).
type Client struct {
	*openai.Client
	cfg Config
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	return &Client{Client: openai.NewClientWithConfig(oc), cfg: cfg}
}

func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Model() string { return c.cfg.Model }

// Analyze sends the threat prompt and returns the raw message content.
func (c *Client) Analyze(ctx context.Context, req ai.Request) (string, error) {
	model := c.cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	chat := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(req)},
		},
		Temperature: c.cfg.Temperature,
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(model) {
		chat.MaxCompletionTokens = c.cfg.MaxTokens
		chat.Temperature = 0
	} else {
		chat.MaxTokens = c.cfg.MaxTokens
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.CreateChatCompletion(ctx, chat)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%s: %w: %v", c.cfg.Name, ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("%s: failed to create chat completion: %w", c.cfg.Name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty completion", c.cfg.Name)
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	return errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests
}
