package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel          = "gpt-4o"
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

var (
	errEmptyCompletion = errors.New("backend returned no choices")
	errEmptyEmbedding  = errors.New("backend returned no embedding")
)

// Client talks to an OpenAI-compatible API for both chat completions and
// embeddings.
type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	maxTokens      int
	temperature    float32
}

type ClientConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float64
	HTTPClient     *http.Client
}

func NewClientWithConfig(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		client:         openai.NewClientWithConfig(config),
		model:          model,
		embeddingModel: embeddingModel,
		maxTokens:      maxTokens,
		temperature:    float32(temperature),
	}
}

// CompleteWithSystem sends a system and a user message and asks for a JSON
// object back. The content is returned unparsed.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// Embedding returns the embedding vector of text.
func (c *Client) Embedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errEmptyEmbedding
	}

	return resp.Data[0].Embedding, nil
}

// Model returns the configured chat model.
func (c *Client) Model() string {
	return c.model
}
