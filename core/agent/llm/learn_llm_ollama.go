package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	DefaultOllamaURL            = "http://localhost:11434"
	DefaultOllamaModel          = "llama3.1"
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
)

// OllamaBackend serves completions and embeddings from a local Ollama server.
type OllamaBackend struct {
	llm      *ollama.LLM
	embedder embeddings.Embedder
}

type OllamaConfig struct {
	ServerURL      string
	Model          string
	EmbeddingModel string
}

func NewOllamaBackend(cfg OllamaConfig) (*OllamaBackend, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultOllamaEmbeddingModel
	}

	chat, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama chat model: %w", err)
	}

	embedLLM, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedding model: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(embedLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama embedder: %w", err)
	}

	return &OllamaBackend{llm: chat, embedder: embedder}, nil
}

func (b *OllamaBackend) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := b.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	return resp.Choices[0].Content, nil
}

func (b *OllamaBackend) Embedding(ctx context.Context, text string) ([]float32, error) {
	vec, err := b.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, errEmptyEmbedding
	}
	return vec, nil
}
