package service

import (
	"context"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"compass/internal/faults"
	"compass/pkg/config"
)

// Embedder maps free text to a fixed-length dense vector. Implementations
// must be deterministic for a fixed model: the same text yields the same
// vector within the model's floating-point reproducibility.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RemoteEmbedder calls an OpenAI-compatible embeddings endpoint. The client
// is created once at startup and reused for every call.
type RemoteEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger *zap.Logger
}

func NewRemoteEmbedder(cfg *config.EmbeddingConfig, logger *zap.Logger) *RemoteEmbedder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &RemoteEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  openai.EmbeddingModel(cfg.Model),
		logger: logger,
	}
}

// Embed returns the embedding vector for text. Empty or whitespace-only
// input is rejected before any network call.
func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, faults.Newf(faults.KindInvalidInput, "cannot embed empty text")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, faults.New(faults.KindRetrievalFailure, "embedding request failed", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, faults.Newf(faults.KindRetrievalFailure, "embedding response contained no vector")
	}

	e.logger.Debug("Text embedded",
		zap.Int("text_length", len(text)),
		zap.Int("dimension", len(resp.Data[0].Embedding)),
	)

	return resp.Data[0].Embedding, nil
}
