package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"compass/internal/faults"
	"compass/pkg/config"
)

// Generator produces free-form text from a prompt via a remote
// text-generation endpoint.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GroqGenerator is a thin adapter over the Groq chat-completions API, which
// speaks the OpenAI wire format. There is no local fallback: every failure
// surfaces as a GenerationFailure.
type GroqGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

func NewGroqGenerator(cfg *config.GroqConfig, logger *zap.Logger) (*GroqGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GROQ_API_KEY is not set")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &GroqGenerator{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}, nil
}

// Generate sends the prompt as a single user message and returns the model's
// reply verbatim. Network errors, non-success statuses, and empty responses
// all yield a GenerationFailure; 5xx statuses and timeouts are marked
// transient so the caller may retry once.
func (g *GroqGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		f := faults.New(faults.KindGenerationFailure, "generation request failed", err)
		if isTransient(err) {
			f.MarkTransient()
		}
		return "", f
	}

	if len(resp.Choices) == 0 {
		return "", faults.Newf(faults.KindGenerationFailure, "no choices in generation response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", faults.Newf(faults.KindGenerationFailure, "generation response was empty")
	}

	g.logger.Info("Generation completed",
		zap.String("model", g.model),
		zap.Int("response_length", len(text)),
	)

	return text, nil
}

// isTransient reports whether the generation error is worth a single retry:
// a 5xx from the endpoint, a timeout, or a temporary network error.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
