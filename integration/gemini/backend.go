package gemini

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"google.golang.org/genai"
)

// Backend is the part of the Gemini API the adapter uses.
type Backend interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	ListModels(ctx context.Context) ([]*genai.Model, error)
}

// BackendFactory creates a Backend for one caller's API key. The adapter
// never stores keys; a backend lives for a single request.
type BackendFactory func(ctx context.Context, apiKey string) (Backend, error)

// GenAIFactory returns a BackendFactory backed by google.golang.org/genai.
// An empty baseURL keeps the SDK default; httpClient may be nil.
func GenAIFactory(baseURL string, httpClient *http.Client) BackendFactory {
	return func(ctx context.Context, apiKey string) (Backend, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  httpClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrClientCreationFailed, err)
		}
		return &genaiBackend{models: client.Models}, nil
	}
}

type genaiBackend struct {
	models *genai.Models
}

func (b *genaiBackend) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return b.models.GenerateContent(ctx, model, contents, config)
}

func (b *genaiBackend) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return b.models.GenerateContentStream(ctx, model, contents, config)
}

func (b *genaiBackend) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return b.models.EmbedContent(ctx, model, contents, config)
}

func (b *genaiBackend) ListModels(ctx context.Context) ([]*genai.Model, error) {
	var models []*genai.Model
	for m, err := range b.models.All(ctx) {
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}
