package gemini_test

import (
	"context"
	"iter"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/dmitrymomot/liverelay/core/router"
	"github.com/dmitrymomot/liverelay/integration/gemini"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type embedCall struct {
	model    string
	contents []*genai.Content
	config   *genai.EmbedContentConfig
}

// fakeBackend records calls and answers with canned responses.
type fakeBackend struct {
	mu        sync.Mutex
	generated []generateCall
	embedded  []embedCall

	generate func() (*genai.GenerateContentResponse, error)
	stream   []streamItem
	embed    func(n int) (*genai.EmbedContentResponse, error)
	models   []*genai.Model
	listErr  error
}

type streamItem struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (b *fakeBackend) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	b.mu.Lock()
	b.generated = append(b.generated, generateCall{model, contents, config})
	b.mu.Unlock()
	if b.generate == nil {
		return textResponse("", "STOP"), nil
	}
	return b.generate()
}

func (b *fakeBackend) GenerateContentStream(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	b.mu.Lock()
	b.generated = append(b.generated, generateCall{model, contents, config})
	b.mu.Unlock()
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, item := range b.stream {
			if !yield(item.resp, item.err) {
				return
			}
			if item.err != nil {
				return
			}
		}
	}
}

func (b *fakeBackend) EmbedContent(_ context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	b.mu.Lock()
	b.embedded = append(b.embedded, embedCall{model, contents, config})
	b.mu.Unlock()
	if b.embed == nil {
		return &genai.EmbedContentResponse{}, nil
	}
	return b.embed(len(contents))
}

func (b *fakeBackend) ListModels(context.Context) ([]*genai.Model, error) {
	return b.models, b.listErr
}

func (b *fakeBackend) lastGenerate(t *testing.T) generateCall {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.generated) == 0 {
		t.Fatal("backend was not called")
	}
	return b.generated[len(b.generated)-1]
}

func (b *fakeBackend) lastEmbed(t *testing.T) embedCall {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.embedded) == 0 {
		t.Fatal("backend was not called")
	}
	return b.embedded[len(b.embedded)-1]
}

func textResponse(text, reason string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReason(reason),
		}},
	}
}

// keyRecorder wraps a backend and remembers the key it was created with.
type keyRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (k *keyRecorder) factory(backend gemini.Backend) gemini.BackendFactory {
	return func(_ context.Context, apiKey string) (gemini.Backend, error) {
		k.mu.Lock()
		k.keys = append(k.keys, apiKey)
		k.mu.Unlock()
		return backend, nil
	}
}

func (k *keyRecorder) last() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.keys) == 0 {
		return ""
	}
	return k.keys[len(k.keys)-1]
}

// newServer serves the adapter behind a dispatcher, the way the app wires it.
func newServer(t *testing.T, backend gemini.Backend, opts ...gemini.Option) (*httptest.Server, *keyRecorder) {
	t.Helper()
	keys := &keyRecorder{}
	adapter := gemini.New(append([]gemini.Option{
		gemini.WithBackendFactory(keys.factory(backend)),
		gemini.WithClock(func() time.Time { return fixedNow }),
	}, opts...)...)
	srv := httptest.NewServer(router.New(router.WithAdapter(adapter)))
	t.Cleanup(srv.Close)
	return srv, keys
}

func newClient(srv *httptest.Server) *openai.Client {
	client := openai.NewClient(
		option.WithBaseURL(srv.URL+"/v1/"),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	return &client
}
