package gemini

// Config holds adapter settings with environment variable support.
type Config struct {
	BaseURL        string `env:"GEMINI_BASE_URL"`
	ChatModel      string `env:"GEMINI_DEFAULT_MODEL" envDefault:"gemini-2.0-flash"`
	EmbeddingModel string `env:"GEMINI_EMBEDDING_MODEL" envDefault:"text-embedding-004"`
}

// NewFromConfig creates an Adapter backed by the genai SDK. Additional
// options override config values.
func NewFromConfig(cfg Config, opts ...Option) *Adapter {
	configOpts := []Option{WithBackendFactory(GenAIFactory(cfg.BaseURL, nil))}
	if cfg.ChatModel != "" {
		configOpts = append(configOpts, WithDefaultChatModel(cfg.ChatModel))
	}
	if cfg.EmbeddingModel != "" {
		configOpts = append(configOpts, WithDefaultEmbeddingModel(cfg.EmbeddingModel))
	}
	return New(append(configOpts, opts...)...)
}
