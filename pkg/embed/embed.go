// Package embed provides embedding generation clients for vectorops.
//
// This package supports multiple embedding providers:
//   - OpenAI: Cloud API (text-embedding-3-small, text-embedding-3-large)
//   - Ollama: Local open-source models (mxbai-embed-large, nomic-embed-text)
//
// Embeddings convert text into high-dimensional vectors that capture
// semantic meaning. Similar texts have similar vectors, which is what makes
// similarity comparison and clustering possible downstream.
//
// Example Usage:
//
//	config := embed.DefaultOpenAIConfig(os.Getenv("OPENAI_API_KEY"))
//	embedder := embed.NewOpenAI(config)
//
//	vec, err := embedder.Embed(ctx, "two tickets to Lisbon in June")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Embedding dimensions: %d\n", len(vec))
//	// Output: Embedding dimensions: 1536
//
// Input text is expected to be sanitized with Sanitize before embedding;
// the engine layer does this so that validation failures are caught before
// any network call is made.
package embed

import (
	"context"
	"fmt"
	"time"
)

// Embedder generates vector embeddings from text.
//
// Implementations must be safe for concurrent use from multiple goroutines.
//
// Example:
//
//	var embedder embed.Embedder
//	embedder = embed.NewOpenAI(embed.DefaultOpenAIConfig(apiKey))
//
//	// Single embedding
//	vec, err := embedder.Embed(ctx, "one")
//
//	// Batch for efficiency
//	vecs, err := embedder.EmbedBatch(ctx, []string{"one", "two", "three"})
type Embedder interface {
	// Embed generates embedding for single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector dimension
	Dimensions() int

	// Model returns the model name
	Model() string
}

// Options carries per-request overrides for a single embedding call.
// Zero values fall back to the provider's configured defaults.
type Options struct {
	// Model overrides the configured model for this request.
	Model string
	// Dimensions requests a specific output width. Only forwarded to the
	// provider when the selected model supports configurable dimensions;
	// silently dropped otherwise so the request cannot fail on it.
	Dimensions int
}

// Usage reports upstream token accounting when the provider returns it.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Embedding is the full result of a single embedding call, including which
// model actually served it and token usage when available.
type Embedding struct {
	Vector []float32
	Model  string
	Usage  *Usage
}

// OptionsEmbedder is implemented by providers that accept per-request
// model/dimensions overrides. Callers should type-assert and fall back to
// plain Embed when a provider does not implement it.
type OptionsEmbedder interface {
	EmbedWithOptions(ctx context.Context, text string, opts *Options) (*Embedding, error)
}

// Config holds embedding provider configuration.
//
// Fields:
//   - Provider: "openai" or "ollama"
//   - APIURL: Base URL for API (e.g., https://api.openai.com)
//   - APIPath: Endpoint path (e.g., /v1/embeddings)
//   - APIKey: Authentication key (OpenAI only)
//   - Model: Model name (e.g., text-embedding-3-small)
//   - Dimensions: Expected vector size for validation
//   - Timeout: HTTP request timeout
type Config struct {
	Provider   string        // openai, ollama
	APIURL     string        // e.g., https://api.openai.com
	APIPath    string        // e.g., /v1/embeddings or /api/embeddings
	APIKey     string        // For OpenAI
	Model      string        // e.g., text-embedding-3-small
	Dimensions int           // Expected dimensions (for validation)
	Timeout    time.Duration // Request timeout
}

// DefaultOpenAIConfig returns configuration for OpenAI's text-embedding-3-small.
//
// Default settings:
//   - Provider: openai
//   - API URL: https://api.openai.com
//   - Model: text-embedding-3-small (1536 dimensions)
//   - Timeout: 30 seconds
//
// Requires an OpenAI API key.
func DefaultOpenAIConfig(apiKey string) *Config {
	return &Config{
		Provider:   "openai",
		APIURL:     "https://api.openai.com",
		APIPath:    "/v1/embeddings",
		APIKey:     apiKey,
		Model:      "text-embedding-3-small",
		Dimensions: 1536,
		Timeout:    30 * time.Second,
	}
}

// DefaultOllamaConfig returns configuration for local Ollama with mxbai-embed-large.
//
// Default settings:
//   - Provider: ollama
//   - API URL: http://localhost:11434
//   - Model: mxbai-embed-large (1024 dimensions)
//   - Timeout: 30 seconds
//
// This assumes Ollama is running locally:
//
//	$ ollama pull mxbai-embed-large
//	$ ollama serve
func DefaultOllamaConfig() *Config {
	return &Config{
		Provider:   "ollama",
		APIURL:     "http://localhost:11434",
		APIPath:    "/api/embeddings",
		Model:      "mxbai-embed-large",
		Dimensions: 1024,
		Timeout:    30 * time.Second,
	}
}

// New creates an embedder based on the provider specified in config.
//
// Supported providers:
//   - "openai": OpenAI cloud API
//   - "ollama": Local open-source models
//
// Example:
//
//	var config *embed.Config
//	if os.Getenv("EMBEDDING_PROVIDER") == "ollama" {
//		config = embed.DefaultOllamaConfig()
//	} else {
//		config = embed.DefaultOpenAIConfig(os.Getenv("OPENAI_API_KEY"))
//	}
//
//	embedder, err := embed.New(config)
//
// Returns an Embedder interface, or an error if the provider is unknown or
// configuration is invalid (e.g., OpenAI without API key).
func New(config *Config) (Embedder, error) {
	switch config.Provider {
	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI requires an API key")
		}
		return NewOpenAI(config), nil
	case "ollama":
		return NewOllama(config), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", config.Provider)
	}
}
