package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaEmbedder implements Embedder for local Ollama models.
//
// Ollama runs open-source embedding models locally:
//   - mxbai-embed-large: 1024 dimensions, excellent quality
//   - nomic-embed-text: 768 dimensions, faster
//   - all-minilm: 384 dimensions, very fast but lower quality
//
// Install models:
//
//	$ ollama pull mxbai-embed-large
//	$ ollama pull nomic-embed-text
//
// Thread-safe: Can be used concurrently from multiple goroutines.
type OllamaEmbedder struct {
	config *Config
	client *http.Client
}

// NewOllama creates a new Ollama embedder.
//
// If config is nil, DefaultOllamaConfig() is used.
func NewOllama(config *Config) *OllamaEmbedder {
	if config == nil {
		config = DefaultOllamaConfig()
	}

	return &OllamaEmbedder{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ollamaRequest is the request format for Ollama.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaResponse is the response format from Ollama.
type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates a vector embedding for a single text string.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := e.EmbedWithOptions(ctx, text, nil)
	if err != nil {
		return nil, err
	}
	return result.Vector, nil
}

// EmbedWithOptions generates an embedding with per-request overrides.
//
// Only the model can be overridden; Ollama models have fixed output width,
// so opts.Dimensions is always dropped.
func (e *OllamaEmbedder) EmbedWithOptions(ctx context.Context, text string, opts *Options) (*Embedding, error) {
	model := e.config.Model
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}

	req := ollamaRequest{
		Model:  model,
		Prompt: text,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := e.config.APIURL + e.config.APIPath
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, newUpstreamError(resp.StatusCode, bodyBytes)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(ollamaResp.Embedding) == 0 {
		return nil, ErrNoEmbedding
	}

	return &Embedding{
		Vector: ollamaResp.Embedding,
		Model:  model,
	}, nil
}

// EmbedBatch generates embeddings for multiple texts.
//
// Ollama's embeddings endpoint takes one prompt per request, so this makes
// one call per text.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		results[i] = embedding
	}
	return results, nil
}

// Dimensions returns the expected embedding dimensions.
func (e *OllamaEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Model returns the model name.
func (e *OllamaEmbedder) Model() string {
	return e.config.Model
}
