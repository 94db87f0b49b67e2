package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIEmbedder implements Embedder for OpenAI's embedding API.
//
// Supported models:
//   - text-embedding-3-small: 1536 dimensions
//   - text-embedding-3-large: 3072 dimensions (width configurable)
//   - text-embedding-ada-002: 1536 dimensions (legacy, fixed width)
//
// Thread-safe: Can be used concurrently from multiple goroutines.
//
// Example:
//
//	apiKey := os.Getenv("OPENAI_API_KEY")
//	embedder := embed.NewOpenAI(embed.DefaultOpenAIConfig(apiKey))
//
//	vec, err := embedder.Embed(ctx, "hello world")
//	if err != nil {
//		return err
//	}
type OpenAIEmbedder struct {
	config *Config
	client *http.Client
}

// NewOpenAI creates a new OpenAI embedder.
//
// If config is nil, DefaultOpenAIConfig("") is used (will fail without API key).
func NewOpenAI(config *Config) *OpenAIEmbedder {
	if config == nil {
		config = DefaultOpenAIConfig("")
	}

	return &OpenAIEmbedder{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// openaiRequest is the request format for OpenAI.
// Dimensions is omitted from the wire when zero.
type openaiRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// openaiResponse is the response format from OpenAI.
type openaiResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage *Usage `json:"usage"`
}

// supportsDimensions reports whether the model accepts a configurable
// output width. Only the text-embedding-3 family does; sending the
// parameter to older models fails the whole request, so callers drop it
// silently for anything else.
func supportsDimensions(model string) bool {
	return strings.HasPrefix(model, "text-embedding-3")
}

// Embed generates a vector embedding for a single text string.
//
// Internally calls EmbedWithOptions with the configured defaults.
//
// Returns the embedding vector, or an error if the API request fails.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := e.EmbedWithOptions(ctx, text, nil)
	if err != nil {
		return nil, err
	}
	return result.Vector, nil
}

// EmbedWithOptions generates an embedding with per-request overrides.
//
// opts.Model selects a different model for this call; opts.Dimensions is
// forwarded only when the selected model supports configurable width and
// is dropped otherwise. Returns the first vector from the response along
// with the serving model and token usage.
//
// Example:
//
//	result, err := embedder.EmbedWithOptions(ctx, text, &embed.Options{
//		Model:      "text-embedding-3-large",
//		Dimensions: 256,
//	})
func (e *OpenAIEmbedder) EmbedWithOptions(ctx context.Context, text string, opts *Options) (*Embedding, error) {
	model := e.config.Model
	dimensions := 0
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		if opts.Dimensions > 0 && supportsDimensions(model) {
			dimensions = opts.Dimensions
		}
	}

	req := openaiRequest{
		Model:      model,
		Input:      []string{text},
		Dimensions: dimensions,
	}

	resp, err := e.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbedding
	}

	modelUsed := resp.Model
	if modelUsed == "" {
		modelUsed = model
	}

	return &Embedding{
		Vector: resp.Data[0].Embedding,
		Model:  modelUsed,
		Usage:  resp.Usage,
	}, nil
}

// EmbedBatch generates embeddings for multiple texts in a single API call.
//
// OpenAI's API supports true batch processing, making this more efficient
// than calling Embed() multiple times. Maximum batch size: 2048 texts.
//
// Returns a slice of embeddings (one per input text), or an error if the
// API request fails.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openaiRequest{
		Model: e.config.Model,
		Input: texts,
	}

	resp, err := e.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 && len(texts) > 0 {
		return nil, ErrNoEmbedding
	}

	results := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(results) {
			return nil, fmt.Errorf("unexpected embedding index %d", data.Index)
		}
		results[data.Index] = data.Embedding
	}

	return results, nil
}

// send issues one embeddings request and decodes the response.
func (e *OpenAIEmbedder) send(ctx context.Context, req openaiRequest) (*openaiResponse, error) {
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
	httpReq.Header.Set("Authorization", "Bearer "+e.config.APIKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, newUpstreamError(resp.StatusCode, bodyBytes)
	}

	var openaiResp openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &openaiResp, nil
}

// Dimensions returns the expected embedding dimensions.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Model returns the model name.
func (e *OpenAIEmbedder) Model() string {
	return e.config.Model
}
