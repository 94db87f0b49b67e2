package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func ollamaStubConfig(serverURL string) *Config {
	return &Config{
		Provider:   "ollama",
		APIURL:     serverURL,
		APIPath:    "/api/embeddings",
		Model:      "mxbai-embed-large",
		Dimensions: 4,
		Timeout:    5 * time.Second,
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	var gotModel, gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("stub failed to decode request: %v", err)
		}
		gotModel = req.Model
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float32{1, 2, 3, 4}})
	}))
	defer server.Close()

	embedder := NewOllama(ollamaStubConfig(server.URL))
	vec, err := embedder.Embed(context.Background(), "local embedding")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(vec) != 4 {
		t.Errorf("expected 4 dimensions, got %d", len(vec))
	}
	if gotModel != "mxbai-embed-large" {
		t.Errorf("unexpected model: %q", gotModel)
	}
	if gotPrompt != "local embedding" {
		t.Errorf("unexpected prompt: %q", gotPrompt)
	}
}

func TestOllamaEmbedder_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{})
	}))
	defer server.Close()

	embedder := NewOllama(ollamaStubConfig(server.URL))
	_, err := embedder.Embed(context.Background(), "text")
	if !errors.Is(err, ErrNoEmbedding) {
		t.Errorf("expected ErrNoEmbedding, got %v", err)
	}
}

func TestOllamaEmbedder_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	embedder := NewOllama(ollamaStubConfig(server.URL))
	_, err := embedder.Embed(context.Background(), "text")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", upstream.Status)
	}
}

func TestOllamaEmbedder_EmbedBatch(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float32{float32(requests)}})
	}))
	defer server.Close()

	embedder := NewOllama(ollamaStubConfig(server.URL))
	vecs, err := embedder.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	// One request per text for Ollama.
	if requests != 3 {
		t.Errorf("expected 3 requests, got %d", requests)
	}
	if len(vecs) != 3 {
		t.Errorf("expected 3 embeddings, got %d", len(vecs))
	}
}

func TestOllamaEmbedder_DimensionsOptionDropped(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float32{1}})
	}))
	defer server.Close()

	embedder := NewOllama(ollamaStubConfig(server.URL))
	_, err := embedder.EmbedWithOptions(context.Background(), "text", &Options{Dimensions: 512})
	if err != nil {
		t.Fatalf("EmbedWithOptions() error = %v", err)
	}

	if _, present := raw["dimensions"]; present {
		t.Error("dimensions must never reach the Ollama wire format")
	}
}
