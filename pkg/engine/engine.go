// Package engine ties embedding generation and clustering together behind a
// typed operation boundary.
//
// The wire protocol selects an operation with an action string; inside the
// process that tag becomes one of three concrete request types
// (GenerateRequest, SimilarityRequest, ClusterRequest), each carrying only
// the fields that operation needs. This removes the class of "wrong field
// present for this action" bugs without changing wire compatibility — the
// transport layer maps the tag to the type and back.
//
// The engine is stateless: it holds an Embedder and a clustering config,
// nothing per-request. Every call receives all inputs as parameters and
// returns a fresh result, so one Engine can serve any number of concurrent
// requests.
//
// Example:
//
//	eng := engine.New(embedder, nil)
//
//	resp, err := eng.GenerateEmbedding(ctx, &engine.GenerateRequest{
//		Content: "two nights in Porto, ocean view",
//	})
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/orneryd/vectorops/pkg/cluster"
	"github.com/orneryd/vectorops/pkg/embed"
)

// Algorithm is the clustering algorithm identifier reported in results.
const Algorithm = "k-means"

// Errors for input validation. All wrap ErrInvalidInput, so
// errors.Is(err, ErrInvalidInput) identifies the whole class. Validation
// runs before any network call.
var (
	ErrInvalidInput      = errors.New("engine: invalid input")
	ErrMissingContent    = fmt.Errorf("%w: content is required", ErrInvalidInput)
	ErrMissingQuery      = fmt.Errorf("%w: query is required", ErrInvalidInput)
	ErrMissingEmbeddings = fmt.Errorf("%w: embeddings are required", ErrInvalidInput)
)

// Request is the sealed sum type over the three operations. Exactly
// GenerateRequest, SimilarityRequest and ClusterRequest implement it.
type Request interface {
	isRequest()
}

// Response is the sealed sum type over the three operation results.
type Response interface {
	isResponse()
}

// GenerateRequest asks for an embedding of arbitrary text content.
type GenerateRequest struct {
	// Content is the text to embed. Sanitized (whitespace collapsed,
	// truncated to the character budget) before it goes upstream; empty
	// after sanitization is a validation error.
	Content string
	// Options carries optional model/dimensions overrides.
	Options *embed.Options
}

// SimilarityRequest asks for the embedding of a search query. The engine
// returns the query vector only — ranking it against a corpus is the
// caller's job, since this engine keeps no corpus.
type SimilarityRequest struct {
	Query   string
	Options *embed.Options
}

// ClusterRequest asks for a k-means partition of a vector batch.
type ClusterRequest struct {
	// Embeddings is the in-memory batch to cluster. Must be non-empty;
	// all vectors must share one dimensionality.
	Embeddings [][]float32
	// K is the cluster count. Zero means pick automatically via
	// cluster.SuggestK; negative values produce the defined empty result.
	K int
}

func (*GenerateRequest) isRequest()   {}
func (*SimilarityRequest) isRequest() {}
func (*ClusterRequest) isRequest()    {}

// GenerateResponse is the result of embedding generation.
type GenerateResponse struct {
	Embedding     []float32    `json:"embedding"`
	ModelUsed     string       `json:"model_used"`
	Dimensions    int          `json:"dimensions"`
	ContentLength int          `json:"content_length"`
	Usage         *embed.Usage `json:"usage,omitempty"`
}

// SimilarityResponse carries the query embedding back to the caller.
type SimilarityResponse struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	Message        string    `json:"message"`
}

// ClusterResponse is the result of cluster analysis.
type ClusterResponse struct {
	Clusters    []cluster.ClusterInfo `json:"clusters"`
	NumClusters int                   `json:"num_clusters"`
	TotalPoints int                   `json:"total_points"`
	Algorithm   string                `json:"algorithm"`
}

func (*GenerateResponse) isResponse()   {}
func (*SimilarityResponse) isResponse() {}
func (*ClusterResponse) isResponse()    {}

// Config holds engine configuration.
type Config struct {
	// Cluster configures the k-means runs (nil uses cluster defaults).
	Cluster *cluster.Config
}

// Engine executes the three vector operations. Safe for concurrent use;
// holds no per-request state.
type Engine struct {
	embedder   embed.Embedder
	clusterCfg *cluster.Config
}

// New creates an engine around the given embedder. config may be nil.
func New(embedder embed.Embedder, config *Config) *Engine {
	e := &Engine{embedder: embedder}
	if config != nil {
		e.clusterCfg = config.Cluster
	}
	return e
}

// Do dispatches a typed request to the matching operation.
//
// Example:
//
//	var req engine.Request = &engine.ClusterRequest{Embeddings: batch}
//	resp, err := eng.Do(ctx, req)
//	clusters := resp.(*engine.ClusterResponse)
func (e *Engine) Do(ctx context.Context, req Request) (Response, error) {
	switch r := req.(type) {
	case *GenerateRequest:
		return e.GenerateEmbedding(ctx, r)
	case *SimilarityRequest:
		return e.SimilaritySearch(ctx, r)
	case *ClusterRequest:
		return e.ClusterAnalysis(ctx, r)
	default:
		return nil, fmt.Errorf("%w: unknown request type %T", ErrInvalidInput, req)
	}
}

// GenerateEmbedding sanitizes the content and turns it into a vector via
// the configured provider. Validation failures surface before any network
// call; upstream failures come back as *embed.UpstreamError (never retried
// here) or embed.ErrNoEmbedding.
func (e *Engine) GenerateEmbedding(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	clean := embed.Sanitize(req.Content)
	if clean == "" {
		return nil, ErrMissingContent
	}

	result, err := e.embedText(ctx, clean, req.Options)
	if err != nil {
		return nil, err
	}

	return &GenerateResponse{
		Embedding:     result.Vector,
		ModelUsed:     result.Model,
		Dimensions:    len(result.Vector),
		ContentLength: len(clean),
		Usage:         result.Usage,
	}, nil
}

// SimilaritySearch embeds the query string. Failure modes match
// GenerateEmbedding; the response message spells out that ranking is the
// caller's responsibility.
func (e *Engine) SimilaritySearch(ctx context.Context, req *SimilarityRequest) (*SimilarityResponse, error) {
	clean := embed.Sanitize(req.Query)
	if clean == "" {
		return nil, ErrMissingQuery
	}

	result, err := e.embedText(ctx, clean, req.Options)
	if err != nil {
		return nil, err
	}

	return &SimilarityResponse{
		QueryEmbedding: result.Vector,
		Message:        "query embedding generated; compare against your stored vectors to rank matches",
	}, nil
}

// ClusterAnalysis runs k-means over the supplied batch. Purely synchronous
// CPU work — no network calls. A missing batch is a validation error, but
// degenerate-yet-well-typed input (negative k) yields the defined empty
// result rather than failing.
func (e *Engine) ClusterAnalysis(_ context.Context, req *ClusterRequest) (*ClusterResponse, error) {
	if len(req.Embeddings) == 0 {
		return nil, ErrMissingEmbeddings
	}

	k := req.K
	if k == 0 {
		k = cluster.SuggestK(len(req.Embeddings))
	}

	result, err := cluster.KMeans(req.Embeddings, k, e.clusterCfg)
	if err != nil {
		return nil, err
	}

	return &ClusterResponse{
		Clusters:    result.Clusters,
		NumClusters: len(result.Clusters),
		TotalPoints: len(req.Embeddings),
		Algorithm:   Algorithm,
	}, nil
}

// embedText calls the provider, preferring per-request options when the
// provider supports them.
func (e *Engine) embedText(ctx context.Context, text string, opts *embed.Options) (*embed.Embedding, error) {
	if oe, ok := e.embedder.(embed.OptionsEmbedder); ok {
		return oe.EmbedWithOptions(ctx, text, opts)
	}

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return &embed.Embedding{
		Vector: vec,
		Model:  e.embedder.Model(),
	}, nil
}
