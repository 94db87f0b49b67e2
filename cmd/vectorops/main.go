// Package main provides the vectorops CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orneryd/vectorops/pkg/cluster"
	"github.com/orneryd/vectorops/pkg/config"
	"github.com/orneryd/vectorops/pkg/embed"
	"github.com/orneryd/vectorops/pkg/engine"
	"github.com/orneryd/vectorops/pkg/server"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vectorops",
		Short: "vectorops - Embedding generation and vector clustering service",
		Long: `vectorops turns text into embeddings and analyzes vector batches,
exposed over a single HTTP endpoint or as one-shot CLI commands.

Features:
  • OpenAI and Ollama embedding providers
  • Content sanitization with a fixed character budget
  • k-means clustering with per-cluster quality statistics
  • Query embedding for caller-side similarity ranking`,
	}

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vectorops v%s (%s)\n", version, commit)
		},
	})

	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the vectorops HTTP server",
		Long:  "Start the HTTP server exposing POST /vector-ops plus /health and /status",
		RunE:  runServe,
	}
	serveCmd.Flags().String("config", "", "YAML config file overlaid on the environment")
	serveCmd.Flags().String("address", "", "Bind address (default from config)")
	serveCmd.Flags().Int("http-port", 0, "HTTP port (default from config)")
	serveCmd.Flags().String("provider", "", "Embedding provider: openai or ollama")
	serveCmd.Flags().String("embedding-url", "", "Embedding API URL")
	serveCmd.Flags().String("embedding-model", "", "Embedding model name")
	serveCmd.Flags().Int("embedding-dim", 0, "Embedding dimensions")
	rootCmd.AddCommand(serveCmd)

	// Embed command (one-shot)
	embedCmd := &cobra.Command{
		Use:   "embed [text]",
		Short: "Generate an embedding for a piece of text",
		Args:  cobra.ExactArgs(1),
		RunE:  runEmbed,
	}
	embedCmd.Flags().String("config", "", "YAML config file overlaid on the environment")
	embedCmd.Flags().String("model", "", "Model override for this request")
	embedCmd.Flags().Int("dimensions", 0, "Requested dimensions (models that support it)")
	rootCmd.AddCommand(embedCmd)

	// Cluster command (one-shot)
	clusterCmd := &cobra.Command{
		Use:   "cluster [file]",
		Short: "Cluster a JSON array of embeddings from a file or stdin",
		Long: `Cluster reads a JSON array of float vectors ([[0.1,0.2],...]) from the
given file, or from stdin when the argument is "-", and prints the
cluster analysis as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: runCluster,
	}
	clusterCmd.Flags().IntP("clusters", "k", 0, "Number of clusters (0 picks automatically)")
	clusterCmd.Flags().Int("max-iterations", 100, "Iteration cap per run")
	rootCmd.AddCommand(clusterCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration: environment first, then the
// optional YAML file, then any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.LoadFromEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("address") {
		cfg.Server.Address, _ = cmd.Flags().GetString("address")
	}
	if cmd.Flags().Changed("http-port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("http-port")
	}
	if cmd.Flags().Changed("provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("provider")
	}
	if cmd.Flags().Changed("embedding-url") {
		cfg.Embedding.APIURL, _ = cmd.Flags().GetString("embedding-url")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-dim") {
		cfg.Embedding.Dimensions, _ = cmd.Flags().GetInt("embedding-dim")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEmbedder wires an embedding provider from the effective configuration.
func newEmbedder(cfg *config.Config) (embed.Embedder, error) {
	var embedCfg *embed.Config
	switch cfg.Embedding.Provider {
	case "ollama":
		embedCfg = embed.DefaultOllamaConfig()
	default:
		embedCfg = embed.DefaultOpenAIConfig(cfg.Embedding.APIKey)
	}

	if cfg.Embedding.Model != "" {
		embedCfg.Model = cfg.Embedding.Model
	}
	if cfg.Embedding.APIURL != "" {
		embedCfg.APIURL = cfg.Embedding.APIURL
	}
	if cfg.Embedding.Dimensions > 0 {
		embedCfg.Dimensions = cfg.Embedding.Dimensions
	}
	embedCfg.Timeout = cfg.Embedding.Timeout

	return embed.New(embedCfg)
}

func newEngine(cfg *config.Config) (*engine.Engine, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return engine.New(embedder, &engine.Config{
		Cluster: &cluster.Config{MaxIterations: cfg.Cluster.MaxIterations},
	}), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("🚀 Starting vectorops v%s\n", version)
	fmt.Printf("   Provider:   %s\n", cfg.Embedding.Provider)
	if cfg.Embedding.Model != "" {
		fmt.Printf("   Model:      %s\n", cfg.Embedding.Model)
	}
	fmt.Printf("   HTTP API:   http://%s:%d\n", cfg.Server.Address, cfg.Server.Port)
	fmt.Println()

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Address = cfg.Server.Address
	serverConfig.Port = cfg.Server.Port
	serverConfig.MaxRequestSize = cfg.Server.MaxRequestSize
	serverConfig.EnableCORS = cfg.Server.CORSEnabled
	serverConfig.CORSOrigins = cfg.Server.CORSOrigins

	httpServer, err := server.New(eng, serverConfig)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	fmt.Println("✅ vectorops is ready!")
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Printf("  • Operations:   POST http://localhost:%d/vector-ops\n", cfg.Server.Port)
	fmt.Printf("  • Health:       http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("  • Status:       http://localhost:%d/status\n", cfg.Server.Port)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Block until shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}

	fmt.Println("✅ Server stopped gracefully")
	return nil
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	model, _ := cmd.Flags().GetString("model")
	dimensions, _ := cmd.Flags().GetInt("dimensions")
	var opts *embed.Options
	if model != "" || dimensions > 0 {
		opts = &embed.Options{Model: model, Dimensions: dimensions}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Embedding.Timeout)
	defer cancel()

	resp, err := eng.GenerateEmbedding(ctx, &engine.GenerateRequest{
		Content: args[0],
		Options: opts,
	})
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func runCluster(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading embeddings: %w", err)
	}

	var embeddings [][]float32
	if err := json.Unmarshal(data, &embeddings); err != nil {
		return fmt.Errorf("parsing embeddings (expected JSON array of float vectors): %w", err)
	}

	k, _ := cmd.Flags().GetInt("clusters")
	maxIterations, _ := cmd.Flags().GetInt("max-iterations")

	// No provider needed for pure clustering; build the engine directly.
	eng := engine.New(nil, &engine.Config{
		Cluster: &cluster.Config{MaxIterations: maxIterations},
	})

	resp, err := eng.ClusterAnalysis(context.Background(), &engine.ClusterRequest{
		Embeddings: embeddings,
		K:          k,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Clustered %d vectors into %d clusters\n",
		resp.TotalPoints, resp.NumClusters)
	return printJSON(resp)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimRight(string(out), "\n"))
	return nil
}
