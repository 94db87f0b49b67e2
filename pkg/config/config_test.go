package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Embedding.Provider != "openai" {
		t.Errorf("default provider = %q, want openai", cfg.Embedding.Provider)
	}
	if cfg.Server.Port != 8787 {
		t.Errorf("default port = %d, want 8787", cfg.Server.Port)
	}
	if cfg.Cluster.MaxIterations != 100 {
		t.Errorf("default max iterations = %d, want 100", cfg.Cluster.MaxIterations)
	}
	if cfg.Embedding.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", cfg.Embedding.Timeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VECTOROPS_EMBEDDING_PROVIDER", "ollama")
	t.Setenv("VECTOROPS_EMBEDDING_MODEL", "mxbai-embed-large")
	t.Setenv("VECTOROPS_EMBEDDING_TIMEOUT", "45s")
	t.Setenv("VECTOROPS_HTTP_PORT", "9000")
	t.Setenv("VECTOROPS_HTTP_MAX_REQUEST_SIZE", "1MB")
	t.Setenv("VECTOROPS_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VECTOROPS_KMEANS_MAX_ITERATIONS", "50")

	cfg := LoadFromEnv()

	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "mxbai-embed-large" {
		t.Errorf("model = %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Timeout != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", cfg.Embedding.Timeout)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Server.MaxRequestSize != 1024*1024 {
		t.Errorf("max request size = %d, want 1MB", cfg.Server.MaxRequestSize)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != "https://a.example" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Cluster.MaxIterations != 50 {
		t.Errorf("max iterations = %d, want 50", cfg.Cluster.MaxIterations)
	}
}

func TestLoadFromEnv_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("VECTOROPS_EMBEDDING_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-from-openai-env")

	cfg := LoadFromEnv()
	if cfg.Embedding.APIKey != "sk-from-openai-env" {
		t.Errorf("expected OPENAI_API_KEY fallback, got %q", cfg.Embedding.APIKey)
	}

	t.Setenv("VECTOROPS_EMBEDDING_API_KEY", "sk-explicit")
	cfg = LoadFromEnv()
	if cfg.Embedding.APIKey != "sk-explicit" {
		t.Errorf("explicit key should win, got %q", cfg.Embedding.APIKey)
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectorops.yaml")
	content := `
embedding:
  provider: ollama
  model: nomic-embed-text
  api_url: http://ollama:11434
  timeout: 2m
server:
  port: 9100
  cors_enabled: false
cluster:
  max_iterations: 25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg := Default()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile() error = %v", err)
	}

	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Embedding.Provider)
	}
	if cfg.Embedding.APIURL != "http://ollama:11434" {
		t.Errorf("api_url = %q", cfg.Embedding.APIURL)
	}
	if cfg.Embedding.Timeout != 2*time.Minute {
		t.Errorf("timeout = %v, want 2m", cfg.Embedding.Timeout)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Server.CORSEnabled {
		t.Error("cors_enabled: false should override the default")
	}
	if cfg.Cluster.MaxIterations != 25 {
		t.Errorf("max_iterations = %d, want 25", cfg.Cluster.MaxIterations)
	}

	// Fields the file does not mention keep their defaults.
	if cfg.Server.Address != "0.0.0.0" {
		t.Errorf("address should keep default, got %q", cfg.Server.Address)
	}
	if cfg.Server.MaxRequestSize != 10*1024*1024 {
		t.Errorf("max request size should keep default, got %d", cfg.Server.MaxRequestSize)
	}
}

func TestApplyFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg := Default()
		if err := cfg.ApplyFile("/does/not/exist.yaml"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("embedding:\n  timeout: soon\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		cfg := Default()
		if err := cfg.ApplyFile(path); err == nil {
			t.Error("expected error for unparseable duration")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Embedding.APIKey = "sk-test"
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := valid()
		cfg.Embedding.Provider = "anthropic"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("openai without key", func(t *testing.T) {
		cfg := valid()
		cfg.Embedding.APIKey = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing API key")
		}
	})

	t.Run("ollama without key is fine", func(t *testing.T) {
		cfg := valid()
		cfg.Embedding.Provider = "ollama"
		cfg.Embedding.APIKey = ""
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("bad values", func(t *testing.T) {
		cases := []func(*Config){
			func(c *Config) { c.Embedding.Dimensions = 0 },
			func(c *Config) { c.Embedding.Timeout = 0 },
			func(c *Config) { c.Server.Port = -1 },
			func(c *Config) { c.Server.Port = 70000 },
			func(c *Config) { c.Server.MaxRequestSize = 0 },
			func(c *Config) { c.Cluster.MaxIterations = 0 },
		}
		for i, mutate := range cases {
			cfg := valid()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("case %d: expected validation error", i)
			}
		}
	})
}

func TestString_RedactsKey(t *testing.T) {
	cfg := Default()
	cfg.Embedding.APIKey = "sk-secret-value"

	out := cfg.String()
	if strings.Contains(out, "sk-secret-value") {
		t.Error("String() must not leak the API key")
	}
	if !strings.Contains(out, "redacted") {
		t.Errorf("String() should mark the key redacted: %s", out)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		in       string
		expected int64
	}{
		{"1024", 1024},
		{"1KB", 1024},
		{"10MB", 10 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"2m", 2 * 1024 * 1024},
		{"garbage", 42},
		{"", 42},
	}

	for _, tt := range tests {
		if got := parseByteSize(tt.in, 42); got != tt.expected {
			t.Errorf("parseByteSize(%q) = %d, want %d", tt.in, got, tt.expected)
		}
	}
}
