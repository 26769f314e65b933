package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no stray gateway.yaml is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen addr: got %q", cfg.ListenAddr)
	}
	if cfg.RAGBaseURL != "http://127.0.0.1:8001" {
		t.Errorf("rag base url: got %q", cfg.RAGBaseURL)
	}
	if cfg.RAGTimeout != 30*time.Second {
		t.Errorf("rag timeout: got %v", cfg.RAGTimeout)
	}
	if cfg.CallTimeout != 30*time.Second {
		t.Errorf("call timeout: got %v", cfg.CallTimeout)
	}
	if cfg.Flags.RAGRequired {
		t.Error("rag_required should default to false")
	}
	if !cfg.Flags.UseRAGFirst {
		t.Error("use_rag_first should default to true")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	yaml := `
listen_addr: ":9090"
rag:
  base_url: "http://rag.internal:8001"
  timeout: 5s
cloud:
  api_key: "file-key"
  model: "gpt-4o"
journal_path: "/var/lib/gateway/decisions.db"
flags:
  rag_required: true
  use_rag_first: false
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen addr: got %q", cfg.ListenAddr)
	}
	if cfg.RAGBaseURL != "http://rag.internal:8001" {
		t.Errorf("rag base url: got %q", cfg.RAGBaseURL)
	}
	if cfg.RAGTimeout != 5*time.Second {
		t.Errorf("rag timeout: got %v", cfg.RAGTimeout)
	}
	if cfg.CloudAPIKey != "file-key" {
		t.Errorf("cloud key: got %q", cfg.CloudAPIKey)
	}
	if cfg.CloudModel != "gpt-4o" {
		t.Errorf("cloud model: got %q", cfg.CloudModel)
	}
	if cfg.JournalPath != "/var/lib/gateway/decisions.db" {
		t.Errorf("journal path: got %q", cfg.JournalPath)
	}
	if !cfg.Flags.RAGRequired || cfg.Flags.UseRAGFirst {
		t.Errorf("flags: %+v", cfg.Flags)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GATEWAY_LISTEN_ADDR", ":7070")
	t.Setenv("GATEWAY_RAG_BASE_URL", "http://env-rag:8001")
	t.Setenv("GATEWAY_FLAGS_RAG_REQUIRED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("listen addr: got %q", cfg.ListenAddr)
	}
	if cfg.RAGBaseURL != "http://env-rag:8001" {
		t.Errorf("rag base url: got %q", cfg.RAGBaseURL)
	}
	if !cfg.Flags.RAGRequired {
		t.Error("env override for rag_required not applied")
	}
}

func TestLoad_OpenAIKeyFallback(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-fallback")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CloudAPIKey != "sk-fallback" {
		t.Errorf("cloud key: got %q, want fallback", cfg.CloudAPIKey)
	}
}

func TestLoad_ExplicitKeyBeatsFallback(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	t.Setenv("GATEWAY_CLOUD_API_KEY", "sk-explicit")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CloudAPIKey != "sk-explicit" {
		t.Errorf("cloud key: got %q, want explicit", cfg.CloudAPIKey)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
