package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cfg.SearchHost.Value != "http://127.0.0.1:8000" || cfg.SearchHost.Source != SourceDefault {
		t.Errorf("SearchHost = %+v", cfg.SearchHost)
	}
	if cfg.QdrantHost.Value != "http://localhost:6333" {
		t.Errorf("QdrantHost = %+v", cfg.QdrantHost)
	}
	if cfg.Collection.Value != "earthquake_messages" {
		t.Errorf("Collection = %+v", cfg.Collection)
	}
	if cfg.Listen.Value != ":7480" {
		t.Errorf("Listen = %+v", cfg.Listen)
	}
}

func TestResolveFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `search_host: http://search.internal:9000
listen: ":8080"
data:
  csv: /srv/data/messages.csv
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cfg.SearchHost.Value != "http://search.internal:9000" || cfg.SearchHost.Source != SourceConfig {
		t.Errorf("SearchHost = %+v", cfg.SearchHost)
	}
	if cfg.SearchHost.From != path {
		t.Errorf("SearchHost.From = %q, want the config path", cfg.SearchHost.From)
	}
	if cfg.CSVPath.Value != "/srv/data/messages.csv" {
		t.Errorf("CSVPath = %+v", cfg.CSVPath)
	}
	// Untouched keys keep their defaults.
	if cfg.QdrantHost.Source != SourceDefault {
		t.Errorf("QdrantHost = %+v", cfg.QdrantHost)
	}
}

func TestResolveCLIWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search_host: http://from-file:9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve(ResolveOptions{
		ConfigPath: path,
		CLISearch:  "http://from-cli:9001",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.SearchHost.Value != "http://from-cli:9001" || cfg.SearchHost.Source != SourceCLI {
		t.Errorf("SearchHost = %+v", cfg.SearchHost)
	}
}

func TestResolveDataDir(t *testing.T) {
	cfg, err := Resolve(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "absent.yaml"),
		CLIDataDir: "/mnt/quake",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.CSVPath.Value != filepath.Join("/mnt/quake", "YInt_w_label.csv") {
		t.Errorf("CSVPath = %+v", cfg.CSVPath)
	}
	if cfg.TaxonomyPath.Value != filepath.Join("/mnt/quake", "categories.json") {
		t.Errorf("TaxonomyPath = %+v", cfg.TaxonomyPath)
	}
	if cfg.CSVPath.Source != SourceCLI {
		t.Errorf("CSVPath.Source = %q", cfg.CSVPath.Source)
	}
}

func TestResolveMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{search_host: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(ResolveOptions{ConfigPath: path}); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
