// Package config resolves quakeboard configuration from a YAML file and CLI
// flags, CLI winning. Each resolved value remembers where it came from so
// `quakeboard serve` can report its effective configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueSource names where a resolved value came from.
type ValueSource string

const (
	SourceConfig  ValueSource = "config"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a configuration value plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI overrides into resolution.
type ResolveOptions struct {
	ConfigPath string
	CLISearch  string
	CLIQdrant  string
	CLIListen  string
	CLIDataDir string
}

// ResolvedConfig is the fully resolved configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	SearchHost ResolvedValue `json:"search_host"`
	QdrantHost ResolvedValue `json:"qdrant_host"`
	Collection ResolvedValue `json:"collection"`
	Listen     ResolvedValue `json:"listen"`

	CSVPath      ResolvedValue `json:"csv_path"`
	TaxonomyPath ResolvedValue `json:"taxonomy_path"`
	GeoJSONPath  ResolvedValue `json:"geojson_path"`

	ModelPath ResolvedValue `json:"model_path"`
	VocabPath ResolvedValue `json:"vocab_path"`
}

type fileConfig struct {
	SearchHost string `yaml:"search_host"`
	QdrantHost string `yaml:"qdrant_host"`
	Collection string `yaml:"collection"`
	Listen     string `yaml:"listen"`
	Data       struct {
		CSV      string `yaml:"csv"`
		Taxonomy string `yaml:"taxonomy"`
		GeoJSON  string `yaml:"geojson"`
	} `yaml:"data"`
	Embed struct {
		Model string `yaml:"model"`
		Vocab string `yaml:"vocab"`
	} `yaml:"embed"`
}

// DefaultConfigPath is where Resolve looks when no path is given.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".quakeboard", "config.yaml")
}

// Resolve loads the YAML file (missing file is not an error), applies
// defaults, then applies CLI overrides.
func Resolve(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath:   path,
		SearchHost:   defaultValue("http://127.0.0.1:8000"),
		QdrantHost:   defaultValue("http://localhost:6333"),
		Collection:   defaultValue("earthquake_messages"),
		Listen:       defaultValue(":7480"),
		CSVPath:      defaultValue("data/YInt_w_label.csv"),
		TaxonomyPath: defaultValue("data/categories.json"),
		GeoJSONPath:  defaultValue("data/StHimark.geojson"),
		ModelPath:    defaultValue("models/all-MiniLM-L12-v2.onnx"),
		VocabPath:    defaultValue("models/tokenizer.json"),
	}

	cfg, err := loadFile(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.SearchHost, cfg.SearchHost, SourceConfig, path)
		apply(&out.QdrantHost, cfg.QdrantHost, SourceConfig, path)
		apply(&out.Collection, cfg.Collection, SourceConfig, path)
		apply(&out.Listen, cfg.Listen, SourceConfig, path)
		apply(&out.CSVPath, cfg.Data.CSV, SourceConfig, path)
		apply(&out.TaxonomyPath, cfg.Data.Taxonomy, SourceConfig, path)
		apply(&out.GeoJSONPath, cfg.Data.GeoJSON, SourceConfig, path)
		apply(&out.ModelPath, cfg.Embed.Model, SourceConfig, path)
		apply(&out.VocabPath, cfg.Embed.Vocab, SourceConfig, path)
	}

	apply(&out.SearchHost, opts.CLISearch, SourceCLI, "--search")
	apply(&out.QdrantHost, opts.CLIQdrant, SourceCLI, "--qdrant")
	apply(&out.Listen, opts.CLIListen, SourceCLI, "--listen")

	if dir := strings.TrimSpace(opts.CLIDataDir); dir != "" {
		apply(&out.CSVPath, filepath.Join(dir, "YInt_w_label.csv"), SourceCLI, "--data")
		apply(&out.TaxonomyPath, filepath.Join(dir, "categories.json"), SourceCLI, "--data")
		apply(&out.GeoJSONPath, filepath.Join(dir, "StHimark.geojson"), SourceCLI, "--data")
	}

	return out, nil
}

func defaultValue(v string) ResolvedValue {
	return ResolvedValue{Value: v, Source: SourceDefault, From: "built-in default"}
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func loadFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
