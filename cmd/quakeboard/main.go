package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sthimark/quakeboard/internal/config"
	"github.com/sthimark/quakeboard/internal/dashboard"
	"github.com/sthimark/quakeboard/internal/embed"
	"github.com/sthimark/quakeboard/internal/index"
	"github.com/sthimark/quakeboard/internal/logging"
	qmcp "github.com/sthimark/quakeboard/internal/mcp"
	"github.com/sthimark/quakeboard/internal/source"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "index":
		if err := runIndex(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "--version", "-v":
		fmt.Printf("quakeboard %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

type commonFlags struct {
	configPath string
	search     string
	qdrant     string
	listen     string
	dataDir    string
	logLevel   string
	logJSON    bool
}

func parseCommon(args []string) (commonFlags, []string, error) {
	var f commonFlags
	var rest []string

	i := 0
	next := func(flag string) (string, error) {
		i++
		if i >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[i], nil
	}

	for ; i < len(args); i++ {
		arg := args[i]
		var err error
		switch arg {
		case "--config":
			f.configPath, err = next(arg)
		case "--search":
			f.search, err = next(arg)
		case "--qdrant":
			f.qdrant, err = next(arg)
		case "--listen":
			f.listen, err = next(arg)
		case "--data":
			f.dataDir, err = next(arg)
		case "--log-level":
			f.logLevel, err = next(arg)
		case "--log-json":
			f.logJSON = true
		default:
			if strings.HasPrefix(arg, "-") {
				return f, nil, fmt.Errorf("unknown flag: %s", arg)
			}
			rest = append(rest, arg)
		}
		if err != nil {
			return f, nil, err
		}
	}
	return f, rest, nil
}

func resolve(f commonFlags) (config.ResolvedConfig, error) {
	return config.Resolve(config.ResolveOptions{
		ConfigPath: f.configPath,
		CLISearch:  f.search,
		CLIQdrant:  f.qdrant,
		CLIListen:  f.listen,
		CLIDataDir: f.dataDir,
	})
}

func buildEngine(cfg config.ResolvedConfig, logger *slog.Logger) (*dashboard.Engine, error) {
	return dashboard.NewEngine(dashboard.Config{
		SearchHost:   cfg.SearchHost.Value,
		QdrantHost:   cfg.QdrantHost.Value,
		Collection:   cfg.Collection.Value,
		CSVPath:      cfg.CSVPath.Value,
		TaxonomyPath: cfg.TaxonomyPath.Value,
		GeoJSONPath:  cfg.GeoJSONPath.Value,
		Logger:       logger,
	})
}

func runServe(args []string) error {
	f, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	logging.Init(f.logJSON, logging.ParseLevel(f.logLevel))
	logger := slog.Default()

	cfg, err := resolve(f)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	engine.Prime(context.Background())

	logger.Info("quakeboard serving",
		"listen", cfg.Listen.Value,
		"search", cfg.SearchHost.Value,
		"qdrant", cfg.QdrantHost.Value,
		"collection", cfg.Collection.Value,
	)
	return http.ListenAndServe(cfg.Listen.Value, dashboard.NewServer(engine))
}

func runIndex(args []string) error {
	f, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	logging.Init(f.logJSON, logging.ParseLevel(f.logLevel))
	logger := slog.Default()

	cfg, err := resolve(f)
	if err != nil {
		return err
	}

	embedder, err := embed.NewMiniLM(cfg.ModelPath.Value, cfg.VocabPath.Value)
	if err != nil {
		return fmt.Errorf("loading embedding model: %w", err)
	}
	defer embedder.Close()

	pipeline := &index.Pipeline{
		CSV:      &source.CSVSource{Path: cfg.CSVPath.Value},
		Embedder: embedder,
		Indexer: &index.QdrantIndexer{
			Host:       cfg.QdrantHost.Value,
			Collection: cfg.Collection.Value,
		},
		Logger: logger,
	}

	stats, err := pipeline.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d of %d messages in %d batches\n", stats.Indexed, stats.Loaded, stats.Batches)
	return nil
}

func runMCP(args []string) error {
	f, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	// stdio transport owns stdout, so logs must stay on stderr.
	logging.Init(f.logJSON, logging.ParseLevel(f.logLevel))
	logger := slog.Default()

	cfg, err := resolve(f)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	engine.Prime(context.Background())

	return server.ServeStdio(qmcp.NewServer(engine, version))
}

func printUsage() {
	fmt.Printf(`quakeboard %s — filter-propagation engine for the St. Himark earthquake dashboard

Usage:
  quakeboard <command> [flags]

Commands:
  serve               Serve the dashboard API over HTTP
  index               Embed the message corpus and upsert it into Qdrant
  mcp                 Expose the dashboard as MCP tools over stdio
  version             Print version

Flags:
  --config <path>     Config file (default ~/.quakeboard/config.yaml)
  --search <url>      Vector search service base URL
  --qdrant <url>      Qdrant base URL
  --listen <addr>     HTTP listen address (serve only)
  --data <dir>        Directory holding the CSV, taxonomy, and GeoJSON files
  --log-level <lvl>   debug, info, warn, or error
  --log-json          Emit JSON logs
  -h, --help          Show this help message
  -v, --version       Print version
`, version)
}
