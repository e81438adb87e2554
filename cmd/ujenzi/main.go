// Package main is the Ujenzi CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/umoja/ujenzi/internal/assistant"
	"github.com/umoja/ujenzi/internal/cli"
	"github.com/umoja/ujenzi/internal/config"
	"github.com/umoja/ujenzi/internal/images"
	"github.com/umoja/ujenzi/internal/llm"
	"github.com/umoja/ujenzi/internal/models"
	"github.com/umoja/ujenzi/internal/server"
	"github.com/umoja/ujenzi/internal/storage"
	"github.com/umoja/ujenzi/internal/watcher"
	"github.com/umoja/ujenzi/internal/worldpop"
	"github.com/umoja/ujenzi/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ujenzi/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "ujenzi server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Optional .env for OPENAI_API_KEY; real environment variables win.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("ujenzi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, watcher events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Enabled {
		watchSvc, err := startWatcher(watchCtx, cfg, components, logger, debugMode)
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(components.Engine, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// startWatcher watches the knowledge artifact and image catalog and hot
// reloads whichever one changed.
func startWatcher(ctx context.Context, cfg *config.Config, components *Components, logger *zap.Logger, debug bool) (*watcher.Watcher, error) {
	artifactPath, err := filepath.Abs(cfg.Knowledge.BasePath)
	if err != nil {
		return nil, err
	}
	catalogPath, err := filepath.Abs(cfg.Images.CatalogPath)
	if err != nil {
		return nil, err
	}

	onChange := func(path string) {
		switch path {
		case artifactPath:
			components.Cache.Invalidate()
			logger.Info("knowledge artifact changed, cache invalidated", zap.String("path", path))
		case catalogPath:
			catalog, skipped, err := images.LoadCatalog(path)
			if err != nil {
				logger.Warn("image catalog reload failed", zap.String("path", path), zap.Error(err))
				return
			}
			if skipped > 0 {
				logger.Warn("image catalog has malformed entries", zap.String("path", path), zap.Int("skipped", skipped))
			}
			components.Engine.ReplaceCatalog(catalog)
			logger.Info("image catalog reloaded", zap.String("path", path), zap.Int("articles", len(catalog)))
		}
	}

	watchOpts := []watcher.WatcherOption{
		watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS) * time.Millisecond),
	}
	if debug {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher([]string{artifactPath, catalogPath}, onChange, watchOpts...)
	if err := watchSvc.Start(ctx); err != nil {
		return nil, err
	}
	return watchSvc, nil
}

// printAskUsage prints ask subcommand usage.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: ujenzi ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces. Multi-word questions work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  ujenzi ask where are new clinics needed in Nairobi
  ujenzi ask "How should Accra prepare for flooding?"   # same as above
  ujenzi ask --top-k 8 --output json water access in Accra
  ujenzi ask --server "" local question without the server   # requires OPENAI_API_KEY
`)
}

// buildQuestion joins all positional args with spaces so multi-word
// questions work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument, so
// "ujenzi ask \"question\" -top-k 8" would otherwise leave -top-k unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseOutputFormat maps the -output flag to a cli format, exiting on
// unknown values.
func parseOutputFormat(value string) cli.OutputFormat {
	switch value {
	case "json":
		return cli.OutputJSON
	case "text":
		return cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", value)
		os.Exit(1)
		return cli.OutputText
	}
}

func runAsk() {
	askArgs := argsReorder(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for local mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = answer locally without the server)")
	topK := fs.Int("top-k", 0, "number of context chunks (0 = default)")
	maxImages := fs.Int("images", 0, "max suggested figures (0 = default)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		printAskUsage(fs)
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}
	format := parseOutputFormat(*outputFormat)

	req := &models.AskRequest{Question: question, TopK: *topK, MaxImages: *maxImages}

	if *serverURL != "" {
		bundle, err := askViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, bundle, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Local mode (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	bundle, err := components.Engine.Ask(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, bundle, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, req *models.AskRequest) (*models.AnswerBundle, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var bundle models.AnswerBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &bundle, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for local mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read artifacts directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseOutputFormat(*outputFormat)

	var status *models.AssistantStatus
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	} else {
		// Local mode reads the artifacts directly; it needs no model API key.
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		stats, err := storage.NewFileStore(cfg.Knowledge.BasePath).Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = &models.AssistantStatus{
			Chunks:        stats.Chunks,
			UniqueSources: stats.UniqueSources,
			ArtifactBytes: stats.ArtifactBytes,
		}
		if catalog, _, err := images.LoadCatalog(cfg.Images.CatalogPath); err == nil {
			catalogStats := images.Stats(catalog)
			status.Articles = catalogStats.Articles
			status.Images = catalogStats.Images
		}
	}

	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*models.AssistantStatus, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var status models.AssistantStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}

// Components holds initialized services.
type Components struct {
	Store  storage.Store
	Cache  *storage.CachedStore // non-nil only when watch mode caches loads
	Engine *assistant.Engine
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	openaiClient, err := llm.NewOpenAIClient(
		os.Getenv("OPENAI_API_KEY"),
		cfg.Model.ChatModel,
		cfg.Model.EmbeddingModel,
		llm.WithTimeout(time.Duration(cfg.Model.RequestTimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model client: %w", err)
	}

	components := &Components{}
	components.Store = storage.NewFileStore(cfg.Knowledge.BasePath)
	if cfg.Watch.Enabled {
		// Reload-per-question is the default; with the watcher keeping the
		// cache honest we can skip re-reading the artifact on every ask.
		components.Cache = storage.NewCachedStore(components.Store)
		components.Store = components.Cache
	}

	engineOpts := []assistant.EngineOption{
		assistant.WithLogger(logger),
		assistant.WithPopulationClient(worldpop.NewClient(
			cfg.Population.BaseURL,
			time.Duration(cfg.Population.TimeoutSeconds)*time.Second,
		)),
	}
	catalog, skipped, err := images.LoadCatalog(cfg.Images.CatalogPath)
	if err != nil {
		logger.Warn("image catalog unavailable, figure suggestions disabled",
			zap.String("path", cfg.Images.CatalogPath),
			zap.Error(err))
	} else {
		if skipped > 0 {
			logger.Warn("image catalog has malformed entries",
				zap.String("path", cfg.Images.CatalogPath),
				zap.Int("skipped", skipped))
		}
		engineOpts = append(engineOpts, assistant.WithImageCatalog(catalog, cfg.Images.Dir))
		logger.Info("image catalog loaded",
			zap.String("path", cfg.Images.CatalogPath),
			zap.Int("articles", len(catalog)))
	}

	components.Engine = assistant.NewEngine(
		components.Store,
		openaiClient,
		openaiClient,
		cfg,
		engineOpts...,
	)
	return components, nil
}

func printUsage() {
	fmt.Println(`ujenzi - Urban planning knowledge assistant

Usage:
  ujenzi server [flags]            Start the HTTP API server
  ujenzi ask [flags] <question>    Ask a question against the knowledge base
  ujenzi status [flags]            Show knowledge base and catalog status
  ujenzi version                   Show version
  ujenzi help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/ujenzi/config.yaml)
  --debug            Enable debug logging (requests, watcher events, etc.)

Ask Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to answer locally when the server is not running.
  --top-k int        Number of context chunks to retrieve (default: 5, max 20)
  --images int       Max suggested figures (default: 2, max 10)
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for local mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to read artifacts directly.
  --output string    Output format: text or json (default: text)

Environment:
  OPENAI_API_KEY     Required by the server and by local ask mode. Read from
                     the environment or a .env file in the working directory.

Examples:
  ujenzi server
  ujenzi ask "Where are new clinics needed in Nairobi?"
  ujenzi ask --top-k 8 water access in Accra
  ujenzi ask --output json "flood response in Ghana"   # structured JSON for other apps
  ujenzi status
  ujenzi status --output json`)
}
