package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/OFFIS-RIT/rhetorik/internal/app"
	"github.com/OFFIS-RIT/rhetorik/internal/util"
	"github.com/OFFIS-RIT/rhetorik/pkg/ai"
	"github.com/OFFIS-RIT/rhetorik/pkg/ai/ollama"
	"github.com/OFFIS-RIT/rhetorik/pkg/ai/openai"
	"github.com/OFFIS-RIT/rhetorik/pkg/analyzer"
	"github.com/OFFIS-RIT/rhetorik/pkg/cache"
	"github.com/OFFIS-RIT/rhetorik/pkg/loader/web"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger/console"
)

const (
	defaultAnalysisModel = "gpt-4.1"
	defaultExtractModel  = "gpt-4.1-mini"
	defaultMaxEntryBytes = 5 << 20
)

// dataDir returns ~/.rhetorik/, creating it if needed.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		logger.Fatal("Failed to get home directory", "err", err)
	}
	dir := filepath.Join(home, ".rhetorik")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Fatal("Failed to create data directory", "dir", dir, "err", err)
	}
	return dir
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// initLogger loads the environment and logs to stderr.
func initLogger() {
	util.LoadEnv()
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
	}))
}

func newAIClient() (ai.Client, error) {
	model := util.GetEnvString("AI_ANALYSIS_MODEL", defaultAnalysisModel)

	switch adapter := util.GetEnvString("AI_ADAPTER", "openai"); adapter {
	case "ollama":
		client, err := ollama.NewOllamaClient(ollama.NewOllamaClientParams{
			Model:   model,
			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		client, err := openai.NewOpenAIClient(openai.NewOpenAIClientParams{
			Model:      model,
			ChatURL:    util.GetEnv("AI_CHAT_URL"),
			ChatKey:    util.GetEnv("AI_CHAT_KEY"),
			MaxRetries: -1,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", adapter)
	}
}

func openCache(ctx context.Context) (cache.Cache, error) {
	maxEntry := int(util.GetEnvNumeric("CACHE_MAX_ENTRY_BYTES", defaultMaxEntryBytes))

	switch backend := util.GetEnvString("CACHE_BACKEND", "sqlite"); backend {
	case "memory":
		return cache.NewMemory(maxEntry), nil
	case "sqlite":
		path := util.GetEnvString("CACHE_PATH", "")
		if path == "" {
			path = filepath.Join(dataDir(), "cache.db")
		}
		c, err := cache.OpenSQLite(path, maxEntry)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "postgres":
		dsn := util.GetEnv("DATABASE_URL")
		if dsn == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres cache")
		}
		c, err := cache.OpenPostgres(ctx, dsn, maxEntry)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", backend)
	}
}

// newPipeline wires the model client, the cache, the extractor and the
// analyzer. The returned cache must be closed by the caller.
func newPipeline(ctx context.Context) (*app.Pipeline, cache.Cache, error) {
	client, err := newAIClient()
	if err != nil {
		return nil, nil, fmt.Errorf("create model client: %w", err)
	}
	c, err := openCache(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}

	extractor := web.NewExtractor(client,
		web.WithModel(util.GetEnvString("AI_EXTRACT_MODEL", defaultExtractModel)),
		web.WithCache(c),
	)
	an := analyzer.New(client,
		analyzer.WithModel(util.GetEnvString("AI_ANALYSIS_MODEL", defaultAnalysisModel)),
		analyzer.WithThinking(util.GetEnv("AI_THINKING")),
		analyzer.WithCache(c),
	)
	return app.NewPipeline(extractor, an), c, nil
}

// inputFlags are the article source flags shared by analyze and graph.
type inputFlags struct {
	url     *string
	text    *string
	file    *string
	example *bool
}

func registerInputFlags(fs *flag.FlagSet) inputFlags {
	return inputFlags{
		url:     fs.String("url", "", "Article URL"),
		text:    fs.String("text", "", "Article text"),
		file:    fs.String("file", "", "Read the article text from a file (- for stdin)"),
		example: fs.Bool("example", false, "Analyze the built-in demo article"),
	}
}

func (f inputFlags) input() (app.Input, error) {
	switch {
	case *f.example:
		return app.ExampleInput(), nil
	case *f.url != "":
		return app.URLInput(*f.url), nil
	case *f.text != "":
		return app.TextInput(*f.text), nil
	case *f.file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return app.Input{}, fmt.Errorf("read stdin: %w", err)
		}
		return app.TextInput(string(data)), nil
	case *f.file != "":
		data, err := os.ReadFile(*f.file)
		if err != nil {
			return app.Input{}, fmt.Errorf("read %s: %w", *f.file, err)
		}
		return app.TextInput(string(data)), nil
	}
	return app.Input{}, errors.New("one of -url, -text, -file or -example is required")
}
