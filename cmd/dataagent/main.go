// Command dataagent is a chat front end for three data-management agents
// (pipeline, warehouse and mart) sharing one SQLite database.
//
// Usage:
//
//	GEMINI_API_KEY=gk-... dataagent [flags]
//
// Flags:
//
//	-db string       Database URL (default: $DATABASE_URL or sqlite:///data/prototype.db)
//	-model string    Model ID (default: provider default)
//	-api-key string  API key (overrides GEMINI_API_KEY)
//	-agent string    Agent for -prompt: pipeline, warehouse, mart (default "pipeline")
//	-prompt string   Run one turn, print the result and exit
//	-init            Create the prototype tables
//	-log string      Log file (default "data/dataagent.log", empty disables)
//	-trace string    Write trace spans as JSON to this file
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fwojciec/dataagent"
	bt "github.com/fwojciec/dataagent/bubbletea"
	"github.com/fwojciec/dataagent/sqlite"
	"github.com/fwojciec/dataagent/telemetry"
)

const defaultLogPath = "data/dataagent.log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dataagent: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	db      string
	model   string
	apiKey  string
	agent   string
	prompt  string
	init    bool
	logPath string
	trace   string
}

// parseFlags parses args into options. envDB is the DATABASE_URL value.
func parseFlags(args []string, envDB string) (options, error) {
	defaultDB := dataagent.DefaultDatabaseURL
	if envDB != "" {
		defaultDB = envDB
	}

	var o options
	fs := flag.NewFlagSet("dataagent", flag.ContinueOnError)
	fs.StringVar(&o.db, "db", defaultDB, "Database URL")
	fs.StringVar(&o.model, "model", "", "Model ID (provider default if empty)")
	fs.StringVar(&o.apiKey, "api-key", "", "API key (overrides GEMINI_API_KEY)")
	fs.StringVar(&o.agent, "agent", "pipeline", "Agent for -prompt: pipeline, warehouse, mart")
	fs.StringVar(&o.prompt, "prompt", "", "Run one turn, print the result and exit")
	fs.BoolVar(&o.init, "init", false, "Create the prototype tables")
	fs.StringVar(&o.logPath, "log", defaultLogPath, "Log file (empty disables logging)")
	fs.StringVar(&o.trace, "trace", "", "Write trace spans as JSON to this file")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func run() error {
	opts, err := parseFlags(os.Args[1:], os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := dataagent.DefaultConfig()
	cfg.DatabaseURL = opts.db
	cfg.Model = opts.model
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(opts.logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	var traceOut io.Writer
	if opts.trace != "" {
		f, err := createFile(opts.trace)
		if err != nil {
			return fmt.Errorf("trace: %w", err)
		}
		defer f.Close()
		traceOut = f
	}
	tp, err := telemetry.Init(ctx, telemetry.Config{Writer: traceOut})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("trace shutdown failed", "error", err)
		}
	}()

	store, err := sqlite.New(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	if opts.init {
		if err := sqlite.Init(ctx, store, dataagent.PrototypeTables()); err != nil {
			return err
		}
		logger.Info("database initialized", "path", store.Path())
		fmt.Fprintf(os.Stderr, "Initialized %s\n", store.Path())
		if opts.prompt == "" {
			return nil
		}
	}

	// Env vars are read here and passed as values.
	provider, err := resolveProvider(ctx, opts.apiKey, os.Getenv("GEMINI_API_KEY"), opts.model)
	if err != nil {
		return err
	}

	drivers, err := newDrivers(store, provider, cfg, logger, tp.Tracer("github.com/fwojciec/dataagent"))
	if err != nil {
		return err
	}

	theme := dataagent.DefaultTheme()
	if opts.prompt != "" {
		d, err := driverByKey(drivers, opts.agent)
		if err != nil {
			return err
		}
		return runOnce(ctx, os.Stdout, d, opts.prompt, theme)
	}

	if err := bt.Run(ctx, bt.New(tabs(drivers), setup(store), theme)); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// openLogger returns a JSON logger writing to path. An empty path discards
// all records.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := createFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("log: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
