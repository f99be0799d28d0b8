// Command contentd serves a content.Service with the configured backends and
// exposes its caches over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/content"
	"github.com/hupe1980/content/cache"
	"github.com/hupe1980/content/codec"
	"github.com/hupe1980/content/formats"
	"github.com/hupe1980/content/internal/config"
	"github.com/hupe1980/content/internal/server"
)

type cliOptions struct {
	configPath string
	checkOnly  bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, opts))
}

func run(ctx context.Context, opts cliOptions) int {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "load config: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fmt.Fprintf(stdOut, "config ok: %d mounts\n", len(cfg.Mounts))
		return 0
	}

	logger, err := newLogger(cfg.Service)
	if err != nil {
		// NewFileLogger still returned a stderr logger.
		fmt.Fprintf(stdErr, "log file: %v\n", err)
	}

	svc, err := newService(cfg.Service, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "create service: %v\n", err)
		return 1
	}

	closers, err := server.MountAll(ctx, svc, cfg.Mounts)
	if err != nil {
		_ = svc.Close()
		fmt.Fprintf(stdErr, "mount backends: %v\n", err)
		return 1
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	runner := server.NewRunner(svc, cfg.Service.TickInterval.DurationValue())
	app, err := server.NewApp(server.AppOptions{Runner: runner, Logger: logger})
	if err != nil {
		_ = svc.Close()
		fmt.Fprintf(stdErr, "create http app: %v\n", err)
		return 1
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- runner.Run(ctx)
	}()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- app.Listen(cfg.Service.ListenAddr)
	}()

	logger.Info("contentd started",
		"listen_addr", cfg.Service.ListenAddr,
		"mounts", len(cfg.Mounts),
		"workers", svc.Stats().Workers,
	)

	code := 0
	select {
	case <-ctx.Done():
	case err := <-httpErr:
		if err != nil {
			logger.Error("http server stopped", "error", err)
			code = 1
		}
	}

	_ = app.Shutdown()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("tick loop stopped", "error", err)
		code = 1
	}
	logger.Info("contentd stopped")
	return code
}

func newLogger(cfg config.ServiceConfig) (*content.Logger, error) {
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	if cfg.LogFilePath == "" {
		return content.NewJSONLogger(level), nil
	}
	return content.NewFileLogger(cfg.LogFilePath, level, content.RotateConfig{
		MaxSizeMB:  cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
}

func newService(cfg config.ServiceConfig, logger *content.Logger) (*content.Service, error) {
	svc := content.New(
		content.WithWorkers(cfg.Workers),
		content.WithLogger(logger),
		content.WithIOLimit(cfg.IOLimit.Int64()),
		content.WithMaxConcurrentReads(cfg.MaxConcurrentReads),
		content.WithMetricsCollector(&content.BasicMetricsCollector{}),
		autoPrune(cfg.AutoPrune),
	)

	c, _ := codec.ByName(cfg.Codec)
	err := formats.Register(svc, func(o *formats.Options) {
		o.Codec = c
		o.BlobCache = []cache.Option{cache.WithMemoryLimit(cfg.BlobMemoryLimit.Int64())}
		o.BundleCache = []cache.Option{cache.WithMemoryLimit(cfg.BundleMemoryLimit.Int64())}
	})
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func autoPrune(enabled bool) content.Option {
	if enabled {
		return content.WithAutoPrune()
	}
	return nil
}

func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("contentd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
	)
	fs.StringVar(&configFlag, "config", "", "config file (default ./contentd.toml, overridden by CONTENTD_CONFIG)")
	fs.BoolVar(&checkOnly, "check-config", false, "validate the config and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("parse flags: %w", err)
	}

	path := os.Getenv("CONTENTD_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "contentd.toml"
	}

	return cliOptions{configPath: path, checkOnly: checkOnly}, nil
}
