package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	web2pdf "github.com/mbrunel/go-web2pdf"
)

// Version is set at build time via ldflags.
var Version = "dev"

// shutdownGrace bounds the drain of in-flight conversions on shutdown.
const shutdownGrace = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("web2pdfd", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	listen := fs.String("listen", "", "listen address (overrides config)")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")
	version := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if *version {
		fmt.Println("web2pdfd", Version)
		return 0
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS env,
	// in which case Go runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

	cfg := DefaultConfig()
	if *configPath != "" {
		cfg, err = LoadConfig(*configPath)
		if err != nil {
			log.Errorw("loading config", "error", err)
			return 2
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	timeout, _ := cfg.timeout()
	waitTimeout, _ := cfg.waitTimeout()

	opts := []web2pdf.Option{web2pdf.WithLogger(logger)}
	if cfg.ChromePath != "" {
		opts = append(opts, web2pdf.WithChromePath(cfg.ChromePath))
	}
	if cfg.TempDir != "" {
		opts = append(opts, web2pdf.WithTempDir(cfg.TempDir))
	}

	pool := web2pdf.NewConverterPool(web2pdf.ResolvePoolSize(cfg.Workers), opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warnw("closing converter pool", "error", err)
		}
	}()

	server := NewServer(logger, pool, timeout, waitTimeout)
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.Listen, "version", Version)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Errorw("server error", "error", err)
		return 1
	case sig := <-sigCh:
		log.Infow("shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warnw("shutdown", "error", err)
		return 1
	}
	return 0
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}
