package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fenrir/internal/config"
	"fenrir/internal/engine"
	"fenrir/internal/metrics"
	"fenrir/internal/pipeline"
	"fenrir/internal/report"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("matcher exiting")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	rule, err := cfg.Rule()
	if err != nil {
		return err
	}
	book := engine.New(
		engine.WithPriceRule(rule),
		engine.WithLogger(log.Logger.With().Str("component", "engine").Logger()),
	)

	source, err := openInput(cfg.Input)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close input")
		}
	}()

	sink, flush, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer func() {
		if err := flush(); err != nil {
			log.Error().Err(err).Msg("unable to flush report")
		}
	}()

	opts := []pipeline.Option{pipeline.WithBufferSize(cfg.BufferSize)}
	if cfg.MetricsAddr != "" {
		m := metrics.New("matcher")
		opts = append(opts, pipeline.WithMetrics(m))
		srv := serveMetrics(cfg.MetricsAddr, m)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("unable to stop metrics server")
			}
		}()
	}

	log.Info().
		Str("input", cfg.Input).
		Str("output", cfg.Output).
		Stringer("price_rule", rule).
		Bool("live", cfg.Live).
		Msg("matcher starting")

	runner := pipeline.New(book, source, report.NewJSONReporter(sink, cfg.Live), opts...)
	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("events", summary.Events).
		Int("rejected", summary.Rejected).
		Int("trades", summary.Trades).
		Msg("matcher done")
	return nil
}

func setupLogging(cfg config.Config) {
	// Validated already.
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)
	if cfg.LogConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func openInput(path string) (io.ReadCloser, error) {
	if path == config.Stdio {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input: %w", err)
	}
	return file, nil
}

// openOutput returns the report sink and a func flushing and closing it.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == config.Stdio {
		out := bufio.NewWriter(os.Stdout)
		return out, out.Flush, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create output: %w", err)
	}
	out := bufio.NewWriter(file)
	return out, func() error {
		return errors.Join(out.Flush(), file.Close())
	}, nil
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("address", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv
}
