package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/stylepulse/internal/simulator"
	"github.com/okian/stylepulse/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	cfg := simulator.DefaultConfig("http://localhost:9080")
	flag.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	flag.IntVar(&cfg.Clients, "clients", cfg.Clients, "Number of concurrent sessions")
	flag.IntVar(&cfg.Uploads, "uploads", cfg.Uploads, "Uploads per session")
	flag.IntVar(&cfg.ImageSize, "size", cfg.ImageSize, "Edge length of generated images in pixels")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	flag.Float64Var(&cfg.Rate, "rate", cfg.Rate, "Uploads per second across all sessions (0 = unpaced)")
	flag.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries for a rate-limited upload (negative = until the run times out)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Image generation seed (0 = clock)")
	flag.BoolVar(&cfg.Reset, "reset", cfg.Reset, "Clear each session's trends when done")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every upload")
	format := flag.String("log-format", logger.FormatText, "Log format: text or json")
	flag.Usage = usage
	flag.Parse()

	if err := logger.InitWithWriter(os.Stdout, *format); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	if _, err := simulator.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}

func usage() {
	os.Stderr.WriteString(`StylePulse Upload Simulator
===========================

Drives concurrent upload sessions against a running StylePulse server and
verifies each session's trend ledger.

Usage:
  go run ./cmd/upload-sim [options]

Examples:
  # Four sessions, ten uploads each
  go run ./cmd/upload-sim

  # Heavier run paced under the server's upload rate limit; 429 answers are
  # retried after the server's Retry-After either way
  go run ./cmd/upload-sim -clients 16 -uploads 50 -rate 2 -url http://localhost:8080

Options:
`)
	flag.PrintDefaults()
}
