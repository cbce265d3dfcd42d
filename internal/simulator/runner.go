package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/okian/stylepulse/pkg/logger"
)

// Default configuration constants.
const (
	DefaultClients   = 4
	DefaultUploads   = 10
	DefaultImageSize = 32
	DefaultTimeout   = 10 * time.Second
	DefaultRetries   = -1 // until the run context ends

	defaultRetryAfter    = time.Second
	retryJitter          = 250 * time.Millisecond
	percentageMultiplier = 100
)

// DefaultConfig returns the configuration used by cmd/upload-sim when no
// flags are given.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:   baseURL,
		Clients:   DefaultClients,
		Uploads:   DefaultUploads,
		ImageSize: DefaultImageSize,
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
	}
}

// result is what one simulated session reports back to the runner.
type result struct {
	client     int
	sessionID  string
	accepted   int
	rejected   int
	categories map[string]int
	violations []string
	err        error
}

// Run executes a complete simulation: health check, catalog fetch,
// concurrent upload sessions and verification. It returns an error wrapping
// ErrVerification when any session ledger is inconsistent.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	stats := &Stats{
		Clients:    cfg.Clients,
		Categories: make(map[string]int),
		StartTime:  time.Now(),
	}

	log.Info(ctx, "starting stylepulse upload simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("clients", cfg.Clients),
		logger.Int("uploads", cfg.Uploads),
		logger.Float64("rate", cfg.Rate),
		logger.Duration("timeout", cfg.Timeout))

	admin, err := newSessionClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	// Step 1: Check service health
	if err := admin.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch the catalog used to validate categories
	entries, err := admin.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog retrieval failed: %w", err)
	}
	known := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		known[e.Category] = struct{}{}
	}
	log.Info(ctx, "catalog retrieved", logger.Int("categories", len(known)))

	// Step 3: Run the sessions concurrently
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results := make(chan result, cfg.Clients)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			results <- runSession(ctx, cfg, log, limiter, known, id, seed+int64(id))
		}(i)
	}
	wg.Wait()
	close(results)

	// Step 4: Aggregate and verify
	sessions := make(map[string]int, cfg.Clients)
	var firstErr error
	for r := range results {
		stats.UploadsAccepted += r.accepted
		stats.UploadsRejected += r.rejected
		stats.UploadsSubmitted += r.accepted + r.rejected
		for cat, n := range r.categories {
			stats.Categories[cat] += n
		}
		stats.Violations = append(stats.Violations, r.violations...)
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("client %d: %w", r.client, r.err)
		}
		if r.sessionID == "" {
			continue
		}
		if other, dup := sessions[r.sessionID]; dup {
			stats.Violations = append(stats.Violations,
				fmt.Sprintf("clients %d and %d share session %s", other, r.client, r.sessionID))
		}
		sessions[r.sessionID] = r.client
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if firstErr != nil {
		return stats, firstErr
	}
	if len(stats.Violations) > 0 {
		for _, v := range stats.Violations {
			log.Error(ctx, "ledger violation", logger.String("detail", v))
		}
		return stats, fmt.Errorf("%w: %d violations", ErrVerification, len(stats.Violations))
	}

	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg == nil:
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	case cfg.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case cfg.Clients <= 0:
		return fmt.Errorf("%w: clients must be positive", ErrInvalidConfig)
	case cfg.Uploads <= 0:
		return fmt.Errorf("%w: uploads must be positive", ErrInvalidConfig)
	case cfg.ImageSize <= 0:
		return fmt.Errorf("%w: image size must be positive", ErrInvalidConfig)
	case cfg.Rate < 0:
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidConfig)
	}
	return nil
}

// runSession plays one browser: it uploads cfg.Uploads images with its own
// cookie jar and checks every ledger the server returns.
func runSession(ctx context.Context, cfg *Config, log logger.Logger, limiter *rate.Limiter,
	known map[string]struct{}, id int, seed int64) result {
	res := result{client: id, categories: make(map[string]int)}

	client, err := newSessionClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		res.err = err
		return res
	}
	gen := newGenerator(seed, cfg.ImageSize)
	check := newSessionCheck(id, known)
	label := uuid.NewString()

	for i := 0; i < cfg.Uploads; i++ {
		img, err := gen.Next()
		if err != nil {
			res.err = err
			return res
		}

		resp, err := uploadWithRetry(ctx, cfg, limiter, client, fmt.Sprintf("look-%s-%d.png", label, i), img)
		if err != nil {
			res.rejected++
			res.err = err
			return res
		}
		res.accepted++
		res.categories[resp.Category]++
		check.upload(resp)

		if cfg.Verbose {
			log.Info(ctx, "upload classified",
				logger.Int("client", id),
				logger.String("label", label),
				logger.Int("upload", i+1),
				logger.String("category", resp.Category))
		}
	}
	res.sessionID = check.sessionID

	trends, err := client.Trends(ctx)
	if err != nil {
		res.err = err
		return res
	}
	check.final(trends, cfg.Uploads)

	if cfg.Reset {
		if err := client.Reset(ctx); err != nil {
			res.err = err
			return res
		}
		trends, err := client.Trends(ctx)
		if err != nil {
			res.err = err
			return res
		}
		check.cleared(trends)
	}

	res.violations = check.violations
	return res
}

// uploadWithRetry paces the upload through limiter and retries 429 answers
// after the server's Retry-After plus jitter. A negative cfg.Retries retries
// until ctx ends.
func uploadWithRetry(ctx context.Context, cfg *Config, limiter *rate.Limiter, client *sessionClient,
	name string, img []byte) (*UploadResponse, error) {
	for attempt := 0; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := client.Upload(ctx, name, img)
		if err == nil {
			return resp, nil
		}
		var limited *rateLimitedError
		if !errors.As(err, &limited) || (cfg.Retries >= 0 && attempt >= cfg.Retries) {
			return nil, err
		}

		timer := time.NewTimer(limited.retryAfter + rand.N(retryJitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", err, ctx.Err())
		case <-timer.C:
		}
	}
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var acceptRate, uploadsPerSecond float64

	if stats.UploadsSubmitted > 0 {
		acceptRate = float64(stats.UploadsAccepted) / float64(stats.UploadsSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		uploadsPerSecond = float64(stats.UploadsSubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("clients", stats.Clients),
		logger.Int("uploadsSubmitted", stats.UploadsSubmitted),
		logger.Int("uploadsAccepted", stats.UploadsAccepted),
		logger.Int("uploadsRejected", stats.UploadsRejected),
		logger.Int("violations", len(stats.Violations)),
		logger.Any("categories", stats.Categories),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("uploadsPerSecond", uploadsPerSecond))
}
