// Package service runs the upload pipeline and implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/okian/stylepulse/internal/adapters/session"
	"github.com/okian/stylepulse/internal/domain/catalog"
	"github.com/okian/stylepulse/internal/domain/classifier"
	"github.com/okian/stylepulse/internal/domain/guide"
	"github.com/okian/stylepulse/internal/domain/ledger"
	"github.com/okian/stylepulse/pkg/logger"
	"github.com/okian/stylepulse/pkg/metrics"
)

// DefaultHashtags are appended to every caption.
const DefaultHashtags = "#StylePulseAI #FashionTrends"

const defaultSweepInterval = time.Minute

// Result is everything one upload produces.
type Result struct {
	Category catalog.Category
	Items    []string
	Caption  string
	Hashtags string
	Guide    guide.Document
	Trends   []ledger.Entry
}

// CatalogEntry is one catalog category as exposed to clients.
type CatalogEntry struct {
	Category catalog.Category `json:"category"`
	Items    []string         `json:"items"`
	Caption  string           `json:"caption"`
}

// sweeper is implemented by stores that expire sessions lazily and need a
// periodic pass to release memory.
type sweeper interface {
	Sweep(ctx context.Context) int
}

// Service wires the catalog, the classifier and the session store.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    *catalog.Catalog
	classifier classifier.Classifier
	sessions   session.Store

	// Configuration
	hashtags      string
	backend       string
	sweepInterval time.Duration

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClassifier replaces the random classifier.
func WithClassifier(c classifier.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(store session.Store, backend string) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
			s.backend = backend
		}
	}
}

// WithHashtags overrides DefaultHashtags.
func WithHashtags(tags string) Option {
	return func(s *Service) {
		if tags != "" {
			s.hashtags = tags
		}
	}
}

// WithSweepInterval sets how often expired sessions are swept.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over cat. Without options it classifies at random
// and keeps sessions in memory.
func New(cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:       cat,
		hashtags:      DefaultHashtags,
		backend:       "memory",
		sweepInterval: defaultSweepInterval,
		stopCh:        make(chan struct{}),
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		var set classifier.CategorySet
		if cat != nil {
			set = cat
		}
		s.classifier = classifier.NewRandom(set)
	}
	if s.sessions == nil {
		s.sessions = session.NewMemoryStore()
	}
	if cat != nil {
		metrics.UpdateCatalogCategories(cat.Len())
	}
	return s
}

// Start launches the session janitor when the store needs one.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.catalog == nil {
		return fmt.Errorf("%w: no catalog", classifier.ErrConfiguration)
	}

	s.stopCh = make(chan struct{})
	if sw, ok := s.sessions.(sweeper); ok {
		s.wg.Add(1)
		go s.sweepLoop(ctx, sw)
	}

	s.started = true
	s.logger.Info(ctx, "stylepulse service started",
		logger.Int("categories", s.catalog.Len()),
		logger.String("sessionBackend", s.backend),
	)
	return nil
}

// Stop halts the janitor and waits for it.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "stylepulse service stopped")
}

func (s *Service) sweepLoop(ctx context.Context, sw sweeper) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if n := sw.Sweep(ctx); n > 0 {
				s.logger.Debug(ctx, "expired sessions swept", logger.Int("count", n))
			}
		}
	}
}

// Upload runs the pipeline for one decoded image: classify, look up the
// catalog, record the category in the session ledger and build the guide.
// The ledger is only touched once classification and lookup succeeded.
func (s *Service) Upload(ctx context.Context, sessionID string, img image.Image) (Result, error) {
	start := time.Now()

	category, err := s.classifier.Classify(ctx, img)
	if err != nil {
		metrics.RecordClassificationError()
		return Result{}, fmt.Errorf("classify: %w", err)
	}

	items, caption, err := s.catalog.Lookup(category)
	if err != nil {
		return Result{}, fmt.Errorf("lookup %q: %w", category, err)
	}

	var trends []ledger.Entry
	err = s.sessions.Update(ctx, sessionID, func(l *ledger.Ledger) error {
		l.Record(category)
		trends = l.Entries()
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("record %q: %w", category, err)
	}

	metrics.RecordUploadClassified(category.String())
	metrics.RecordPipelineLatency(float64(time.Since(start).Microseconds()) / 1000)

	s.logger.Debug(ctx, "upload classified",
		logger.String("session", sessionID),
		logger.String("category", category.String()),
	)

	return Result{
		Category: category,
		Items:    items,
		Caption:  caption,
		Hashtags: s.hashtags,
		Guide:    guide.Build(category, items),
		Trends:   trends,
	}, nil
}

// Trends returns the session's counts sorted by category.
func (s *Service) Trends(ctx context.Context, sessionID string) ([]ledger.Entry, error) {
	l, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return l.Entries(), nil
}

// Reset discards the session's ledger.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	metrics.RecordSessionReset()
	return nil
}

// Guide builds the outfit guide of a catalog category.
func (s *Service) Guide(_ context.Context, category catalog.Category) (guide.Document, error) {
	items, _, err := s.catalog.Lookup(category)
	if err != nil {
		return guide.Document{}, err
	}
	return guide.Build(category, items), nil
}

// Catalog lists every category with its items and caption.
func (s *Service) Catalog(_ context.Context) []CatalogEntry {
	categories := s.catalog.Categories()
	out := make([]CatalogEntry, 0, len(categories))
	for _, c := range categories {
		items, caption, err := s.catalog.Lookup(c)
		if err != nil {
			continue
		}
		out = append(out, CatalogEntry{Category: c, Items: items, Caption: caption})
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"sessionBackend": s.backend,
		"categories":     0,
	}
	if s.catalog != nil {
		stats["categories"] = s.catalog.Len()
	}

	if s.started {
		live := s.sessions.Len(ctx)
		stats["liveSessions"] = live
		metrics.UpdateLiveSessions(live)
	}

	return stats
}
