// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"io"
	"net/http"

	"github.com/okian/stylepulse/internal/adapters/render/chart"
	"github.com/okian/stylepulse/internal/adapters/render/pdf"
	"github.com/okian/stylepulse/internal/adapters/session"
	service "github.com/okian/stylepulse/internal/app"
	"github.com/okian/stylepulse/internal/domain/catalog"
	"github.com/okian/stylepulse/internal/domain/classifier"
	"github.com/okian/stylepulse/internal/domain/guide"
	"github.com/okian/stylepulse/internal/domain/ledger"
	"github.com/okian/stylepulse/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Upload classifies img and records the result in the session.
	Upload(ctx context.Context, sessionID string, img image.Image) (service.Result, error)

	// Session reads and reset.
	Trends(ctx context.Context, sessionID string) ([]ledger.Entry, error)
	Reset(ctx context.Context, sessionID string) error

	// Catalog reads.
	Guide(ctx context.Context, category catalog.Category) (guide.Document, error)
	Catalog(ctx context.Context) []service.CatalogEntry
}

// GuideRenderer turns a guide document into a downloadable file.
type GuideRenderer interface {
	Render(w io.Writer, doc guide.Document) error
}

// Error codes carried in error bodies.
const (
	codeBadRequest         = "bad_request"
	codeUnsupportedMedia   = "unsupported_media_type"
	codePayloadTooLarge    = "payload_too_large"
	codeRateLimited        = "rate_limited"
	codeUndefinedCategory  = "undefined_category"
	codeNoTrends           = "no_trends"
	codeConfigurationError = "configuration_error"
	codeInternalError      = "internal_error"
)

const defaultMaxUploadBytes = 10 << 20

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	uploadsHandler *UploadsHandler
	trendsHandler  *TrendsHandler
	guidesHandler  *GuidesHandler
	catalogHandler *CatalogHandler

	limiter *RateLimiter
	logger  logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
	ratePerSec     float64
	burst          int
	renderer       GuideRenderer
	logger         logger.Logger
}

// WithMaxUploadBytes bounds the size of an uploaded image.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithUploadRateLimit throttles uploads per client. perSec <= 0 disables it.
func WithUploadRateLimit(perSec float64, burst int) Option {
	return func(c *serverConfig) {
		c.ratePerSec = perSec
		c.burst = burst
	}
}

// WithGuideRenderer replaces the default PDF renderer.
func WithGuideRenderer(r GuideRenderer) Option {
	return func(c *serverConfig) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithLogger sets the access and error logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{
		maxUploadBytes: defaultMaxUploadBytes,
		renderer:       pdf.NewRenderer(),
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		uploadsHandler: NewUploadsHandler(deps, cfg.maxUploadBytes, cfg.logger),
		trendsHandler:  NewTrendsHandler(deps, cfg.logger),
		guidesHandler:  NewGuidesHandler(deps, cfg.renderer, cfg.logger),
		catalogHandler: NewCatalogHandler(deps),
		limiter:        NewRateLimiter(cfg.ratePerSec, cfg.burst),
		logger:         cfg.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /api/uploads", MetricsMiddleware(s.limiter.Middleware(s.uploadsHandler.HandleUpload), "uploads"))

	mux.HandleFunc("GET /api/trends", MetricsMiddleware(s.trendsHandler.HandleGetTrends, "trends"))
	mux.HandleFunc("DELETE /api/trends", MetricsMiddleware(s.trendsHandler.HandleResetTrends, "trends_reset"))
	mux.HandleFunc("GET /api/trends/chart.png", MetricsMiddleware(s.trendsHandler.HandleChart, "trends_chart"))
	mux.HandleFunc("GET /api/trends/report.xlsx", MetricsMiddleware(s.trendsHandler.HandleReport, "trends_report"))

	mux.HandleFunc("GET /api/guides/{file}", MetricsMiddleware(s.guidesHandler.HandleGetGuide, "guides"))
	mux.HandleFunc("GET /api/catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))
}

// Handler wraps mux with the request-id and access-log middlewares.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return Chain(mux, RequestID, AccessLog(s.logger))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps an error from the service or a renderer to a status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, session.ErrInvalidID):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, codeUnsupportedMedia
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, codePayloadTooLarge
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, codeRateLimited
	case errors.Is(err, catalog.ErrUndefinedCategory):
		return http.StatusNotFound, codeUndefinedCategory
	case errors.Is(err, ErrNoTrends), errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound, codeNoTrends
	case errors.Is(err, classifier.ErrConfiguration):
		return http.StatusInternalServerError, codeConfigurationError
	default:
		return http.StatusInternalServerError, codeInternalError
	}
}

// fail writes err with the status its kind maps to and logs server errors.
func fail(ctx context.Context, log logger.Logger, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= statusInternalError {
		log.Error(ctx, "request failed",
			logger.String("requestId", RequestIDFromContext(ctx)),
			logger.String("code", code),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
