package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/okian/stylepulse/internal/adapters/render/chart"
	"github.com/okian/stylepulse/internal/domain/ledger"
	"github.com/okian/stylepulse/pkg/logger"
	"github.com/okian/stylepulse/pkg/metrics"
)

// TrendsDependencies defines the interface for session trend operations.
type TrendsDependencies interface {
	Trends(ctx context.Context, sessionID string) ([]ledger.Entry, error)
	Reset(ctx context.Context, sessionID string) error
}

// TrendsHandler serves the session ledger as JSON, chart and workbook.
type TrendsHandler struct {
	deps   TrendsDependencies
	logger logger.Logger
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(deps TrendsDependencies, log logger.Logger) *TrendsHandler {
	return &TrendsHandler{deps: deps, logger: log}
}

// HandleGetTrends handles GET /api/trends requests.
func (h *TrendsHandler) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trends"
	entries, err := h.entries(r)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleResetTrends handles DELETE /api/trends requests.
func (h *TrendsHandler) HandleResetTrends(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_trends"
	if id, ok := sessionID(r); ok {
		if err := h.deps.Reset(r.Context(), id); err != nil {
			fail(r.Context(), h.logger, w, Wrap(op, err))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChart handles GET /api/trends/chart.png requests.
func (h *TrendsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "api.get_trends_chart", "png", chart.PNGContentType, "", chart.RenderPNG)
}

// HandleReport handles GET /api/trends/report.xlsx requests.
func (h *TrendsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "api.get_trends_report", "xlsx", chart.XLSXContentType, "trends.xlsx", chart.RenderXLSX)
}

// render buffers the output so a failing renderer still yields a clean error
// response.
func (h *TrendsHandler) render(
	w http.ResponseWriter,
	r *http.Request,
	op, format, contentType, filename string,
	fn func(io.Writer, []ledger.Entry) error,
) {
	entries, err := h.entries(r)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	if len(entries) == 0 {
		fail(r.Context(), h.logger, w, NewKind(op, ErrNoTrends))
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := fn(&buf, entries); err != nil {
		metrics.RecordRenderError(format)
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	metrics.RecordRenderLatency(format, float64(time.Since(start).Microseconds())/1000)
	metrics.RecordChartRendered(format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// entries returns the session's ledger rows; requests without a session see
// an empty ledger.
func (h *TrendsHandler) entries(r *http.Request) ([]ledger.Entry, error) {
	id, ok := sessionID(r)
	if !ok {
		return []ledger.Entry{}, nil
	}
	entries, err := h.deps.Trends(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return entries, nil
}
