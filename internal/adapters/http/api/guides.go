package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/stylepulse/internal/adapters/render/pdf"
	service "github.com/okian/stylepulse/internal/app"
	"github.com/okian/stylepulse/internal/domain/catalog"
	"github.com/okian/stylepulse/internal/domain/guide"
	"github.com/okian/stylepulse/pkg/logger"
	"github.com/okian/stylepulse/pkg/metrics"
)

// GuideDependencies defines the interface for guide lookups.
type GuideDependencies interface {
	Guide(ctx context.Context, category catalog.Category) (guide.Document, error)
}

// GuidesHandler serves outfit guides as PDF downloads.
type GuidesHandler struct {
	deps     GuideDependencies
	renderer GuideRenderer
	logger   logger.Logger
}

// NewGuidesHandler creates a new guides handler.
func NewGuidesHandler(deps GuideDependencies, renderer GuideRenderer, log logger.Logger) *GuidesHandler {
	return &GuidesHandler{deps: deps, renderer: renderer, logger: log}
}

// HandleGetGuide handles GET /api/guides/{category}.pdf requests.
func (h *GuidesHandler) HandleGetGuide(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_guide"

	file := r.PathValue("file")
	category, ok := strings.CutSuffix(file, ".pdf")
	if !ok || strings.TrimSpace(category) == "" {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, fmt.Errorf("%q is not a guide file", file)))
		return
	}

	doc, err := h.deps.Guide(r.Context(), catalog.Category(category))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, doc); err != nil {
		metrics.RecordRenderError("pdf")
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	metrics.RecordRenderLatency("pdf", float64(time.Since(start).Microseconds())/1000)
	metrics.RecordGuideRendered()

	w.Header().Set("Content-Type", pdf.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdf.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// CatalogDependencies defines the interface for catalog listing.
type CatalogDependencies interface {
	Catalog(ctx context.Context) []service.CatalogEntry
}

// CatalogHandler lists the catalog.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGetCatalog handles GET /api/catalog requests.
func (h *CatalogHandler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Catalog(r.Context()))
}
