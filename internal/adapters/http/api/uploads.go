package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	service "github.com/okian/stylepulse/internal/app"
	"github.com/okian/stylepulse/internal/domain/ledger"
	"github.com/okian/stylepulse/pkg/logger"
	"github.com/okian/stylepulse/pkg/metrics"
)

// UploadField is the multipart field holding the image.
const UploadField = "image"

// multipart framing on top of the image itself.
const multipartOverhead = 64 << 10

// UploadDependencies defines the interface for the upload pipeline.
type UploadDependencies interface {
	Upload(ctx context.Context, sessionID string, img image.Image) (service.Result, error)
}

// UploadsHandler handles image uploads.
type UploadsHandler struct {
	deps     UploadDependencies
	maxBytes int64
	logger   logger.Logger
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(deps UploadDependencies, maxBytes int64, log logger.Logger) *UploadsHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadsHandler{deps: deps, maxBytes: maxBytes, logger: log}
}

type uploadResponse struct {
	SessionID string         `json:"session_id"`
	Category  string         `json:"category"`
	Items     []string       `json:"items"`
	Caption   string         `json:"caption"`
	Hashtags  string         `json:"hashtags"`
	GuideURL  string         `json:"guide_url"`
	Trends    []ledger.Entry `json:"trends"`
}

// HandleUpload handles POST /api/uploads requests.
func (h *UploadsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_upload"

	img, err := h.decode(w, r)
	if err != nil {
		metrics.RecordUploadRejected(rejectReason(err))
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}

	id := ensureSession(w, r)
	res, err := h.deps.Upload(r.Context(), id, img)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}

	trends := res.Trends
	if trends == nil {
		trends = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		SessionID: id,
		Category:  res.Category.String(),
		Items:     res.Items,
		Caption:   res.Caption,
		Hashtags:  res.Hashtags,
		GuideURL:  guideURL(res.Category.String()),
		Trends:    trends,
	})
}

// decode reads the image field, checks its extension and decodes it.
func (h *UploadsHandler) decode(w http.ResponseWriter, r *http.Request) (image.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return nil, bodyError(err)
	}
	file, header, err := r.FormFile(UploadField)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %q file field", ErrBadRequest, UploadField)
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, header.Size, h.maxBytes)
	}
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return nil, fmt.Errorf("%w: %q is not a jpg, jpeg or png file", ErrUnsupportedMedia, header.Filename)
	}

	raw, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", ErrBadRequest, err)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: not a decodable image: %w", ErrUnsupportedMedia, err)
	}
	if format != "jpeg" && format != "png" {
		return nil, fmt.Errorf("%w: %s content", ErrUnsupportedMedia, format)
	}
	return img, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return fmt.Errorf("%w: %w", ErrPayloadTooLarge, err)
	}
	return fmt.Errorf("%w: %w", ErrBadRequest, err)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return "too_large"
	case errors.Is(err, ErrUnsupportedMedia):
		return "unsupported_media"
	default:
		return "bad_request"
	}
}

func guideURL(category string) string {
	return "/api/guides/" + url.PathEscape(category) + ".pdf"
}
