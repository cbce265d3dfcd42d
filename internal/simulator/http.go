package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"
)

// uploadField is the multipart field the server reads images from.
const uploadField = "image"

// maxErrorBody caps how much of an error response is quoted back.
const maxErrorBody = 512

// sessionClient is one simulated browser: an http.Client with its own
// cookie jar so the server keeps a separate ledger for it.
type sessionClient struct {
	baseURL string
	client  *http.Client
}

func newSessionClient(baseURL string, timeout time.Duration) (*sessionClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &sessionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// Upload posts a PNG image and decodes the classification response.
func (c *sessionClient) Upload(ctx context.Context, name string, img []byte) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/uploads", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trends fetches the session's ledger.
func (c *sessionClient) Trends(ctx context.Context) ([]TrendEntry, error) {
	var out []TrendEntry
	if err := c.get(ctx, "/api/trends", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Catalog fetches the catalog categories.
func (c *sessionClient) Catalog(ctx context.Context) ([]CatalogEntry, error) {
	var out []CatalogEntry
	if err := c.get(ctx, "/api/catalog", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reset clears the session's ledger.
func (c *sessionClient) Reset(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/trends", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, http.StatusNoContent, nil)
}

// Health checks the service's metrics endpoint.
func (c *sessionClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.do(req, http.StatusOK, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

func (c *sessionClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, http.StatusOK, out)
}

// do sends req, checks the status and decodes a JSON body into out when
// out is non-nil.
func (c *sessionClient) do(req *http.Request, want int, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &rateLimitedError{
			op:         req.Method + " " + req.URL.Path,
			retryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: %w: %d %s", req.Method, req.URL.Path, ErrUnexpectedStatus,
			resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// retryAfter reads a delay-seconds Retry-After value. HTTP dates and garbage
// fall back to defaultRetryAfter.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
