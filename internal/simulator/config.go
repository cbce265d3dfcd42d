// Package simulator drives concurrent upload sessions against a running
// StylePulse server and verifies the per-session trend ledgers it reports.
package simulator

import (
	"time"

	"github.com/okian/stylepulse/pkg/logger"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Clients   int           // Number of concurrent sessions
	Uploads   int           // Uploads per session
	ImageSize int           // Edge length of generated images in pixels
	Timeout   time.Duration // HTTP request timeout
	Rate      float64       // Client-side uploads per second across all sessions; 0 is unpaced
	Retries   int           // Retries for a rate-limited upload; negative retries until ctx ends
	Seed      int64         // Seed for image generation; 0 uses the clock
	Reset     bool          // Clear each session's trends before exiting
	Verbose   bool          // Log every upload
	Logger    logger.Logger // Defaults to logger.Get()
}

// CatalogEntry mirrors one element of GET /api/catalog.
type CatalogEntry struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
	Caption  string   `json:"caption"`
}

// TrendEntry mirrors one element of GET /api/trends.
type TrendEntry struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// UploadResponse mirrors the body of POST /api/uploads.
type UploadResponse struct {
	SessionID string       `json:"session_id"`
	Category  string       `json:"category"`
	Items     []string     `json:"items"`
	Caption   string       `json:"caption"`
	Hashtags  string       `json:"hashtags"`
	GuideURL  string       `json:"guide_url"`
	Trends    []TrendEntry `json:"trends"`
}

// Stats holds run statistics.
type Stats struct {
	Clients          int
	UploadsSubmitted int
	UploadsAccepted  int
	UploadsRejected  int
	Violations       []string
	Categories       map[string]int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
