package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	// ErrNoData means the ledger is empty; there is nothing to plot.
	ErrNoData = errors.New("no trend data to plot")
	// ErrRender wraps failures of the underlying chart libraries.
	ErrRender = errors.New("chart render failed")
)
