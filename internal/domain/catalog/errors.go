package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	// ErrLoad means the catalog source is missing or malformed. Fatal at startup.
	ErrLoad = errors.New("catalog load failed")
	// ErrUndefinedCategory means a lookup asked for a category the catalog does not define.
	ErrUndefinedCategory = errors.New("undefined category")
)
