package pdf

import "errors"

// ErrRender wraps every failure of the PDF writer.
var ErrRender = errors.New("pdf render failed")
