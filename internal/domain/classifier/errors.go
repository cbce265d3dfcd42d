package classifier

import "errors"

// ErrConfiguration means the classifier cannot produce any category, for
// example because its category set is empty.
var ErrConfiguration = errors.New("classifier configuration error")
