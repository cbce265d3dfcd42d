package classifier

import (
	"math/rand"
	"time"
)

// Option applies a configuration option to the RandomClassifier.
type Option func(*RandomClassifier)

// WithSeed makes the category sequence reproducible. A zero seed keeps the
// clock-seeded source.
func WithSeed(seed int64) Option {
	return func(c *RandomClassifier) {
		if seed != 0 {
			c.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // not security sensitive
		}
	}
}

// WithSource replaces the random source, mainly for tests.
func WithSource(src rand.Source) Option {
	return func(c *RandomClassifier) {
		if src != nil {
			c.rng = rand.New(src) //nolint:gosec // not security sensitive
		}
	}
}

func clockSource() rand.Source {
	return rand.NewSource(time.Now().UnixNano())
}
