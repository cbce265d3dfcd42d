// Package classifier assigns a style category to an uploaded image.
//
// Classifier is the seam for a real model: anything that maps a decoded image
// to one of the catalog's categories can replace RandomClassifier without
// touching callers.
package classifier

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"sync"

	"github.com/okian/stylepulse/internal/domain/catalog"
)

// Classifier maps a decoded image to one category of the catalog.
type Classifier interface {
	// Classify returns a category, honoring ctx for cancellation.
	Classify(ctx context.Context, img image.Image) (catalog.Category, error)
}

// CategorySet is the closed set a classifier chooses from. *catalog.Catalog
// satisfies it.
type CategorySet interface {
	Categories() []catalog.Category
}

// RandomClassifier picks a category uniformly at random and ignores the image
// content. It is a placeholder until a trained model is wired in.
type RandomClassifier struct {
	mu         sync.Mutex
	rng        *rand.Rand
	categories []catalog.Category
}

// NewRandom builds a RandomClassifier over the categories of set.
func NewRandom(set CategorySet, opts ...Option) *RandomClassifier {
	c := &RandomClassifier{
		rng: rand.New(clockSource()), //nolint:gosec // not security sensitive
	}
	if set != nil {
		c.categories = set.Categories()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns one of the configured categories. It fails with
// ErrConfiguration when there are none.
func (c *RandomClassifier) Classify(ctx context.Context, _ image.Image) (catalog.Category, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	if len(c.categories) == 0 {
		return "", fmt.Errorf("%w: no categories to choose from", ErrConfiguration)
	}
	c.mu.Lock()
	i := c.rng.Intn(len(c.categories))
	c.mu.Unlock()
	return c.categories[i], nil
}

// Fixed always returns the same category. It backs single-category catalogs
// and deterministic tests.
type Fixed catalog.Category

// Classify returns the fixed category, or ErrConfiguration when it is empty.
func (f Fixed) Classify(ctx context.Context, _ image.Image) (catalog.Category, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	if f == "" {
		return "", fmt.Errorf("%w: empty fixed category", ErrConfiguration)
	}
	return catalog.Category(f), nil
}

// Sequence returns its categories in order, cycling when exhausted.
type Sequence struct {
	mu   sync.Mutex
	next int
	seq  []catalog.Category
}

// NewSequence builds a Sequence classifier.
func NewSequence(categories ...catalog.Category) *Sequence {
	return &Sequence{seq: append([]catalog.Category(nil), categories...)}
}

// Classify returns the next category of the sequence.
func (s *Sequence) Classify(ctx context.Context, _ image.Image) (catalog.Category, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seq) == 0 {
		return "", fmt.Errorf("%w: empty sequence", ErrConfiguration)
	}
	c := s.seq[s.next%len(s.seq)]
	s.next++
	return c, nil
}
