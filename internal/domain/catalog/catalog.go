// Package catalog holds the static table of style categories, the outfit
// pieces recommended for each, and the caption shown with a result.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// DefaultCaption is used for categories without a caption.
const DefaultCaption = "Styled by StylePulse AI!"

// Category is one style label, e.g. "casual".
type Category string

func (c Category) String() string { return string(c) }

// defaultCaptions mirrors the captions the product shipped with.
var defaultCaptions = map[Category]string{ //nolint:gochecknoglobals // read-only table
	"casual":      "Chilling in comfy casuals today! 😎",
	"formal":      "Suited up for success! 👔",
	"sporty":      "Power up with my sporty style! 🏋️",
	"party":       "Shining through the party night! ✨",
	"traditional": "Rooted in tradition, styled for today. 🧵",
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	items      map[Category][]string
	captions   map[Category]string
	categories []Category
}

// Option applies a configuration option to a Catalog under construction.
type Option func(*Catalog)

// WithCaptions overrides or extends the caption table. Blank captions are ignored.
func WithCaptions(captions map[string]string) Option {
	return func(c *Catalog) {
		for k, v := range captions {
			if v != "" {
				c.captions[Category(k)] = v
			}
		}
	}
}

// New builds a Catalog from an in-memory table. The table is validated with
// the same rules as a loaded file.
func New(table map[string][]string, opts ...Option) (*Catalog, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	c := &Catalog{
		items:    make(map[Category][]string, len(table)),
		captions: make(map[Category]string, len(defaultCaptions)),
	}
	for k, v := range defaultCaptions {
		c.captions[k] = v
	}
	for name, items := range table {
		cat := Category(name)
		c.items[cat] = append([]string(nil), items...)
		c.categories = append(c.categories, cat)
	}
	sort.Slice(c.categories, func(i, j int) bool { return c.categories[i] < c.categories[j] })

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load reads and validates a JSON catalog file.
func Load(ctx context.Context, path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()
	return Read(ctx, f, opts...)
}

// Read parses and validates a JSON catalog from r.
func Read(_ context.Context, r io.Reader, opts ...Option) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}
	var table map[string][]string
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return New(table, opts...)
}

// Lookup returns the recommended items and caption for category. The
// returned slice is a copy. For unknown categories the caption falls back to
// DefaultCaption and the error wraps ErrUndefinedCategory.
func (c *Catalog) Lookup(category Category) ([]string, string, error) {
	caption := c.Caption(category)
	items, ok := c.items[category]
	if !ok {
		return nil, caption, fmt.Errorf("%w: %q", ErrUndefinedCategory, category)
	}
	return append([]string(nil), items...), caption, nil
}

// Caption returns the caption for category or DefaultCaption.
func (c *Catalog) Caption(category Category) string {
	if caption, ok := c.captions[category]; ok {
		return caption
	}
	return DefaultCaption
}

// Has reports whether category is in the catalog.
func (c *Catalog) Has(category Category) bool {
	_, ok := c.items[category]
	return ok
}

// Categories returns the closed category set in lexical order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}
