package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/stylepulse/internal/domain/catalog"
	. "github.com/smartystreets/goconvey/convey"
)

const shippedCatalog = `{
  "casual": ["t-shirt", "jeans"],
  "formal": ["blazer", "dress shirt"],
  "sporty": ["hoodie"],
  "party": ["sequin top"],
  "traditional": ["kurta"]
}`

func TestRead(t *testing.T) {
	Convey("Given a catalog document", t, func() {
		ctx := context.Background()

		Convey("When it is well formed", func() {
			c, err := catalog.Read(ctx, strings.NewReader(shippedCatalog))

			Convey("Then every category is available in lexical order", func() {
				So(err, ShouldBeNil)
				So(c.Len(), ShouldEqual, 5)
				So(c.Categories(), ShouldResemble, []catalog.Category{"casual", "formal", "party", "sporty", "traditional"})
			})

			Convey("Then every category has items and its own caption", func() {
				for _, cat := range c.Categories() {
					items, caption, err := c.Lookup(cat)
					So(err, ShouldBeNil)
					So(items, ShouldNotBeEmpty)
					So(caption, ShouldNotEqual, catalog.DefaultCaption)
				}
			})

			Convey("Then lookup preserves item order", func() {
				items, caption, err := c.Lookup("casual")
				So(err, ShouldBeNil)
				So(items, ShouldResemble, []string{"t-shirt", "jeans"})
				So(caption, ShouldEqual, "Chilling in comfy casuals today! 😎")
			})
		})

		Convey("When it is not JSON", func() {
			_, err := catalog.Read(ctx, strings.NewReader(`casual: [jeans]`))

			Convey("Then loading fails with ErrLoad", func() {
				So(errors.Is(err, catalog.ErrLoad), ShouldBeTrue)
			})
		})

		Convey("When it has no categories", func() {
			_, err := catalog.Read(ctx, strings.NewReader(`{}`))

			Convey("Then loading fails with ErrLoad", func() {
				So(errors.Is(err, catalog.ErrLoad), ShouldBeTrue)
			})
		})

		Convey("When a category has an empty item list", func() {
			_, err := catalog.Read(ctx, strings.NewReader(`{"casual": []}`))

			Convey("Then loading fails with ErrLoad", func() {
				So(errors.Is(err, catalog.ErrLoad), ShouldBeTrue)
			})
		})

		Convey("When a category maps to something other than a list of strings", func() {
			_, err := catalog.Read(ctx, strings.NewReader(`{"casual": "jeans"}`))

			Convey("Then loading fails with ErrLoad", func() {
				So(errors.Is(err, catalog.ErrLoad), ShouldBeTrue)
			})
		})

		Convey("When an item is blank", func() {
			_, err := catalog.Read(ctx, strings.NewReader(`{"casual": ["jeans", "  "]}`))

			Convey("Then loading fails with ErrLoad", func() {
				So(errors.Is(err, catalog.ErrLoad), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "blank item")
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a catalog file on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "suggestions.json")
		So(os.WriteFile(path, []byte(shippedCatalog), 0o600), ShouldBeNil)

		Convey("When it is loaded", func() {
			c, err := catalog.Load(ctx, path)

			Convey("Then it parses", func() {
				So(err, ShouldBeNil)
				So(c.Has("formal"), ShouldBeTrue)
			})
		})

		Convey("When the path does not exist", func() {
			_, err := catalog.Load(ctx, filepath.Join(dir, "missing.json"))

			Convey("Then loading fails with ErrLoad", func() {
				So(errors.Is(err, catalog.ErrLoad), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Given a catalog", t, func() {
		c, err := catalog.New(map[string][]string{
			"casual":     {"t-shirt", "jeans"},
			"streetwear": {"cargo pants"},
		})
		So(err, ShouldBeNil)

		Convey("When looking up an unknown category", func() {
			items, caption, err := c.Lookup("cosplay")

			Convey("Then the caption falls back and the items are undefined", func() {
				So(errors.Is(err, catalog.ErrUndefinedCategory), ShouldBeTrue)
				So(items, ShouldBeNil)
				So(caption, ShouldEqual, catalog.DefaultCaption)
			})
		})

		Convey("When a category has items but no caption", func() {
			_, caption, err := c.Lookup("streetwear")

			Convey("Then the default caption is used", func() {
				So(err, ShouldBeNil)
				So(caption, ShouldEqual, catalog.DefaultCaption)
			})
		})

		Convey("When the caller mutates the returned items", func() {
			items, _, _ := c.Lookup("casual")
			items[0] = "tampered"
			again, _, _ := c.Lookup("casual")

			Convey("Then the catalog is unaffected", func() {
				So(again[0], ShouldEqual, "t-shirt")
			})
		})

		Convey("When the input table is mutated after construction", func() {
			table := map[string][]string{"casual": {"t-shirt"}}
			c2, err := catalog.New(table)
			So(err, ShouldBeNil)
			table["casual"][0] = "tampered"

			Convey("Then the catalog keeps its own copy", func() {
				items, _, _ := c2.Lookup("casual")
				So(items, ShouldResemble, []string{"t-shirt"})
			})
		})
	})
}

func TestWithCaptions(t *testing.T) {
	Convey("Given caption overrides", t, func() {
		c, err := catalog.New(
			map[string][]string{"casual": {"jeans"}, "streetwear": {"cargo pants"}},
			catalog.WithCaptions(map[string]string{
				"casual":     "Easy does it.",
				"streetwear": "Straight off the block.",
				"formal":     "",
			}),
		)
		So(err, ShouldBeNil)

		Convey("Then overrides replace and extend the defaults", func() {
			So(c.Caption("casual"), ShouldEqual, "Easy does it.")
			So(c.Caption("streetwear"), ShouldEqual, "Straight off the block.")
		})

		Convey("Then blank overrides are ignored", func() {
			So(c.Caption("formal"), ShouldEqual, "Suited up for success! 👔")
		})
	})
}
