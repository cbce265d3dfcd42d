package guide_test

import (
	"testing"

	"github.com/okian/stylepulse/internal/domain/guide"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given a category and its items", t, func() {
		Convey("When building the casual guide", func() {
			doc := guide.Build("casual", []string{"t-shirt", "jeans"})

			Convey("Then the title is title-cased and the lines are bulleted in order", func() {
				So(doc.Title, ShouldEqual, "StylePulse Outfit Guide - Casual Look")
				So(doc.Lines, ShouldResemble, []string{"- t-shirt", "- jeans"})
			})
		})

		Convey("When building with two arbitrary items", func() {
			doc := guide.Build("formal", []string{"a", "b"})

			Convey("Then the lines mirror the items", func() {
				So(doc.Title, ShouldEqual, "StylePulse Outfit Guide - Formal Look")
				So(doc.Lines, ShouldResemble, []string{"- a", "- b"})
			})
		})

		Convey("When there are no items", func() {
			doc := guide.Build("party", nil)

			Convey("Then only the title is set", func() {
				So(doc.Title, ShouldEqual, "StylePulse Outfit Guide - Party Look")
				So(doc.Lines, ShouldBeEmpty)
			})
		})

		Convey("When the caller mutates the items afterwards", func() {
			items := []string{"kurta"}
			doc := guide.Build("traditional", items)
			items[0] = "changed"

			Convey("Then the document is unaffected", func() {
				So(doc.Lines, ShouldResemble, []string{"- kurta"})
			})
		})
	})
}

func TestTitleCase(t *testing.T) {
	Convey("Given category names", t, func() {
		cases := map[string]string{
			"casual":       "Casual",
			"SPORTY":       "Sporty",
			"street-wear":  "Street-Wear",
			"black tie":    "Black Tie",
			"":             "",
			"90s grunge":   "90S Grunge",
			"évènementiel": "Évènementiel",
		}

		Convey("Then each word starts upper case and continues lower case", func() {
			for in, want := range cases {
				So(guide.TitleCase(in), ShouldEqual, want)
			}
		})
	})
}
