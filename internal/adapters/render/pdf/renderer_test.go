package pdf_test

import (
	"bytes"
	"errors"
	"testing"

	ledongthuc "github.com/ledongthuc/pdf"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/stylepulse/internal/adapters/render/pdf"
	"github.com/okian/stylepulse/internal/domain/guide"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderer(t *testing.T) {
	Convey("Given the casual outfit guide", t, func() {
		doc := guide.Build("casual", []string{"t-shirt", "jeans"})

		Convey("When it is rendered with default options", func() {
			var buf bytes.Buffer
			err := pdf.NewRenderer().Render(&buf, doc)

			Convey("Then the output is a one-page PDF", func() {
				So(err, ShouldBeNil)
				So(bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), ShouldBeTrue)

				r, err := ledongthuc.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
				So(err, ShouldBeNil)
				So(r.NumPage(), ShouldEqual, 1)
			})
		})

		Convey("When it is rendered without compression", func() {
			var buf bytes.Buffer
			err := pdf.NewRenderer(pdf.WithCompression(false), pdf.WithFont("Courier")).Render(&buf, doc)

			Convey("Then the title and every bullet appear in the page stream", func() {
				So(err, ShouldBeNil)
				out := buf.String()
				So(out, ShouldContainSubstring, "(StylePulse Outfit Guide - Casual Look)")
				So(out, ShouldContainSubstring, "(- t-shirt)")
				So(out, ShouldContainSubstring, "(- jeans)")
				So(out, ShouldContainSubstring, "/Courier")
			})
		})

		Convey("When the writer fails", func() {
			err := pdf.NewRenderer().Render(failingWriter{}, doc)

			Convey("Then the error wraps ErrRender", func() {
				So(errors.Is(err, pdf.ErrRender), ShouldBeTrue)
			})
		})
	})
}
