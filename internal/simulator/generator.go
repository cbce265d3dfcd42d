package simulator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
)

// generator produces small synthetic PNG images. It is not safe for
// concurrent use; each client owns one.
type generator struct {
	rng  *rand.Rand
	size int
}

func newGenerator(seed int64, size int) *generator {
	return &generator{rng: rand.New(rand.NewSource(seed)), size: size}
}

// Next returns a PNG filled with a random two-colour stripe pattern.
func (g *generator) Next() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, g.size, g.size))
	a := g.color()
	b := g.color()
	stripe := 1 + g.rng.Intn(g.size)
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			if (x/stripe)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *generator) color() color.RGBA {
	return color.RGBA{
		R: uint8(g.rng.Intn(256)),
		G: uint8(g.rng.Intn(256)),
		B: uint8(g.rng.Intn(256)),
		A: 0xff,
	}
}
