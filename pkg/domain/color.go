package domain

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is one entry of the fixed pen palette.
type Color int

const (
	Black Color = iota
	Red
	Green
	White
)

// Palette lists every pen colour in declaration order.
var Palette = []Color{Black, Red, Green, White}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case Red:
		return "red"
	case Green:
		return "green"
	case White:
		return "white"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// RGBA returns the opaque colour used when stroking with this pen.
func (c Color) RGBA() color.RGBA {
	switch c {
	case Red:
		return color.RGBA{R: 0xff, A: 0xff}
	case Green:
		return color.RGBA{G: 0xff, A: 0xff}
	case White:
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	default:
		return color.RGBA{A: 0xff}
	}
}

// ParseColor resolves a palette name, ignoring case.
func ParseColor(name string) (Color, bool) {
	for _, c := range Palette {
		if strings.EqualFold(c.String(), name) {
			return c, true
		}
	}
	return Black, false
}
