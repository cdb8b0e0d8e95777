// Package canvas provides Raster, an in-memory RGBA implementation of ports.Canvas.
//
// Strokes are antialiased quads filled with golang.org/x/image/vector; the turtle
// cursor follows the same pose maths as the session that drives it.
package canvas
