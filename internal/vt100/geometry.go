// Package vt100 clips, pads and rewrites text that carries VT100/ANSI
// control sequences so it can be placed into a rectangular region of a
// shared terminal screen.
package vt100

import "github.com/charmbracelet/x/ansi"

// CharDims is a size in terminal cells.
type CharDims struct {
	Width  int
	Height int
}

// TermLocation is a 1-based absolute terminal column (X) and row (Y).
type TermLocation struct {
	X int
	Y int
}

// Dims builds a CharDims.
func Dims(width, height int) CharDims {
	return CharDims{Width: width, Height: height}
}

// At builds a TermLocation.
func At(x, y int) TermLocation {
	return TermLocation{X: x, Y: y}
}

// Empty reports whether the region covers no cells.
func (d CharDims) Empty() bool {
	return d.Width <= 0 || d.Height <= 0
}

// Goto returns the absolute cursor position sequence for column x, row y.
func Goto(x, y int) string {
	return ansi.CursorPosition(x, y)
}
