package views

import (
	"fmt"

	"hex/internal/vt100"
)

type (
	// CharDims is a realized size in terminal cells.
	CharDims = vt100.CharDims
	// TermLocation is a 1-based absolute terminal position.
	TermLocation = vt100.TermLocation
)

// wrapOrd is the ordering weight of WrapContent: larger than any terminal.
const wrapOrd = 1_000_000_000

type dimKind int

const (
	wrapContent dimKind = iota
	fixed
	upTo
)

// DimConstraint describes how one axis of a view is sized.
//
//	WrapContent  size comes from content, unbounded above
//	Fixed(n)     n cells, shrunk by whatever the parent can offer
//	UpTo(n)      content-driven between 0 and n cells
type DimConstraint struct {
	kind dimKind
	n    int
}

// WrapContent sizes an axis from its content.
var WrapContent = DimConstraint{kind: wrapContent}

// Fixed returns a constraint of exactly n cells.
func Fixed(n int) DimConstraint {
	return DimConstraint{kind: fixed, n: max(n, 0)}
}

// UpTo returns a constraint of at most n cells.
func UpTo(n int) DimConstraint {
	return DimConstraint{kind: upTo, n: max(n, 0)}
}

func (c DimConstraint) ord() int {
	if c.kind == wrapContent {
		return wrapOrd
	}
	return c.n
}

// Less orders constraints by their cap. Fixed(n) and UpTo(n) are equal.
func (c DimConstraint) Less(o DimConstraint) bool {
	return c.ord() < o.ord()
}

// IsWrap reports whether c is WrapContent.
func (c DimConstraint) IsWrap() bool {
	return c.kind == wrapContent
}

// DesiredSize is the number of cells c asks for. WrapContent asks for
// nothing until its content is measured.
func (c DimConstraint) DesiredSize() int {
	if c.kind == wrapContent {
		return 0
	}
	return c.n
}

func (c DimConstraint) String() string {
	switch c.kind {
	case fixed:
		return fmt.Sprintf("Fixed(%d)", c.n)
	case upTo:
		return fmt.Sprintf("UpTo(%d)", c.n)
	default:
		return "WrapContent"
	}
}

// MinConstraint returns the more restrictive of a and b, preferring a on a
// tie.
func MinConstraint(a, b DimConstraint) DimConstraint {
	if b.Less(a) {
		return b
	}
	return a
}

// Dimensions tracks a view's constraints and its size after the last
// layout pass.
type Dimensions struct {
	Width  DimConstraint
	Height DimConstraint
	Size   CharDims
}

// within clamps the constraint pair by the space a parent offers.
func (d Dimensions) within(parent CharDims) (DimConstraint, DimConstraint) {
	return MinConstraint(d.Width, Fixed(parent.Width)),
		MinConstraint(d.Height, Fixed(parent.Height))
}
