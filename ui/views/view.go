// Package views implements the panel tree of the dashboard: text widgets,
// pass-through interactive widgets and linear layouts that stack them.
//
// Layout is two-pass. Inflate walks the tree with the space each parent can
// offer and records every node's absolute size and location; Render then
// produces cursor-addressed output for the nodes whose on-screen state is
// stale. Wash marks the rendered state as current.
package views

import (
	"github.com/google/uuid"

	"hex/internal/vt100"
)

// ViewID identifies a node in the tree.
type ViewID string

// View is the capability shared by every node kind. The set of kinds is
// closed: Widget, InteractiveWidget and LinearLayout.
type View interface {
	ID() ViewID
	// Dirty reports whether the node or any descendant needs a redraw.
	Dirty() bool
	// Wash records that the last Render output reached the screen.
	Wash()
	// Invalidate forces a full redraw, assuming the screen was erased.
	Invalidate()
	// Inflate sizes the node within parent and anchors it at at.
	Inflate(parent CharDims, at TermLocation) CharDims
	Constraints() (width, height DimConstraint)
	Width() int
	Height() int
	Location() TermLocation
	Visible() bool
	// Render returns cursor-addressed output for the node's region, or ""
	// when nothing changed.
	Render() string
	Children() []View
	// UpdateContent replaces a leaf's content. Layouts ignore it.
	UpdateContent(text string)

	// clearStale blanks the cells a leaf occupied when it was last drawn,
	// if it has since moved or changed size. draw writes the leaf's current
	// content. Layouts return "" from both.
	clearStale() string
	draw() string

	sealed()
}

// Orientation is the stacking axis of a LinearLayout.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// ParseOrientation maps "vertical" to Vertical and anything else to
// Horizontal.
func ParseOrientation(s string) Orientation {
	if s == "vertical" {
		return Vertical
	}
	return Horizontal
}

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Option configures a view at construction.
type Option func(*options)

type options struct {
	id        ViewID
	hidden    bool
	formatter vt100.Formatter
}

// WithID sets the view's identifier instead of a generated one.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = ViewID(id)
		}
	}
}

// Hidden creates the view invisible.
func Hidden() Option {
	return func(o *options) {
		o.hidden = true
	}
}

// WithFormatter sets how a Widget turns its text into screen output.
func WithFormatter(f vt100.Formatter) Option {
	return func(o *options) {
		if f != nil {
			o.formatter = f
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{formatter: vt100.VT100Formatter{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.id == "" {
		o.id = ViewID(uuid.NewString())
	}
	return o
}

// node holds the state every view kind shares.
type node struct {
	id       ViewID
	dims     Dimensions
	location TermLocation
	visible  bool
}

func newNode(o options, width, height DimConstraint) node {
	return node{
		id:       o.id,
		dims:     Dimensions{Width: width, Height: height},
		location: TermLocation{X: 1, Y: 1},
		visible:  !o.hidden,
	}
}

func (n *node) ID() ViewID { return n.id }
func (n *node) Constraints() (DimConstraint, DimConstraint) { return n.dims.Width, n.dims.Height }
func (n *node) Width() int { return n.dims.Size.Width }
func (n *node) Height() int { return n.dims.Size.Height }
func (n *node) Location() TermLocation { return n.location }
func (n *node) Visible() bool { return n.visible }
func (n *node) sealed() {}

// region is a rectangle that was drawn on screen.
type region struct {
	at   TermLocation
	size CharDims
}

// walk visits v and then its descendants depth first. Returning false from
// fn skips the descendants of the view it was called with.
func walk(v View, fn func(View) bool) {
	if !fn(v) {
		return
	}
	for _, c := range v.Children() {
		walk(c, fn)
	}
}
