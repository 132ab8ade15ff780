package views

import "strings"

// LinearLayout stacks its children along one axis. It has no content of
// its own; it is dirty whenever a descendant is.
type LinearLayout struct {
	node
	orientation Orientation
	children    []View
}

// NewLinearLayout creates an empty layout.
func NewLinearLayout(o Orientation, width, height DimConstraint, opts ...Option) *LinearLayout {
	return &LinearLayout{
		node:        newNode(applyOptions(opts), width, height),
		orientation: o,
	}
}

// AddChild appends v to the end of the stack.
func (l *LinearLayout) AddChild(v View) {
	l.children = append(l.children, v)
}

// Orientation returns the stacking axis.
func (l *LinearLayout) Orientation() Orientation {
	return l.orientation
}

func (l *LinearLayout) Dirty() bool {
	for _, c := range l.children {
		if c.Dirty() {
			return true
		}
	}
	return false
}

func (l *LinearLayout) Wash() {
	for _, c := range l.children {
		c.Wash()
	}
}

func (l *LinearLayout) Invalidate() {
	for _, c := range l.children {
		c.Invalidate()
	}
}

// Inflate offers each child what is left of the layout's budget along the
// stacking axis and the full budget across it. The layout then takes the
// children's combined size, capped by its own budget.
func (l *LinearLayout) Inflate(parent CharDims, at TermLocation) CharDims {
	l.location = at
	if !l.visible {
		l.dims.Size = CharDims{}
		return l.dims.Size
	}

	width, height := l.dims.within(parent)
	remaining := CharDims{Width: width.DesiredSize(), Height: height.DesiredSize()}
	origin := at
	var wanted CharDims

	for _, c := range l.children {
		got := c.Inflate(remaining, origin)
		switch l.orientation {
		case Horizontal:
			wanted.Width += got.Width
			wanted.Height = max(wanted.Height, got.Height)
			remaining.Width = max(remaining.Width-got.Width, 0)
			origin.X += got.Width
		case Vertical:
			wanted.Width = max(wanted.Width, got.Width)
			wanted.Height += got.Height
			remaining.Height = max(remaining.Height-got.Height, 0)
			origin.Y += got.Height
		}
	}

	l.dims.Size = CharDims{
		Width:  MinConstraint(Fixed(wanted.Width), width).DesiredSize(),
		Height: MinConstraint(Fixed(wanted.Height), height).DesiredSize(),
	}
	return l.dims.Size
}

// Render emits every stale-region clear in the subtree before any content,
// so a child that moved cannot blank cells a sibling has just drawn.
func (l *LinearLayout) Render() string {
	var b strings.Builder
	for _, phase := range []func(View) string{View.clearStale, View.draw} {
		walk(l, func(v View) bool {
			if !v.Visible() {
				return false
			}
			b.WriteString(phase(v))
			return true
		})
	}
	return b.String()
}

func (l *LinearLayout) clearStale() string { return "" }

func (l *LinearLayout) draw() string { return "" }

func (l *LinearLayout) Children() []View {
	return l.children
}

func (l *LinearLayout) UpdateContent(string) {}
