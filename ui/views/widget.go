package views

import "hex/internal/vt100"

// Widget is a leaf that shows a task's text, clipped to its region.
type Widget struct {
	node
	text      string
	formatter vt100.Formatter
	dirty     bool
	drawn     region
}

// NewWidget creates a text widget with the given axis constraints.
func NewWidget(width, height DimConstraint, opts ...Option) *Widget {
	o := applyOptions(opts)
	return &Widget{
		node:      newNode(o, width, height),
		formatter: o.formatter,
		dirty:     true,
	}
}

// Text returns the current content.
func (w *Widget) Text() string {
	return w.text
}

func (w *Widget) Dirty() bool {
	return w.dirty
}

func (w *Widget) Wash() {
	w.dirty = false
	w.drawn = region{at: w.location, size: w.dims.Size}
}

func (w *Widget) Invalidate() {
	w.dirty = true
	w.drawn = region{}
}

// Inflate measures the text and settles on the most restrictive of the
// content size, the widget's constraints and the parent's offer.
func (w *Widget) Inflate(parent CharDims, at TermLocation) CharDims {
	if w.location != at {
		w.location = at
		w.dirty = true
	}

	var size CharDims
	if w.visible && w.text != "" {
		intrinsic := vt100.Measure(w.text)
		width, height := w.dims.within(parent)
		size = CharDims{
			Width:  MinConstraint(UpTo(intrinsic.Width), width).DesiredSize(),
			Height: MinConstraint(UpTo(intrinsic.Height), height).DesiredSize(),
		}
	}

	if size != w.dims.Size {
		w.dims.Size = size
		w.dirty = true
	}
	return size
}

// Render clears whatever the widget last drew elsewhere and formats the
// text into its current region.
func (w *Widget) Render() string {
	return w.clearStale() + w.draw()
}

func (w *Widget) clearStale() string {
	if !w.dirty || !w.visible {
		return ""
	}
	if w.drawn == (region{at: w.location, size: w.dims.Size}) {
		return ""
	}
	return vt100.ClearRegion(w.drawn.at, w.drawn.size)
}

func (w *Widget) draw() string {
	if !w.dirty || !w.visible || w.dims.Size.Empty() {
		return ""
	}
	return w.formatter.Format(w.text, w.dims.Size, w.location)
}

func (w *Widget) Children() []View {
	return nil
}

func (w *Widget) UpdateContent(text string) {
	w.text = text
	w.dirty = true
}
