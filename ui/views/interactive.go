package views

import "hex/internal/vt100"

// InteractiveWidget passes a live output stream straight to the screen.
// Chunks are rewritten into the widget's frame as they arrive; nothing is
// kept for re-measuring or redrawing.
type InteractiveWidget struct {
	node
	proc  *vt100.Processor
	clear bool
	drawn region
}

// NewInteractiveWidget creates a pass-through widget. A WrapContent axis
// takes everything the parent offers.
func NewInteractiveWidget(width, height DimConstraint, opts ...Option) *InteractiveWidget {
	o := applyOptions(opts)
	return &InteractiveWidget{
		node: newNode(o, width, height),
		proc: vt100.NewProcessor(),
	}
}

func (w *InteractiveWidget) Dirty() bool {
	return w.clear || w.proc.Len() > 0
}

func (w *InteractiveWidget) Wash() {
	w.clear = false
	w.drawn = region{at: w.location, size: w.dims.Size}
	w.proc.Drain()
}

func (w *InteractiveWidget) Invalidate() {
	w.clear = true
	w.drawn = region{}
}

func (w *InteractiveWidget) Inflate(parent CharDims, at TermLocation) CharDims {
	var size CharDims
	if w.visible {
		width, height := w.dims.within(parent)
		size = CharDims{Width: width.DesiredSize(), Height: height.DesiredSize()}
	}
	if at != w.location || size != w.dims.Size {
		w.location = at
		w.dims.Size = size
		w.clear = true
	}
	return size
}

// Render blanks the region after a move or resize, followed by whatever
// stream output is waiting.
func (w *InteractiveWidget) Render() string {
	return w.clearStale() + w.draw()
}

// clearStale blanks the region the widget occupied before it moved.
func (w *InteractiveWidget) clearStale() string {
	if !w.visible || !w.clear {
		return ""
	}
	if w.drawn == (region{at: w.location, size: w.dims.Size}) {
		return ""
	}
	return vt100.ClearRegion(w.drawn.at, w.drawn.size)
}

func (w *InteractiveWidget) draw() string {
	if !w.visible || !w.Dirty() {
		return ""
	}
	out := w.proc.Ready()
	if w.clear {
		out = vt100.ClearRegion(w.location, w.dims.Size) + out
	}
	return out
}

func (w *InteractiveWidget) Children() []View {
	return nil
}

// UpdateContent pushes the next chunk of the stream.
func (w *InteractiveWidget) UpdateContent(chunk string) {
	w.proc.Push(chunk, w.location, w.dims.Size)
}

// Pending returns a partial escape sequence held back from the screen.
func (w *InteractiveWidget) Pending() string {
	return w.proc.Pending()
}
