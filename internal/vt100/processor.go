package vt100

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

const esc = 0x1b

type csiStatus int

const (
	csiIncomplete csiStatus = iota
	csiComplete
	csiInvalid
)

// Processor splits a live, arbitrarily chunked output stream into literal
// text and control sequences. Sequences split across pushes are held until
// they complete. Clear-screen and absolute cursor moves are rewritten into
// the coordinates of the widget that owns the stream; everything else is
// passed through.
//
// A Processor is not safe for concurrent use.
type Processor struct {
	pending []byte
	ready   bytes.Buffer
}

// NewProcessor returns an empty Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Push feeds chunk through the processor. at and size describe the owning
// widget's current region and are used for translation.
func (p *Processor) Push(chunk string, at TermLocation, size CharDims) {
	for i := 0; i < len(chunk); i++ {
		p.feed(chunk[i], at, size)
	}
}

func (p *Processor) feed(c byte, at TermLocation, size CharDims) {
	switch {
	case c == esc:
		// A second ESC can never extend a CSI, so whatever was pending
		// was literal text.
		p.flushPending()
		p.pending = append(p.pending, c)
	case len(p.pending) == 0:
		p.ready.WriteByte(c)
	case len(p.pending) == 1:
		if c == '[' {
			p.pending = append(p.pending, c)
			return
		}
		p.flushPending()
		p.ready.WriteByte(c)
	default:
		p.pending = append(p.pending, c)
		switch classify(p.pending) {
		case csiComplete:
			p.ready.WriteString(translate(string(p.pending), at, size))
			p.pending = p.pending[:0]
		case csiInvalid:
			p.flushPending()
		}
	}
}

func (p *Processor) flushPending() {
	p.ready.Write(p.pending)
	p.pending = p.pending[:0]
}

// Pending returns the bytes of an escape sequence still waiting for more
// input.
func (p *Processor) Pending() string {
	return string(p.pending)
}

// Len returns the number of bytes ready to be drained.
func (p *Processor) Len() int {
	return p.ready.Len()
}

// Ready returns the output that is ready to be written without consuming
// it.
func (p *Processor) Ready() string {
	return p.ready.String()
}

// Drain returns and clears the output that is ready to be written.
func (p *Processor) Drain() string {
	out := p.ready.String()
	p.ready.Reset()
	return out
}

// WriteTo writes the ready output to w and clears it.
func (p *Processor) WriteTo(w io.Writer) (int64, error) {
	return p.ready.WriteTo(w)
}

// Reset drops both pending and ready state.
func (p *Processor) Reset() {
	p.pending = p.pending[:0]
	p.ready.Reset()
}

// classify inspects an ESC [ prefixed sequence.
func classify(seq []byte) csiStatus {
	intermediate := false
	for _, c := range seq[2:] {
		switch {
		case c >= 0x30 && c <= 0x3f && !intermediate:
		case c >= 0x20 && c <= 0x2f:
			intermediate = true
		case c >= 0x40 && c <= 0x7e:
			return csiComplete
		default:
			return csiInvalid
		}
	}
	return csiIncomplete
}

func translate(seq string, at TermLocation, size CharDims) string {
	if seq == ClearScreen {
		return ClearRegion(at, size)
	}
	if row, col, ok := parseCUP(seq); ok {
		return Goto(col+at.X-1, row+at.Y-1)
	}
	return seq
}

// parseCUP reads ESC [ row ; col H. Omitted parameters default to 1.
func parseCUP(seq string) (row, col int, ok bool) {
	body, found := strings.CutPrefix(seq, "\x1b[")
	if !found {
		return 0, 0, false
	}
	body, found = strings.CutSuffix(body, "H")
	if !found {
		return 0, 0, false
	}

	rs, cs, _ := strings.Cut(body, ";")
	if row, ok = cupParam(rs); !ok {
		return 0, 0, false
	}
	if col, ok = cupParam(cs); !ok {
		return 0, 0, false
	}
	return row, col, true
}

func cupParam(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	if n == 0 {
		n = 1
	}
	return n, true
}
