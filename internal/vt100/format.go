package vt100

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

// ClearScreen is the full-screen erase sequence that gets confined to a
// widget's region.
const ClearScreen = ansi.EraseEntireScreen

// Formatter converts raw task text into a block of exactly size cells,
// anchored at an absolute terminal location.
type Formatter interface {
	Format(text string, size CharDims, at TermLocation) string
}

// VT100Formatter keeps escape sequences intact while clipping.
type VT100Formatter struct{}

// PlainFormatter removes every escape sequence before clipping.
type PlainFormatter struct{}

// Format writes at most size.Height lines of text, each prefixed with its
// own cursor position and cut or padded to size.Width visible cells. Any
// full-screen clear in the text only clears the block's own region. A line
// that sets a style ends with a reset so the style cannot leak into the
// next panel drawn.
func (VT100Formatter) Format(text string, size CharDims, at TermLocation) string {
	var b strings.Builder
	for i, line := range head(Lines(text), size.Height) {
		home := Goto(at.X, at.Y+i)
		kept := Slice(line, size.Width)
		b.WriteString(home)
		b.WriteString(confineClear(kept, at, size, home))
		if setsStyle(kept) {
			b.WriteString(ansi.ResetStyle)
		}
	}
	return b.String()
}

// Format is VT100Formatter.Format on text stripped of control sequences.
func (PlainFormatter) Format(text string, size CharDims, at TermLocation) string {
	return VT100Formatter{}.Format(ansi.Strip(text), size, at)
}

// Slice cuts line to exactly n visible cells, padding with spaces when it
// is shorter. Escape runs cost nothing and are copied whole; a run that
// only follows the last kept cell is dropped.
func Slice(line string, n int) string {
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(line) + n)
	visible := 0
	take := func(text string) {
		for len(text) > 0 && visible < n {
			r, size := utf8.DecodeRuneInString(text)
			if r == utf8.RuneError && size == 1 {
				b.WriteByte(text[0])
			} else {
				b.WriteRune(r)
			}
			text = text[size:]
			visible++
		}
	}

	pos := 0
	for _, span := range Spans(line) {
		take(line[pos:span[0]])
		if visible == n {
			return b.String()
		}
		b.WriteString(line[span[0]:span[1]])
		pos = span[1]
	}
	take(line[pos:])

	if visible < n {
		b.WriteString(strings.Repeat(" ", n-visible))
	}
	return b.String()
}

// ClearRegion blanks size.Height rows of size.Width cells starting at at.
func ClearRegion(at TermLocation, size CharDims) string {
	if size.Empty() {
		return ""
	}
	blank := strings.Repeat(" ", size.Width)
	var b strings.Builder
	for y := 0; y < size.Height; y++ {
		b.WriteString(Goto(at.X, at.Y+y))
		b.WriteString(blank)
	}
	return b.String()
}

// confineClear replaces each full-screen clear in line with a clear of the
// region, then returns the cursor to home so the rest of the line lands
// where it was addressed.
func confineClear(line string, at TermLocation, size CharDims, home string) string {
	if !strings.Contains(line, ClearScreen) {
		return line
	}
	return strings.ReplaceAll(line, ClearScreen, ClearRegion(at, size)+home)
}

func head(lines []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
