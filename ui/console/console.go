// Package console implements the one-line command prompt at the bottom of
// the dashboard.
package console

import (
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"hex/internal/updates"
	"hex/internal/vt100"
)

const prompt = "> "

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

// Console holds the line being typed and hands it to a dispatcher when
// executed.
type Console struct {
	text     string
	dirty    bool
	dispatch func(line string)
}

// New returns an empty console. dispatch receives every executed line and
// may be nil.
func New(dispatch func(line string)) *Console {
	return &Console{dirty: true, dispatch: dispatch}
}

// Text returns the line being typed.
func (c *Console) Text() string {
	return c.text
}

// Apply handles one keyboard update: execute, backspace, clear-line, or
// text to append.
func (c *Console) Apply(content string) {
	switch content {
	case updates.Execute:
		line := c.text
		c.text = ""
		if line != "" && c.dispatch != nil {
			c.dispatch(line)
		}
	case updates.Backspace:
		if c.text == "" {
			return
		}
		_, size := utf8.DecodeLastRuneInString(c.text)
		c.text = c.text[:len(c.text)-size]
	case updates.ClearLine:
		c.text = ""
	default:
		c.text += content
	}
	c.dirty = true
}

func (c *Console) Dirty() bool {
	return c.dirty
}

func (c *Console) Wash() {
	c.dirty = false
}

func (c *Console) Invalidate() {
	c.dirty = true
}

// Render draws the prompt and the tail of the line on row, padded to
// width so leftovers of a longer line are erased.
func (c *Console) Render(width, row int) string {
	if !c.dirty || width <= 0 || row <= 0 {
		return ""
	}

	text := c.text
	if room := width - utf8.RuneCountInString(prompt); utf8.RuneCountInString(text) > room {
		runes := []rune(text)
		text = string(runes[len(runes)-max(room, 0):])
	}
	return vt100.Goto(1, row) + vt100.Slice(promptStyle.Render(prompt)+text, width)
}
