package console

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"hex/internal/updates"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{"typing", []string{"c", "l", "o", "c", "k"}, "clock"},
		{"backspace", []string{"a", "b", updates.Backspace}, "a"},
		{"backspace on empty", []string{updates.Backspace}, ""},
		{"backspace multibyte", []string{"é", updates.Backspace}, ""},
		{"clear line", []string{"a", "b", updates.ClearLine, "c"}, "c"},
		{"execute clears", []string{"a", updates.Execute}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			for _, in := range tt.input {
				c.Apply(in)
			}
			if c.Text() != tt.want {
				t.Errorf("Text() = %q; want %q", c.Text(), tt.want)
			}
		})
	}
}

func TestExecuteDispatches(t *testing.T) {
	var got []string
	c := New(func(line string) { got = append(got, line) })

	for _, r := range "uptime -p" {
		c.Apply(string(r))
	}
	c.Apply(updates.Execute)
	c.Apply(updates.Execute)

	if len(got) != 1 || got[0] != "uptime -p" {
		t.Errorf("Expected one dispatched line, got %q", got)
	}
}

func TestRender(t *testing.T) {
	c := New(nil)
	c.Apply("ls")

	out := c.Render(10, 24)
	if !strings.HasPrefix(out, "\x1b[24;1H") {
		t.Errorf("Expected cursor on the bottom row, got %q", out)
	}
	if visible := ansi.Strip(out); visible != "> ls      " {
		t.Errorf("Expected padded prompt line, got %q", visible)
	}

	c.Wash()
	if c.Render(10, 24) != "" {
		t.Error("Expected no output when clean")
	}
	c.Invalidate()
	if !c.Dirty() {
		t.Error("Expected dirty after Invalidate")
	}
}

func TestRenderKeepsTail(t *testing.T) {
	c := New(nil)
	c.Apply("abcdefghij")

	visible := ansi.Strip(c.Render(6, 1))
	if visible != "> ghij" {
		t.Errorf("Expected the end of the line to stay visible, got %q", visible)
	}
}
