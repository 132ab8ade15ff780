package config

import (
	"fmt"
	"strings"
)

// IsVisible reports whether the node is shown. Nodes are visible unless
// they say otherwise.
func (l Layout) IsVisible() bool {
	return l.Visible == nil || *l.Visible
}

// Mains counts the nodes in the tree marked as the main pane.
func (l Layout) Mains() int {
	n := 0
	if l.Main {
		n++
	}
	for _, c := range l.Children {
		n += c.Mains()
	}
	return n
}

// MainTask returns the task id of the main pane, if there is one.
func (l Layout) MainTask() (string, bool) {
	if l.Main {
		return l.TaskID, true
	}
	for _, c := range l.Children {
		if id, ok := c.MainTask(); ok {
			return id, true
		}
	}
	return "", false
}

// String renders the tree one node per line, indented two spaces per level.
func (l Layout) String() string {
	var b strings.Builder
	l.write(&b, 0)
	return b.String()
}

func (l Layout) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(l.Kind)
	switch l.Kind {
	case KindLinearLayout:
		orientation := l.Orientation
		if orientation == "" {
			orientation = "unknown"
		}
		fmt.Fprintf(b, " (%s)\n", orientation)
	case KindTextView:
		fmt.Fprintf(b, " (%s)\n", l.TaskID)
	case KindPanel:
		fmt.Fprintf(b, " (%d children)\n", len(l.Children))
	default:
		b.WriteString(" Unknown\n")
	}
	for _, c := range l.Children {
		c.write(b, depth+1)
	}
}
