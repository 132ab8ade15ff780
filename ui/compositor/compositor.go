// Package compositor owns the screen. It routes task output into the view
// tree and writes each frame to the terminal.
package compositor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"hex/internal/config"
	"hex/internal/updates"
	"hex/internal/vt100"
	"hex/ui/console"
	"hex/ui/terminal"
	"hex/ui/views"
)

var origin = vt100.At(1, 1)

// Option configures a Compositor.
type Option func(*Compositor)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Compositor) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConsole reserves the bottom row for con.
func WithConsole(con *console.Console) Option {
	return func(c *Compositor) {
		c.console = con
	}
}

// WithFormatter sets how text widgets format their content.
func WithFormatter(f vt100.Formatter) Option {
	return func(c *Compositor) {
		if f != nil {
			c.formatter = f
		}
	}
}

// Compositor is the single consumer of task updates. It is not safe for
// concurrent use; Run serializes everything.
type Compositor struct {
	root      views.View
	index     index
	store     map[string]string
	term      terminal.Terminal
	console   *console.Console
	formatter vt100.Formatter
	logger    *slog.Logger
	fps       fpsTracker
	unknown   map[string]bool
	running   bool
}

// New builds the view tree for layout. An unknown layout kind is a
// *LayoutError and nothing is built.
func New(layout config.Layout, term terminal.Terminal, opts ...Option) (*Compositor, error) {
	if term == nil {
		return nil, fmt.Errorf("terminal is required")
	}
	c := &Compositor{
		term:      term,
		store:     make(map[string]string),
		unknown:   make(map[string]bool),
		formatter: vt100.VT100Formatter{},
		logger:    slog.Default(),
		running:   true,
	}
	for _, opt := range opts {
		opt(c)
	}

	b := &builder{index: make(index), formatter: c.formatter, logger: c.logger}
	root, err := b.build(layout, "layout")
	if err != nil {
		return nil, err
	}
	c.root, c.index = root, b.index
	return c, nil
}

// Root returns the root of the view tree.
func (c *Compositor) Root() views.View {
	return c.root
}

// Text returns the last text received for a task.
func (c *Compositor) Text(id string) (string, bool) {
	text, ok := c.store[id]
	return text, ok
}

// Running reports whether a shutdown has been requested.
func (c *Compositor) Running() bool {
	return c.running
}

// Update applies a batch and draws one frame.
func (c *Compositor) Update(b updates.Batch) error {
	start := time.Now()
	redraw := c.apply(b)
	if !c.running {
		return nil
	}

	var err error
	if redraw {
		err = c.Redraw()
	} else {
		err = c.Render()
	}
	c.fps.busy += time.Since(start)
	return err
}

// apply routes every entry. It reports whether a full redraw was asked for.
func (c *Compositor) apply(b updates.Batch) bool {
	redraw := false
	for id, content := range b {
		switch id {
		case updates.System:
			switch content {
			case updates.Shutdown:
				c.logger.Info("shutdown requested")
				c.running = false
			case updates.Redraw:
				redraw = true
			}
		case updates.Console:
			if c.console != nil {
				c.console.Apply(content)
			}
		default:
			c.store[id] = content
			leaves, ok := c.index[id]
			if !ok {
				if !c.unknown[id] {
					c.unknown[id] = true
					c.logger.Warn("no panel for task", "task", id)
				}
				continue
			}
			for _, v := range leaves {
				v.UpdateContent(content)
			}
			c.fps.updates++
		}
	}
	return redraw
}

// Render draws everything that changed since the last successful frame.
func (c *Compositor) Render() error {
	size, err := c.term.Size()
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}
	c.logger.Debug("terminal size", "width", size.Width, "height", size.Height)
	return renderCycle(c.term, size, c.root, c.console)
}

// Redraw erases the screen and draws every panel again, as needed after a
// resize.
func (c *Compositor) Redraw() error {
	c.root.Invalidate()
	if c.console != nil {
		c.console.Invalidate()
	}
	if _, err := io.WriteString(c.term, vt100.ClearScreen); err != nil {
		return fmt.Errorf("clear screen: %w", err)
	}
	return c.Render()
}

// renderCycle lays root out within size, leaving the bottom row to con
// when there is one, and writes the frame in a single call. Dirty state is
// only cleared once the write succeeds.
func renderCycle(w io.Writer, size vt100.CharDims, root views.View, con *console.Console) error {
	avail := size
	if con != nil {
		avail.Height = max(avail.Height-1, 0)
	}
	root.Inflate(avail, origin)

	var frame strings.Builder
	frame.WriteString(root.Render())
	if con != nil {
		frame.WriteString(con.Render(size.Width, size.Height))
	}
	if frame.Len() == 0 {
		return nil
	}

	if _, err := io.WriteString(w, frame.String()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	root.Wash()
	if con != nil {
		con.Wash()
	}
	return nil
}

// Run draws the first frame and then applies batches from src until a
// shutdown update arrives, src is closed, or ctx ends.
func (c *Compositor) Run(ctx context.Context, src updates.Source) error {
	if err := c.Redraw(); err != nil {
		c.logger.Warn("initial draw failed", "error", err)
	}

	for c.running {
		b, ok := src.Next(ctx)
		if !ok {
			break
		}
		if err := c.Update(b); err != nil {
			c.logger.Warn("render cycle abandoned", "error", err)
		}
		if now := time.Now(); c.fps.due(now) {
			c.logger.Info("refreshes per second", "rate", fmt.Sprintf("%.2f", c.fps.rate()))
		}
	}
	return nil
}
