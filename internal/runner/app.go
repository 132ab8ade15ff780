package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"

	"hex/internal/config"
	"hex/internal/updates"
	"hex/internal/vt100"
)

// DefaultAppSize is used when the main pane has no fixed size.
var DefaultAppSize = vt100.Dims(80, 24)

// App is a program running on a pseudo-terminal. Everything it prints is
// sent, chunk by chunk, to one interactive panel.
type App struct {
	id   string
	cmd  *exec.Cmd
	ptmx *os.File
	done chan struct{}

	once sync.Once
	err  error
}

// StartApp launches a on a pty of the given size and streams its output
// to target.
func StartApp(ctx context.Context, a config.App, size vt100.CharDims, target string, sink updates.Sink) (*App, error) {
	name, args, err := Command{ID: a.ID, Path: a.Path, Line: a.Command}.argv(nil)
	if err != nil {
		return nil, fmt.Errorf("app %s: %w", a.ID, err)
	}
	if size.Empty() {
		size = DefaultAppSize
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = a.Path
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(size.Height),
		Cols: uint16(size.Width),
	})
	if err != nil {
		return nil, fmt.Errorf("start app %s: %w", a.ID, err)
	}

	app := &App{id: a.ID, cmd: cmd, ptmx: ptmx, done: make(chan struct{})}
	go app.pump(target, sink)
	return app, nil
}

func (a *App) pump(target string, sink updates.Sink) {
	defer close(a.done)
	buf := make([]byte, 32*1024)
	for {
		n, err := a.ptmx.Read(buf)
		if n > 0 {
			sink.Send(updates.One(target, string(buf[:n])))
		}
		if err != nil {
			// EOF, or EIO on Linux once the child has exited.
			break
		}
	}
	a.err = a.cmd.Wait()
}

// ID returns the configured app id.
func (a *App) ID() string {
	return a.id
}

// Done is closed after the app exits and its output is drained.
func (a *App) Done() <-chan struct{} {
	return a.done
}

// Err returns the exit error. It is valid after Done is closed.
func (a *App) Err() error {
	<-a.done
	return a.err
}

// Close kills the app and waits for it.
func (a *App) Close() error {
	a.once.Do(func() {
		if a.cmd.Process != nil {
			a.cmd.Process.Kill()
		}
		a.ptmx.Close()
	})
	<-a.done
	return nil
}
