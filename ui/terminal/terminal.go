// Package terminal owns the real terminal: its size, the alternate screen
// and keyboard input.
package terminal

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/sys/unix"

	"hex/internal/vt100"
)

// Terminal is where a frame is written.
type Terminal interface {
	io.Writer
	// Size returns the current size in cells.
	Size() (vt100.CharDims, error)
}

// ProcessTerminal is the terminal attached to this process.
type ProcessTerminal struct {
	out *os.File
}

// NewProcessTerminal wraps out, usually os.Stdout.
func NewProcessTerminal(out *os.File) *ProcessTerminal {
	return &ProcessTerminal{out: out}
}

func (t *ProcessTerminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Size asks the kernel for the window size.
func (t *ProcessTerminal) Size() (vt100.CharDims, error) {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return vt100.CharDims{}, err
	}
	if ws.Col == 0 || ws.Row == 0 {
		return vt100.CharDims{}, errors.New("terminal reports zero size")
	}
	return vt100.Dims(int(ws.Col), int(ws.Row)), nil
}

// Enter switches to the alternate screen, hides the cursor and clears.
func (t *ProcessTerminal) Enter() error {
	_, err := io.WriteString(t.out, ansi.SetAltScreenSaveCursorMode+ansi.HideCursor+ansi.EraseEntireScreen)
	return err
}

// Leave restores the cursor and the main screen.
func (t *ProcessTerminal) Leave() error {
	_, err := io.WriteString(t.out, ansi.ResetStyle+ansi.ShowCursor+ansi.ResetAltScreenSaveCursorMode)
	return err
}
