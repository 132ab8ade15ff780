package terminal

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"hex/internal/updates"
)

// KeyMap defines the dashboard's key bindings.
type KeyMap struct {
	Quit      key.Binding
	ClearLine key.Binding
	Execute   key.Binding
	Backspace key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ClearLine: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear line"),
		),
		Execute: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run command"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "delete"),
		),
	}
}

// keyModel turns key presses into console and system updates. It renders
// nothing; the compositor owns the screen.
type keyModel struct {
	keys KeyMap
	sink updates.Sink
}

func (m keyModel) Init() tea.Cmd {
	return nil
}

func (m keyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.sink.Send(updates.One(updates.System, updates.Shutdown))
			return m, tea.Quit
		case key.Matches(msg, m.keys.ClearLine):
			m.sink.Send(updates.One(updates.Console, updates.ClearLine))
		case key.Matches(msg, m.keys.Execute):
			m.sink.Send(updates.One(updates.Console, updates.Execute))
		case key.Matches(msg, m.keys.Backspace):
			m.sink.Send(updates.One(updates.Console, updates.Backspace))
		case msg.Type == tea.KeySpace && !msg.Alt:
			m.sink.Send(updates.One(updates.Console, " "))
		case msg.Type == tea.KeyRunes && !msg.Alt && !msg.Paste:
			m.sink.Send(updates.One(updates.Console, string(msg.Runes)))
		}
	case tea.WindowSizeMsg:
		m.sink.Send(updates.One(updates.System, updates.Redraw))
	}
	return m, nil
}

func (m keyModel) View() string {
	return ""
}

// Keyboard reads key presses from a terminal in raw mode.
type Keyboard struct {
	in     io.Reader
	out    io.Writer
	sink   updates.Sink
	keys   KeyMap
	logger *slog.Logger
}

// NewKeyboard reads from in. out is only used to detect window size
// changes and is never drawn to.
func NewKeyboard(in io.Reader, out io.Writer, sink updates.Sink, logger *slog.Logger) *Keyboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Keyboard{in: in, out: out, sink: sink, keys: DefaultKeyMap(), logger: logger}
}

// Run blocks until Ctrl-C is pressed or ctx ends.
func (k *Keyboard) Run(ctx context.Context) error {
	p := tea.NewProgram(
		keyModel{keys: k.keys, sink: k.sink},
		tea.WithContext(ctx),
		tea.WithInput(k.in),
		tea.WithOutput(k.out),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	k.logger.Info("shutting down")
	return nil
}
