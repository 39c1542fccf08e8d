// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and every returned Cmd is run to completion on
// the test goroutine's behalf, so store writes issued by a model (publish,
// add, delete) have finished by the time a Press call returns.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained Cmds one message may trigger.
const MaxDrainDepth = 100

// DefaultCmdTimeout is how long a single Cmd may run before it is dropped.
const DefaultCmdTimeout = 2 * time.Second

// Driver feeds input to a model of type M and keeps the latest value.
type Driver[M tea.Model] struct {
	T       *testing.T
	Model   M
	Timeout time.Duration

	// Quitting is set once tea.QuitMsg comes out of a Cmd.
	Quitting bool
	// Messages records every message produced by a Cmd, in order.
	Messages []tea.Msg
}

// Option configures a Driver.
type Option[M tea.Model] func(*Driver[M])

// WithSize sends a WindowSizeMsg before anything else.
func WithSize[M tea.Model](w, h int) Option[M] {
	return func(d *Driver[M]) {
		d.Send(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithTimeout overrides DefaultCmdTimeout.
func WithTimeout[M tea.Model](timeout time.Duration) Option[M] {
	return func(d *Driver[M]) { d.Timeout = timeout }
}

// New wraps model and runs its Init command.
func New[M tea.Model](t *testing.T, model M, opts ...Option[M]) *Driver[M] {
	t.Helper()
	d := &Driver[M]{T: t, Model: model, Timeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	d.drain(model.Init(), 0)
	return d
}

// Send dispatches msg and drains whatever it triggers.
func (d *Driver[M]) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	cmd := d.update(msg)
	d.drain(cmd, 0)
}

// Press sends each named key in turn. Names follow tea.KeyMsg.String():
// "enter", "esc", "space", "up", "shift+up", "ctrl+c", or plain text,
// which is sent as runes.
func (d *Driver[M]) Press(keys ...string) {
	d.T.Helper()
	for _, k := range keys {
		d.Send(KeyMsg(k))
	}
}

// Type sends s one rune at a time.
func (d *Driver[M]) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// View renders the current model.
func (d *Driver[M]) View() string {
	return d.Model.View()
}

var namedKeys = map[string]tea.KeyType{
	"enter":      tea.KeyEnter,
	"esc":        tea.KeyEsc,
	"tab":        tea.KeyTab,
	"backspace":  tea.KeyBackspace,
	"up":         tea.KeyUp,
	"down":       tea.KeyDown,
	"left":       tea.KeyLeft,
	"right":      tea.KeyRight,
	"shift+up":   tea.KeyShiftUp,
	"shift+down": tea.KeyShiftDown,
	"ctrl+c":     tea.KeyCtrlC,
}

// KeyMsg builds the key message for a key name.
func KeyMsg(name string) tea.KeyMsg {
	if name == "space" || name == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	if kt, ok := namedKeys[name]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

func (d *Driver[M]) update(msg tea.Msg) tea.Cmd {
	updated, cmd := d.Model.Update(msg)
	m, ok := updated.(M)
	if !ok {
		d.T.Fatalf("teatest: Update returned %T, want %T", updated, d.Model)
	}
	d.Model = m
	return cmd
}

func (d *Driver[M]) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := d.run(cmd)
	if msg == nil || isCursorBlink(msg) {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			d.drain(sub, depth+1)
		}
		return
	}

	d.Messages = append(d.Messages, msg)
	if _, ok := msg.(tea.QuitMsg); ok {
		d.Quitting = true
		return
	}
	d.drain(d.update(msg), depth+1)
}

// run executes cmd, giving up after d.Timeout. Cursor blink Cmds sleep on
// a timer and are the usual reason to give up.
func (d *Driver[M]) run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.Timeout):
		d.T.Logf("teatest: command still running after %s, dropped", d.Timeout)
		return nil
	}
}

func isCursorBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
