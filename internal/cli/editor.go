package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/editbuffer"
	"github.com/alexanderramin/waypoint/internal/service"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type editorMode int

const (
	modeBrowse editorMode = iota
	modeRename
	modeAdd
)

type editorKeys struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Rename   key.Binding
	Add      key.Binding
	Delete   key.Binding
	Toggle   key.Binding
	Publish  key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newEditorKeys() editorKeys {
	return editorKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
		Rename:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "rename")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "done")),
		Publish:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "publish")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "discard edits")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k editorKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Rename, k.Toggle, k.Publish, k.Help, k.Quit}
}

func (k editorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown},
		{k.Rename, k.Add, k.Delete, k.Toggle},
		{k.Publish, k.Reload, k.Help, k.Quit},
	}
}

// publishedMsg carries the outcome of a background publish.
type publishedMsg struct {
	res contract.PublishResult
	err error
}

// storeDoneMsg carries the outcome of an immediate store write.
type storeDoneMsg struct {
	action string
	err    error
}

// editorModel edits one project collection through its buffer. Reorders and
// field edits stay local until published; adds and deletes hit the store
// right away.
type editorModel[T editbuffer.Element[T]] struct {
	ctx     context.Context
	app     *App
	col     collection[T]
	project *domain.Project
	buf     *editbuffer.Buffer[T]

	keys  editorKeys
	help  help.Model
	input textinput.Model

	mode      editorMode
	cursor    int
	status    string
	busy      bool
	quitArmed bool
}

func newEditorModel[T editbuffer.Element[T]](ctx context.Context, app *App, col collection[T], p *domain.Project, b *editbuffer.Buffer[T]) editorModel[T] {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 200
	ti.Cursor.SetMode(cursor.CursorStatic)
	return editorModel[T]{
		ctx:     ctx,
		app:     app,
		col:     col,
		project: p,
		buf:     b,
		keys:    newEditorKeys(),
		help:    help.New(),
		input:   ti,
	}
}

// runEditor runs the editor until the user quits.
func runEditor[T editbuffer.Element[T]](ctx context.Context, app *App, col collection[T], p *domain.Project, b *editbuffer.Buffer[T]) error {
	final, err := tea.NewProgram(newEditorModel(ctx, app, col, p, b), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(editorModel[T]); ok && m.buf.Dirty() {
		fmt.Println(formatter.Warning("Unpublished changes were discarded."))
	}
	return nil
}

func (m editorModel[T]) Init() tea.Cmd { return nil }

func (m editorModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case publishedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = formatter.StyleRed.Render("publish failed: "+msg.err.Error()) +
				formatter.Dim(" (edits kept, p to retry)")
		} else {
			m.status = formatter.StyleGreen.Render(fmt.Sprintf("published %d/%d", msg.res.Batch.Succeeded, msg.res.Batch.Attempted))
		}
		return m, nil

	case storeDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = formatter.StyleRed.Render(msg.err.Error())
		} else {
			m.status = msg.action
		}
		m.clampCursor()
		if msg.action == "added" && msg.err == nil {
			m.cursor = len(m.buf.Snapshot().Items) - 1
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m editorModel[T]) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.buf.Dirty() && !m.quitArmed {
			m.quitArmed = true
			m.status = formatter.StyleYellow.Render("unpublished changes; press q again to discard them")
			return m, nil
		}
		return m, tea.Quit
	}
	m.quitArmed = false

	if m.busy {
		m.status = formatter.Dim("busy…")
		return m, nil
	}

	items := m.buf.Snapshot().Items
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 {
			m.report(m.buf.Reorder(m.cursor, m.cursor-1))
			m.cursor--
		}
	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor < len(items)-1 {
			m.report(m.buf.Reorder(m.cursor, m.cursor+1))
			m.cursor++
		}
	case key.Matches(msg, m.keys.Rename):
		if len(items) > 0 {
			m.mode = modeRename
			m.input.SetValue(m.col.title(items[m.cursor]))
			m.input.CursorEnd()
			cmd := m.input.Focus()
			return m, cmd
		}
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "title"
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if len(items) > 0 {
			id := items[m.cursor].ElementID()
			m.busy = true
			return m, func() tea.Msg {
				return storeDoneMsg{action: "deleted", err: m.buf.Delete(m.ctx, id)}
			}
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(items) > 0 {
			it := items[m.cursor]
			m.report(m.buf.EditField(it.ElementID(), domain.FieldCompleted, strconv.FormatBool(!m.col.completed(it))))
		}
	case key.Matches(msg, m.keys.Publish):
		m.busy = true
		m.status = formatter.Dim("publishing…")
		return m, func() tea.Msg {
			res, err := service.PublishObserved(m.ctx, m.app.Collections.Observer(), m.col.name, m.buf)
			return publishedMsg{res: res, err: err}
		}
	case key.Matches(msg, m.keys.Reload):
		m.busy = true
		return m, func() tea.Msg {
			return storeDoneMsg{action: "reloaded", err: m.buf.Load(m.ctx)}
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m editorModel[T]) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		if mode == modeAdd {
			m.busy = true
			return m, func() tea.Msg {
				_, err := m.buf.Add(m.ctx, value)
				return storeDoneMsg{action: "added", err: err}
			}
		}
		items := m.buf.Snapshot().Items
		if m.cursor < len(items) {
			m.report(m.buf.EditField(items[m.cursor].ElementID(), domain.FieldTitle, value))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// report shows err in the status line, or clears it.
func (m *editorModel[T]) report(err error) {
	if err != nil {
		m.status = formatter.StyleRed.Render(err.Error())
		return
	}
	m.status = ""
}

func (m *editorModel[T]) clampCursor() {
	n := len(m.buf.Snapshot().Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m editorModel[T]) View() string {
	snap := m.buf.Snapshot()
	now := m.app.now()

	var b strings.Builder
	title := strings.ToUpper(fmt.Sprintf("%s · %s", m.project.DisplayID(), m.col.name))
	b.WriteString(formatter.StyleHeader.Render(title) + "  " + formatter.StateBadge(snap.State) + "\n\n")

	if len(snap.Items) == 0 {
		b.WriteString(formatter.Dim("  empty, press a to add") + "\n")
	}
	for i, it := range snap.Items {
		cursor := "  "
		if i == m.cursor {
			cursor = formatter.StyleHeader.Render("› ")
		}
		mark := formatter.Dim("○ ")
		if m.col.completed(it) {
			mark = formatter.StyleGreen.Render("✔ ")
		}
		b.WriteString(fmt.Sprintf("%s%s%s%s\n", cursor, formatter.Dim(fmt.Sprintf("%2d. ", i+1)), mark, m.col.row(it, now)))
	}

	if m.mode != modeBrowse {
		label := "Rename"
		if m.mode == modeAdd {
			label = "New entry"
		}
		b.WriteString("\n" + formatter.Bold(label) + "\n" + m.input.View() + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
