package ui

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/engine/content"
	"github.com/dshills/quill/internal/fileio"
	"github.com/dshills/quill/internal/session"
)

// Session is what the model needs from a session.Runner.
type Session interface {
	Dispatch(in session.Intent) error
	Updates() <-chan session.State
	State() session.State
}

var _ Session = (*session.Runner)(nil)

type (
	stateMsg      session.State
	requestMsg    *Request
	sessionEndMsg struct{}
)

// Model is the bubbletea model hosting one editing session.
type Model struct {
	session Session
	dialog  *Dialog
	home    string

	keys   KeyMap
	help   help.Model
	editor textarea.Model
	styles Styles

	state  session.State
	loaded bool

	// sent is the text of the last Edit dispatched, so keystrokes that do
	// not change the text produce no intent.
	sent string

	prompt *prompt

	width  int
	height int

	// notice is a transient host message, e.g. a dispatch failure.
	notice string
}

// Option configures a Model.
type Option func(*Model)

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) {
		m.keys = k
	}
}

// WithHomeDir sets the directory "~" expands to in the save prompt.
func WithHomeDir(home string) Option {
	return func(m *Model) {
		m.home = home
	}
}

// New creates a model over s. dialog may be nil when prompts are answered
// elsewhere.
func New(s Session, dialog *Dialog, opts ...Option) Model {
	m := Model{
		session: s,
		dialog:  dialog,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		editor:  textarea.New(),
		width:   80,
		height:  24,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.editor.ShowLineNumbers = false
	m.editor.CharLimit = 0
	m.editor.MaxHeight = 0
	m.editor.Placeholder = "Start typing..."
	m.editor.Focus()
	m.help.ShortSeparator = "  "

	m.applyState(s.State())
	m.resize()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForState(), m.waitForRequest())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		if m.prompt != nil {
			_, cmd := m.prompt.update(msg)
			return m, cmd
		}
		return m, nil

	case stateMsg:
		m.applyState(session.State(msg))
		return m, m.waitForState()

	case sessionEndMsg:
		return m, tea.Quit

	case requestMsg:
		return m.openPrompt(msg)

	}

	if m.prompt != nil {
		if m.promptAbandoned() {
			m.prompt = nil
			m.editor.Focus()
		} else {
			closed, cmd := m.prompt.update(msg)
			if closed {
				m.prompt = nil
				m.editor.Focus()
			}
			return m, cmd
		}
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.handleKey(km); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.syncEdit()
	return m, cmd
}

// handleKey maps global bindings to intents.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	var in session.Intent
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.New):
		in = session.New{}
	case key.Matches(msg, m.keys.Open):
		in = session.Open{}
	case key.Matches(msg, m.keys.Save):
		in = session.Save{}
	case key.Matches(msg, m.keys.SaveAs):
		in = session.SaveAs{}
	case key.Matches(msg, m.keys.Undo):
		in = session.Undo{}
	case key.Matches(msg, m.keys.Redo):
		in = session.Redo{}
	case key.Matches(msg, m.keys.NextTheme):
		in = session.SelectTheme{Theme: config.NextTheme(m.state.Theme)}
	default:
		return nil, false
	}

	// Pending keystrokes go out first so Save writes what is on screen.
	m.syncEdit()
	m.dispatch(in)
	return nil, true
}

// syncEdit dispatches an Edit when the text area differs from what the
// session last heard.
func (m *Model) syncEdit() {
	text := m.editor.Value()
	if text == m.sent {
		return
	}
	m.sent = text
	m.dispatch(session.EditAt(m.state.Revision, content.New(text)))
}

// dispatch hands in to the session. It blocks only while the runner's
// queue is full.
func (m *Model) dispatch(in session.Intent) {
	if err := m.session.Dispatch(in); err != nil {
		m.notice = err.Error()
	}
}

// applyState adopts a published state. The text area is reloaded only when
// the session replaced the content; edits typed locally are already there.
func (m *Model) applyState(s session.State) {
	prev, first := m.state, !m.loaded
	m.state = s
	m.loaded = true

	if first || s.Revision != prev.Revision {
		m.editor.SetValue(s.Content.String())
		m.sent = s.Content.String()
	}
	if first || s.Theme != prev.Theme {
		m.styles = NewStyles(ThemeFor(s.Theme))
	}
	m.notice = ""
}

func (m Model) openPrompt(req *Request) (tea.Model, tea.Cmd) {
	if m.prompt != nil {
		// One prompt at a time; the runner never asks for two.
		req.Dismiss()
		return m, m.waitForRequest()
	}

	dir := m.home
	suggested := ""
	if m.state.Path != "" {
		dir = filepath.Dir(m.state.Path)
		suggested = m.state.Path
	}
	if dir == "" {
		dir = "."
	}

	p, cmd := newPrompt(req, dir, suggested, m.home, m.width, m.editorHeight())
	m.prompt = p
	m.editor.Blur()
	return m, tea.Batch(cmd, m.waitForRequest())
}

// promptAbandoned reports whether the session stopped waiting for the
// current prompt.
func (m Model) promptAbandoned() bool {
	select {
	case <-m.prompt.req.Done():
		return true
	default:
		return false
	}
}

func (m Model) waitForState() tea.Cmd {
	updates := m.session.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return sessionEndMsg{}
		}
		return stateMsg(s)
	}
}

func (m Model) waitForRequest() tea.Cmd {
	if m.dialog == nil {
		return nil
	}
	requests := m.dialog.Requests()
	return func() tea.Msg {
		return requestMsg(<-requests)
	}
}

func (m *Model) resize() {
	m.editor.SetWidth(m.width)
	m.editor.SetHeight(m.editorHeight())
	m.help.Width = max(m.width-2, 0)
}

// editorHeight leaves a row each for the toolbar and the status bar.
func (m Model) editorHeight() int {
	return max(m.height-2, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	body := m.styles.Editor.Render(m.editor.View())
	if m.prompt != nil {
		body = m.styles.Dialog.Width(max(m.width-4, 20)).Render(m.prompt.view())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.toolbarView(), body, m.statusView())
}

func (m Model) toolbarView() string {
	return m.styles.Toolbar.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) statusView() string {
	left := m.styles.Path.Render(DisplayPath(m.state.Path))
	if m.state.Dirty {
		left += m.styles.Dirty.Render(" *")
	}

	switch msg, isErr := StatusMessage(m.state.LastError); {
	case m.notice != "":
		left += m.styles.Error.Render("  " + m.notice)
	case isErr:
		left += m.styles.Error.Render("  " + msg)
	case msg != "":
		left += m.styles.Message.Render("  " + msg)
	}

	right := m.styles.Words.Render(WordCountLabel(m.editor.Value()))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return m.styles.Status.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// DisplayPath is the status bar label for path.
func DisplayPath(path string) string {
	if path == "" {
		return "New file"
	}
	return path
}

// StatusMessage renders the session's last error. A dismissed prompt is a
// quiet "cancelled"; real failures report isErr.
func StatusMessage(err *fileio.Error) (msg string, isErr bool) {
	switch {
	case err == nil:
		return "", false
	case err.Kind == fileio.KindDialogClosed:
		return "cancelled", false
	default:
		return err.Error(), true
	}
}

// WordCountLabel counts whitespace-separated words in text.
func WordCountLabel(text string) string {
	return "Words: " + strconv.Itoa(len(strings.Fields(text)))
}
