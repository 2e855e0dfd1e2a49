package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/quill/internal/config"
)

// prompt is the modal shown while a Request is pending: a file browser for
// open and a path field for save.
type prompt struct {
	req    *Request
	home   string
	keys   dialogKeys
	picker filepicker.Model
	input  textinput.Model
}

// newPrompt builds the widget for req. dir is where browsing starts and
// suggested prefills the save field; "~/" in a typed path expands to home.
func newPrompt(req *Request, dir, suggested, home string, width, height int) (*prompt, tea.Cmd) {
	p := &prompt{req: req, home: home, keys: defaultDialogKeys()}

	if req.Kind == DialogOpen {
		p.picker = filepicker.New()
		p.picker.CurrentDirectory = dir
		p.picker.AutoHeight = true
		p.picker.ShowPermissions = false
		var cmd tea.Cmd
		p.picker, cmd = p.picker.Update(tea.WindowSizeMsg{Width: width, Height: height})
		return p, tea.Batch(p.picker.Init(), cmd)
	}

	p.input = textinput.New()
	p.input.Prompt = "Save to: "
	p.input.Placeholder = filepath.Join(dir, "untitled.txt")
	p.input.SetValue(suggested)
	p.input.CursorEnd()
	p.input.Width = max(width-16, 10)
	return p, p.input.Focus()
}

// update routes msg to the widget. It reports true once the request has
// been answered and the prompt should close.
func (p *prompt) update(msg tea.Msg) (bool, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, p.keys.Cancel):
			p.req.Dismiss()
			return true, nil
		case p.req.Kind == DialogSave && key.Matches(km, p.keys.Confirm):
			p.req.Answer(config.ExpandHome(strings.TrimSpace(p.input.Value()), p.home))
			return true, nil
		}
	}

	var cmd tea.Cmd
	if p.req.Kind == DialogOpen {
		p.picker, cmd = p.picker.Update(msg)
		if ok, path := p.picker.DidSelectFile(msg); ok {
			p.req.Answer(path)
			return true, cmd
		}
		return false, cmd
	}

	p.input, cmd = p.input.Update(msg)
	return false, cmd
}

func (p *prompt) view() string {
	if p.req.Kind == DialogOpen {
		return p.req.Title + "\n\n" + p.picker.View()
	}
	return p.req.Title + "\n\n" + p.input.View()
}
