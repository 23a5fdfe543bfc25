package tui

import (
	"strings"

	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/notify"
	"inkmail-cli/internal/publish"
	"inkmail-cli/internal/toolbar"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// frame is one laid-out playground screen plus the geometry mouse handling
// needs to map clicks back to buttons and document positions.
type frame struct {
	view      string
	bar       toolbar.Bar
	barTop    int
	barH      int
	doc       docView
	docTop    int
	docH      int
	docW      int
	docScroll int
}

func (m appModel) showPreview() bool { return m.preview && m.width >= 60 }

func (m appModel) docWidth() int {
	w := m.width
	if m.showPreview() {
		w = m.width/2 - 1
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m appModel) header() string {
	name := strings.TrimSpace(m.opts.FileName)
	if name == "" {
		name = "untitled"
	}
	parts := []string{styleTitle().Render("inkmail"), styleMuted().Render(glyphSep() + " " + name)}
	if m.signedIn {
		parts = append(parts, styleMuted().Render(glyphSep()+" signed in"))
	}
	return strings.Join(parts, " ")
}

func (m appModel) renderBar() toolbar.Bar {
	focus := ""
	acts := m.actions()
	if m.focus == focusToolbar && m.toolbarIdx >= 0 && m.toolbarIdx < len(acts) {
		focus = acts[m.toolbarIdx].Name()
	}
	return toolbar.Render(m.doc, acts, toolbar.RenderOptions{
		ASCII: asciiGlyphs(),
		Focus: focus,
		Width: m.width,
	})
}

func (m appModel) playgroundFrame() frame {
	var f frame
	header := m.header()
	f.bar = m.renderBar()
	f.barTop = lipgloss.Height(header)
	f.barH = lipgloss.Height(f.bar.View)
	f.docTop = f.barTop + f.barH + 1
	f.docH = m.height - f.docTop - 1
	if f.docH < 3 {
		f.docH = 3
	}
	f.docW = m.docWidth()
	f.doc = renderDocument(m.doc, f.docW, m.focus == focusDoc && m.modal == modalNone)
	f.docScroll = scrollFor(f.doc, m.doc.Selection().Head, f.docH)

	end := f.docScroll + f.docH
	if end > len(f.doc.lines) {
		end = len(f.doc.lines)
	}
	body := lipgloss.NewStyle().
		Width(f.docW).
		Height(f.docH).
		MaxHeight(f.docH).
		Render(strings.Join(f.doc.lines[f.docScroll:end], "\n"))
	if m.showPreview() {
		pane := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorBorder).
			PaddingLeft(1).
			Render(m.previewVP.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", pane)
	}
	f.view = strings.Join([]string{header, f.bar.View, "", body, m.statusLine()}, "\n")
	return f
}

// scrollFor keeps the row holding head inside a window of h rows.
func scrollFor(v docView, head engine.Pos, h int) int {
	row := 0
	for i, ref := range v.refs {
		if ref.block == head.Block && head.Offset >= ref.start && head.Offset <= ref.end {
			row = i
			break
		}
	}
	if row < h {
		return 0
	}
	return row - h + 1
}

// syncPreview re-renders the markdown preview when the document or the pane
// size changed.
func (m *appModel) syncPreview(force bool) {
	if !m.showPreview() {
		return
	}
	f := m.playgroundFrame()
	w := m.width - f.docW - 3
	if w < 10 {
		w = 10
	}
	m.previewVP.Width = w
	m.previewVP.Height = f.docH
	if !force && w == m.previewWidth && m.doc.Version() == m.previewVersion {
		return
	}
	m.previewWidth = w
	m.previewVersion = m.doc.Version()
	m.previewVP.SetContent(renderMarkdown(publish.Markdown(m.doc.JSON()), w))
}

func (m appModel) updatePlayground(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone {
		return m.updateModal(msg)
	}
	switch {
	case key.Matches(msg, m.keys.Palette):
		return m.openPalette()
	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
		m.syncPreview(true)
		return m, nil
	case m.showPreview() && (msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown):
		var cmd tea.Cmd
		m.previewVP, cmd = m.previewVP.Update(msg)
		return m, cmd
	}
	for _, a := range m.actions() {
		if b, ok := actionKeys[a.Name()]; ok && key.Matches(msg, b) {
			return m.activate(a.Name())
		}
	}
	if m.focus == focusToolbar {
		return m.updateToolbarFocus(msg)
	}
	return m.updateEditing(msg)
}

func (m appModel) updateToolbarFocus(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.actions())
	switch {
	case key.Matches(msg, m.keys.FocusNext), key.Matches(msg, m.keys.Cancel):
		m.focus = focusDoc
	case key.Matches(msg, m.keys.ToolbarPrev):
		m.toolbarIdx = (m.toolbarIdx - 1 + n) % n
	case key.Matches(msg, m.keys.ToolbarNext):
		m.toolbarIdx = (m.toolbarIdx + 1) % n
	case key.Matches(msg, m.keys.Activate):
		return m.activate(m.actions()[m.toolbarIdx].Name())
	case msg.String() == ":":
		return m.openPalette()
	}
	return m, nil
}

func (m appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.doc
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		m.focus = focusToolbar
		return m, nil
	case tea.KeyLeft:
		d.Move(engine.Left, false)
	case tea.KeyRight:
		d.Move(engine.Right, false)
	case tea.KeyUp:
		d.Move(engine.Up, false)
	case tea.KeyDown:
		d.Move(engine.Down, false)
	case tea.KeyShiftLeft:
		d.Move(engine.Left, true)
	case tea.KeyShiftRight:
		d.Move(engine.Right, true)
	case tea.KeyShiftUp:
		d.Move(engine.Up, true)
	case tea.KeyShiftDown:
		d.Move(engine.Down, true)
	case tea.KeyHome:
		d.Move(engine.LineStart, false)
	case tea.KeyEnd:
		d.Move(engine.LineEnd, false)
	case tea.KeyShiftHome:
		d.Move(engine.LineStart, true)
	case tea.KeyShiftEnd:
		d.Move(engine.LineEnd, true)
	case tea.KeyCtrlA:
		d.SelectAll()
	case tea.KeyEnter:
		d.Chain().Focus().SplitBlock().Run()
	case tea.KeyBackspace:
		d.Chain().Focus().DeleteBackward().Run()
	case tea.KeyDelete:
		if d.Selection().Empty() {
			d.Move(engine.Right, true)
		}
		d.Chain().Focus().DeleteSelection().Run()
	case tea.KeySpace:
		d.Chain().Focus().InsertText(" ").Run()
	case tea.KeyRunes:
		if msg.Alt {
			return m, nil
		}
		d.Chain().Focus().InsertText(string(msg.Runes)).Run()
	default:
		return m, nil
	}
	m.syncPreview(false)
	return m, nil
}

func (m appModel) openPalette() (tea.Model, tea.Cmd) {
	m.modal = modalPalette
	m.pending = nil
	m.input = newModalInput("action name", "")
	return m, textinput.Blink
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.pending = nil
	m.promptLabel = ""
	m.input.Blur()
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a := m.pending
		kind := m.modal
		m.closeModal()
		if kind == modalPrompt && a != nil {
			m.prompt.stage("", false)
			return m.execute(a)
		}
		return m, nil
	case tea.KeyEnter:
		val := strings.TrimSpace(m.input.Value())
		a := m.pending
		kind := m.modal
		m.closeModal()
		if kind == modalPrompt && a != nil {
			m.prompt.stage(val, true)
			return m.execute(a)
		}
		if val == "" {
			return m, nil
		}
		return m.activate(strings.ToLower(val))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// activate runs an action by name. Actions that prompt open the input modal
// first and run once it closes.
func (m appModel) activate(name string) (tea.Model, tea.Cmd) {
	acts := m.actions()
	a, ok := toolbar.Lookup(acts, name)
	if !ok {
		desc := "No action named " + name + "."
		if s, ok := toolbar.Suggest(acts, name); ok {
			desc += " Did you mean " + s + "?"
		}
		m.toasts.Emit(notify.Error("Unknown action", desc))
		return m, m.showToasts()
	}
	if p, ok := a.(toolbar.Prompter); ok {
		label, initial := p.Prompts()
		m.modal = modalPrompt
		m.pending = a
		m.promptLabel = label
		m.input = newModalInput("https://", initial)
		return m, textinput.Blink
	}
	return m.execute(a)
}

func (m appModel) execute(a toolbar.Action) (tea.Model, tea.Cmd) {
	a.Execute()
	m.log.Debug().Str("action", a.Name()).Uint64("version", m.doc.Version()).Msg("action executed")
	m.focus = focusDoc
	m.syncPreview(false)
	return m, m.showToasts()
}

func (m appModel) clickPlayground(x, y int) (tea.Model, tea.Cmd) {
	f := m.playgroundFrame()
	if y >= f.barTop && y < f.barTop+f.barH {
		if name, ok := f.bar.At(x, y-f.barTop); ok {
			return m.activate(name)
		}
		return m, nil
	}
	if y >= f.docTop && y < f.docTop+f.docH && x < f.docW {
		if pos, ok := f.doc.posAt(x, y-f.docTop+f.docScroll); ok {
			m.doc.SetSelection(pos, pos)
			m.doc.Chain().Focus().Run()
			m.focus = focusDoc
		}
	}
	return m, nil
}
