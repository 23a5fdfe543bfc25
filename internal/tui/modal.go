package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type modalKind int

const (
	modalNone modalKind = iota
	// modalPrompt collects input for an action that implements
	// toolbar.Prompter.
	modalPrompt
	modalPalette
)

func modalBodyWidth(screenW int) int {
	w := screenW - 12
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

func renderModalBox(screenW int, title, body string) string {
	bodyW := modalBodyWidth(screenW)
	header := lipgloss.NewStyle().
		Bold(true).
		Width(bodyW).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Padding(0, 1).
		Render(title)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(bodyW + 2)
	return box.Render(header + "\n\n" + body)
}

// renderInputLine keeps a textinput on one visual row no wider than bodyW.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)
	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		line = xansi.Truncate(line, bodyW, "")
	}
	return line
}

func newModalInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 2048
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	return in
}

func (m appModel) viewModal() string {
	bodyW := modalBodyWidth(m.width)
	var title, help string
	switch m.modal {
	case modalPrompt:
		title = m.promptLabel
		if m.pending != nil {
			title = m.pending.Name() + ": " + m.promptLabel
		}
		help = "enter: apply   empty: clear   esc: cancel"
	case modalPalette:
		title = "Run action"
		help = "enter: run   esc: close"
	default:
		return ""
	}
	body := renderInputLine(bodyW, m.input.View())
	if m.modal == modalPalette {
		body += "\n\n" + styleMuted().Width(bodyW).Render(strings.Join(m.actionNames(), "  "))
	}
	body += "\n\n" + styleMuted().Width(bodyW).Render(help)
	return renderModalBox(m.width, title, body)
}
