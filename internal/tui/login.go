package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const loginLabel = "Continue with GitHub"

func loginButtonStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 2).
		Bold(true).
		Foreground(colorAccentFg).
		Background(colorAccent)
}

func (m appModel) loginLoading() bool {
	return m.loggingIn || (m.trigger != nil && m.trigger.Loading())
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Login):
		return m.startLogin()
	case key.Matches(msg, m.keys.Skip):
		m.screen = screenPlayground
		m.syncPreview(true)
		return m, nil
	case msg.String() == "q":
		return m, tea.Quit
	}
	return m, nil
}

// startLogin runs the trigger off the update loop; the provider opens a
// browser and binds the callback port, and the router reports back through
// the program.
func (m appModel) startLogin() (tea.Model, tea.Cmd) {
	if m.trigger == nil || m.loginLoading() {
		return m, nil
	}
	m.loggingIn = true
	m.loginFailed = false
	tr, ctx := m.trigger, m.ctx
	login := func() tea.Msg {
		tr.Login(ctx)
		return loginDoneMsg{}
	}
	return m, tea.Batch(login, m.spinner.Tick)
}

func (m appModel) finishLogin() (tea.Model, tea.Cmd) {
	m.loggingIn = false
	if m.trigger != nil && !m.trigger.Loading() {
		m.loginFailed = true
	}
	return m, nil
}

func (m appModel) viewLogin() string {
	var btn string
	if m.loginLoading() {
		btn = loginButtonStyle().Render(m.spinner.View() + " Signing in…")
	} else {
		btn = loginButtonStyle().Render(glyphGitHub() + " " + loginLabel)
	}
	lines := []string{
		styleTitle().Render("inkmail"),
		"",
		styleMuted().Render("Write rich text, copy it as email HTML."),
		"",
		btn,
	}
	if m.loginFailed {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(colorErrorFg).Render("Sign in failed. Press enter to try again."))
	}
	lines = append(lines, "", styleMuted().Render("enter: sign in   s: skip   ctrl+q: quit"))
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, block)
}

func (m appModel) clickLogin(x, y int) (tea.Model, tea.Cmd) {
	rows := strings.Split(m.viewLogin(), "\n")
	if y < 0 || y >= len(rows) {
		return m, nil
	}
	row := xansi.Strip(rows[y])
	i := strings.Index(row, loginLabel)
	if i < 0 {
		return m, nil
	}
	// Columns, not bytes: the glyph before the label may be multi-byte. The
	// button starts at most padding+glyph+space columns before the label.
	x0 := xansi.StringWidth(row[:i]) - 2 - xansi.StringWidth(glyphGitHub()) - 1
	x1 := xansi.StringWidth(row[:i]) + xansi.StringWidth(loginLabel) + 2
	if x < x0 || x >= x1 {
		return m, nil
	}
	return m.startLogin()
}
