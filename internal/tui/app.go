package tui

import (
	"context"
	"strings"
	"time"

	"inkmail-cli/internal/auth"
	"inkmail-cli/internal/emailhtml"
	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/notify"
	"inkmail-cli/internal/toolbar"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

type screen int

const (
	screenLogin screen = iota
	screenPlayground
)

type focusArea int

const (
	focusDoc focusArea = iota
	focusToolbar
)

const toastTTL = 4 * time.Second

type toastExpiredMsg struct{ seq int }

type loginDoneMsg struct{}

// stagedPrompt answers the link action's synchronous prompt with a value the
// modal collected beforehand. Without a staged answer it reports cancel.
type stagedPrompt struct {
	value  string
	ok     bool
	staged bool
}

func (p *stagedPrompt) stage(value string, ok bool) {
	p.value, p.ok, p.staged = value, ok, true
}

func (p *stagedPrompt) Ask(string, string) (string, bool) {
	if !p.staged {
		return "", false
	}
	p.staged = false
	return p.value, p.ok
}

type appModel struct {
	ctx  context.Context
	opts Options
	log  zerolog.Logger

	width  int
	height int

	screen      screen
	signedIn    bool
	trigger     *auth.Trigger
	spinner     spinner.Model
	loggingIn   bool
	loginFailed bool

	doc     *engine.Document
	builder *toolbar.Builder
	prompt  *stagedPrompt
	toasts  *notify.Queue

	focus      focusArea
	toolbarIdx int

	modal       modalKind
	input       textinput.Model
	pending     toolbar.Action
	promptLabel string

	preview        bool
	previewVP      viewport.Model
	previewVersion uint64
	previewWidth   int

	toast    *notify.Toast
	toastSeq int

	refreshes int

	keys keyMap
	help help.Model
}

func newAppModel(ctx context.Context, opts Options, router auth.Router) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	doc := opts.Doc
	if doc == nil {
		doc = engine.New()
	}
	m := appModel{
		ctx:     ctx,
		opts:    opts,
		log:     opts.Logger,
		width:   80,
		height:  24,
		screen:  screenPlayground,
		doc:     doc,
		prompt:  &stagedPrompt{},
		toasts:  &notify.Queue{},
		preview: opts.Preview,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	queue, logEmitter := m.toasts, notify.Log{Logger: opts.Logger}
	m.builder = toolbar.NewBuilder(toolbar.Deps{
		Prompt: m.prompt,
		Notifier: notify.Func(func(t notify.Toast) {
			queue.Emit(t)
			logEmitter.Emit(t)
		}),
		Clipboard: opts.Clipboard,
		Serialize: emailhtml.Render,
		Logger:    opts.Logger,
	})

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(colorAccent)))
	if opts.Provider != nil {
		m.trigger = auth.NewTrigger(opts.Provider, router, auth.TriggerOptions{
			RedirectTo: opts.RedirectTo,
			Code:       opts.Code,
			Logger:     opts.Logger,
		})
		if !opts.SkipLogin {
			m.screen = screenLogin
		}
	}
	m.previewVP = viewport.New(40, 10)
	return m
}

func (m appModel) actions() []toolbar.Action {
	return m.builder.Actions(m.doc)
}

func (m appModel) actionNames() []string {
	acts := m.actions()
	out := make([]string, 0, len(acts))
	for _, a := range acts {
		out = append(out, a.Name())
	}
	return out
}

// close releases the auth subscription; call before the program exits.
func (m appModel) close() {
	if m.trigger != nil {
		m.trigger.Close()
	}
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("inkmail")}
	if m.screen == screenLogin && m.trigger.Loading() {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncPreview(true)
		return m, nil

	case routeMsg:
		return m.route(msg.path)

	case refreshMsg:
		m.refreshes++
		m.syncPreview(false)
		return m, nil

	case loginDoneMsg:
		return m.finishLogin()

	case spinner.TickMsg:
		if m.screen != screenLogin || !m.loginLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case tea.KeyMsg:
		if key := msg.String(); key == "ctrl+c" || key == "ctrl+q" {
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		return m.updatePlayground(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.screen == screenLogin {
			return m.clickLogin(msg.X, msg.Y)
		}
		if m.modal != modalNone {
			return m, nil
		}
		return m.clickPlayground(msg.X, msg.Y)
	}

	if m.modal != modalNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) route(path string) (tea.Model, tea.Cmd) {
	switch path {
	case pathPlayground:
		if m.screen == screenLogin {
			m.signedIn = true
		}
		m.screen = screenPlayground
		m.syncPreview(true)
	case pathLogin:
		if m.trigger == nil {
			return m, nil
		}
		m.screen = screenLogin
	default:
		m.toasts.Emit(notify.Error("Unknown route", path))
		return m, m.showToasts()
	}
	return m, nil
}

// showToasts moves queued toasts into the status line. Only the latest is
// shown; it expires after toastTTL.
func (m *appModel) showToasts() tea.Cmd {
	ts := m.toasts.Drain()
	if len(ts) == 0 {
		return nil
	}
	last := ts[len(ts)-1]
	m.toast = &last
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func (m appModel) View() string {
	if m.screen == screenLogin {
		return m.viewLogin()
	}
	if m.modal != modalNone {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.viewModal())
	}
	return m.playgroundFrame().view
}

func (m appModel) statusLine() string {
	if t := m.toast; t != nil {
		st := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
		if t.Level == notify.LevelError {
			st = st.Foreground(colorErrorFg)
		}
		line := st.Render(t.Title)
		if strings.TrimSpace(t.Description) != "" {
			line += " " + styleMuted().Render(t.Description)
		}
		return line
	}
	m.help.Width = m.width
	return m.help.View(editorHelp{keys: m.keys, toolbar: m.focus == focusToolbar})
}
