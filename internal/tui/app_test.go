package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"inkmail-cli/internal/auth"
	"inkmail-cli/internal/clipboard"
	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/model"
	"inkmail-cli/internal/toolbar"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func alt(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(appModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return am, cmd
}

func newTestModel(t *testing.T, opts Options) appModel {
	t.Helper()
	setGlyphs(glyphSetASCII)
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })
	opts.Logger = zerolog.Nop()
	m := newAppModel(context.Background(), opts, &programRouter{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	m, _ = update(t, m, runes(s))
	return m
}

func TestPlayground_TypingBuildsParagraphs(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "Hi")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "there")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})

	if got := m.doc.JSON().PlainText(); got != "Hi\nther" {
		t.Fatalf("unexpected text %q", got)
	}
	if !strings.Contains(m.View(), "ther") {
		t.Fatalf("expected text in view:\n%s", m.View())
	}
}

func TestPlayground_BoldShortcutTogglesPressedState(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "Hello")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})

	m, _ = update(t, m, alt('b'))
	if !m.doc.IsActive(model.MarkBold) {
		t.Fatal("expected bold after alt+b")
	}
	if !hit(t, m, toolbar.NameBold).Active {
		t.Fatal("expected bold button pressed")
	}

	m, _ = update(t, m, alt('b'))
	if m.doc.IsActive(model.MarkBold) || hit(t, m, toolbar.NameBold).Active {
		t.Fatal("expected bold released after second toggle")
	}
}

func hit(t *testing.T, m appModel, name string) toolbar.Hit {
	t.Helper()
	for _, h := range m.playgroundFrame().bar.Hits {
		if h.Name == name {
			return h
		}
	}
	t.Fatalf("no hit box for %s", name)
	return toolbar.Hit{}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestPlayground_ClickToolbarButton(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "Hello")
	f := m.playgroundFrame()
	h := hit(t, m, toolbar.NameCenter)

	m, _ = update(t, m, click(h.X0, f.barTop+h.Y))
	if !m.doc.IsActiveAttrs(map[string]string{model.AttrTextAlign: model.AlignCenter}) {
		t.Fatal("expected center alignment after click")
	}

	// Clicking between buttons does nothing.
	before := m.doc.Version()
	m, _ = update(t, m, click(0, f.barTop+h.Y))
	if m.doc.Version() != before {
		t.Fatal("click outside buttons must not change the document")
	}
}

func TestPlayground_ClickDocumentMovesCursor(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "Hello")
	f := m.playgroundFrame()

	m, _ = update(t, m, click(2, f.docTop))
	if got := m.doc.Selection().Head; got != (engine.Pos{Block: 0, Offset: 2}) {
		t.Fatalf("unexpected cursor %+v", got)
	}
}

func TestPlayground_LinkPrompt(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "site")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})

	m, _ = update(t, m, alt('k'))
	if m.modal != modalPrompt {
		t.Fatalf("expected prompt modal, got %v", m.modal)
	}
	if !strings.Contains(m.View(), "link: URL") {
		t.Fatalf("expected prompt title in view:\n%s", m.View())
	}
	m = typeText(t, m, "https://x.test")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != modalNone {
		t.Fatal("expected modal closed")
	}
	if got := m.doc.GetAttributes(model.MarkLink)[model.AttrHref]; got != "https://x.test" {
		t.Fatalf("expected link applied, got %q", got)
	}

	// Cancel keeps the link.
	m, _ = update(t, m, alt('k'))
	if m.input.Value() != "https://x.test" {
		t.Fatalf("expected prompt prefilled, got %q", m.input.Value())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.doc.IsActive(model.MarkLink) {
		t.Fatal("cancel must leave the link in place")
	}

	// Clearing the value removes it.
	m, _ = update(t, m, alt('k'))
	for range "https://x.test" {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.doc.IsActive(model.MarkLink) {
		t.Fatal("empty value must remove the link")
	}
}

type recordingClipboard struct {
	mu   sync.Mutex
	got  []string
	fail error
}

func (c *recordingClipboard) Write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.got = append(c.got, s)
	return nil
}

var _ clipboard.Writer = (*recordingClipboard)(nil)

func TestPlayground_EmailCopyShowsToast(t *testing.T) {
	cb := &recordingClipboard{}
	m := newTestModel(t, Options{Clipboard: cb})
	m = typeText(t, m, "Hi")

	m, cmd := update(t, m, alt('m'))
	if len(cb.got) != 1 || !strings.Contains(cb.got[0], "Hi</p>") {
		t.Fatalf("unexpected clipboard writes %v", cb.got)
	}
	if m.toast == nil || m.toast.Title != toolbar.CopiedTitle {
		t.Fatalf("expected copied toast, got %+v", m.toast)
	}
	if cmd == nil {
		t.Fatal("expected toast expiry command")
	}
	if !strings.Contains(m.View(), toolbar.CopiedTitle) {
		t.Fatalf("expected toast in status line:\n%s", m.View())
	}

	m, _ = update(t, m, toastExpiredMsg{seq: m.toastSeq})
	if m.toast != nil {
		t.Fatal("expected toast to expire")
	}
}

func TestPlayground_EmailCopyFailure(t *testing.T) {
	cb := &recordingClipboard{fail: errors.New("no display")}
	m := newTestModel(t, Options{Clipboard: cb})
	m = typeText(t, m, "Hi")

	m, _ = update(t, m, alt('m'))
	if m.toast == nil || m.toast.Title != toolbar.CopyFailedTitle || !strings.Contains(m.toast.Description, "no display") {
		t.Fatalf("expected failure toast, got %+v", m.toast)
	}
}

func TestPlayground_PaletteSuggests(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "x")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.modal != modalPalette {
		t.Fatal("expected palette")
	}
	m = typeText(t, m, "bodl")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.toast == nil || !strings.Contains(m.toast.Description, "Did you mean bold?") {
		t.Fatalf("expected suggestion toast, got %+v", m.toast)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = typeText(t, m, "divider")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.doc.JSON().PlainText(), "---") {
		t.Fatal("expected divider inserted from palette")
	}
}

func TestPlayground_ToolbarFocus(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "abc")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusToolbar {
		t.Fatal("expected toolbar focus")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.doc.IsActive(model.MarkItalic) {
		t.Fatal("expected italic from second toolbar button")
	}
	if m.focus != focusDoc {
		t.Fatal("running an action returns focus to the document")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.toolbarIdx != len(m.actions())-1 {
		t.Fatalf("expected wrap to the last action, got %d", m.toolbarIdx)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.focus != focusDoc {
		t.Fatal("esc returns to the document")
	}
}

func TestPlayground_Preview(t *testing.T) {
	m := newTestModel(t, Options{})
	m = typeText(t, m, "preview me")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if !m.showPreview() {
		t.Fatal("expected preview on")
	}
	if !strings.Contains(xansi.Strip(m.previewVP.View()), "preview me") {
		t.Fatalf("expected rendered markdown in preview:\n%s", m.previewVP.View())
	}
	m = typeText(t, m, "!")
	if !strings.Contains(xansi.Strip(m.previewVP.View()), "preview me!") {
		t.Fatal("expected preview to follow edits")
	}
}

func TestPlayground_BuilderMemoizedAcrossUpdates(t *testing.T) {
	m := newTestModel(t, Options{})
	first := m.actions()
	m = typeText(t, m, "abc")
	second := m.actions()
	if &first[0] != &second[0] {
		t.Fatal("actions must be reused while the editor is the same")
	}
	if err := toolbar.Validate(second); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

type stubProvider struct {
	mu   sync.Mutex
	err  error
	subs []func(auth.Event, *auth.Session)
}

func (p *stubProvider) SignInWithOAuth(context.Context, string, auth.SignInOptions) error {
	return p.err
}

func (p *stubProvider) OnAuthStateChange(fn func(auth.Event, *auth.Session)) auth.Subscription {
	p.mu.Lock()
	p.subs = append(p.subs, fn)
	p.mu.Unlock()
	return auth.SubscriptionFunc(nil)
}

func (p *stubProvider) fire(ev auth.Event) {
	p.mu.Lock()
	subs := append([]func(auth.Event, *auth.Session){}, p.subs...)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(ev, &auth.Session{})
	}
}

// runCmd executes cmd and any batched commands, returning the messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func newLoginModel(t *testing.T, p auth.Provider, code string) (appModel, *[]tea.Msg) {
	t.Helper()
	setGlyphs(glyphSetASCII)
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })
	var sent []tea.Msg
	var mu sync.Mutex
	router := &programRouter{}
	router.attach(func(msg tea.Msg) {
		mu.Lock()
		sent = append(sent, msg)
		mu.Unlock()
	})
	m := newAppModel(context.Background(), Options{Provider: p, Code: code, Logger: zerolog.Nop()}, router)
	t.Cleanup(m.close)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, &sent
}

func TestLogin_FailureResetsLoadingAndRefreshes(t *testing.T) {
	p := &stubProvider{err: errors.New("denied")}
	m, sent := newLoginModel(t, p, "")
	if m.screen != screenLogin {
		t.Fatal("expected login screen")
	}
	if !strings.Contains(m.View(), loginLabel) {
		t.Fatalf("expected login button:\n%s", m.View())
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.loginLoading() {
		t.Fatal("expected loading after enter")
	}
	for _, msg := range runCmd(cmd) {
		m, _ = update(t, m, msg)
	}
	if m.loginLoading() {
		t.Fatal("expected loading cleared after failure")
	}
	if !m.loginFailed || !strings.Contains(m.View(), "Sign in failed") {
		t.Fatal("expected failure message")
	}

	if len(*sent) != 1 {
		t.Fatalf("expected one router message, got %v", *sent)
	}
	if _, ok := (*sent)[0].(refreshMsg); !ok {
		t.Fatalf("expected refresh, got %T", (*sent)[0])
	}
	m, _ = update(t, m, (*sent)[0])
	if m.refreshes != 1 {
		t.Fatalf("expected refresh handled, got %d", m.refreshes)
	}
}

func TestLogin_SignInEventNavigates(t *testing.T) {
	p := &stubProvider{}
	m, sent := newLoginModel(t, p, "")

	p.fire(auth.EventSignedIn)
	if len(*sent) != 1 {
		t.Fatalf("expected route message, got %v", *sent)
	}
	m, _ = update(t, m, (*sent)[0])
	if m.screen != screenPlayground || !m.signedIn {
		t.Fatal("expected playground after sign in")
	}
	if !strings.Contains(m.View(), "signed in") {
		t.Fatalf("expected signed in header:\n%s", m.View())
	}
}

func TestLogin_CodeStartsLoadingAndSkip(t *testing.T) {
	m, _ := newLoginModel(t, &stubProvider{}, "abc")
	if !m.loginLoading() || !strings.Contains(m.View(), "Signing in") {
		t.Fatal("expected loading state with code")
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("login while loading must be ignored")
	}
	m, _ = update(t, m, runes("s"))
	if m.screen != screenPlayground {
		t.Fatal("expected skip to open the playground")
	}
}

func TestLogin_ClickButton(t *testing.T) {
	m, _ := newLoginModel(t, &stubProvider{err: errors.New("x")}, "")
	rows := strings.Split(m.View(), "\n")
	y, x := -1, -1
	for i, r := range rows {
		if j := strings.Index(r, loginLabel); j >= 0 {
			y, x = i, j
		}
	}
	if y < 0 {
		t.Fatal("button not found")
	}
	m, cmd := update(t, m, click(x+2, y))
	if cmd == nil || !m.loggingIn {
		t.Fatal("expected click on the button to start login")
	}
	m, cmd = update(t, m, click(0, 0))
	if cmd != nil {
		t.Fatal("click elsewhere does nothing")
	}
	_ = m
}

func TestRoute_Unknown(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, routeMsg{path: "/nowhere"})
	if m.toast == nil || m.toast.Title != "Unknown route" {
		t.Fatalf("expected unknown route toast, got %+v", m.toast)
	}
}
