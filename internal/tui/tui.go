// Package tui is the interactive editor: a login screen and the playground
// with the formatting toolbar.
package tui

import (
	"context"
	"os"

	"inkmail-cli/internal/auth"
	"inkmail-cli/internal/clipboard"
	"inkmail-cli/internal/engine"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

type Options struct {
	Doc      *engine.Document
	FileName string

	// Provider enables the login screen. Nil starts on the playground.
	Provider   auth.Provider
	RedirectTo string
	// Code is an authorization code handed over on startup.
	Code      string
	SkipLogin bool

	Clipboard clipboard.Writer
	Glyphs    string
	Theme     string
	Preview   bool
	Logger    zerolog.Logger
}

// Run starts the editor and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	setGlyphs(parseGlyphs(opts.Glyphs))
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.NewSystem(os.Stdout)
	}

	router := &programRouter{}
	m := newAppModel(ctx, opts, router)
	defer m.close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	router.attach(p.Send)
	_, err := p.Run()
	return err
}
