package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"inkmail-cli/internal/config"
	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/logging"
	"inkmail-cli/internal/model"
	"inkmail-cli/internal/publish"
	"inkmail-cli/internal/tui"

	"github.com/spf13/cobra"
)

type editFlags struct {
	skipLogin bool
	code      string
	preview   bool
}

func newEditCmd(app *App) *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the editor (a .md or .json file, or a blank document)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, app, args, f)
		},
	}
	cmd.Flags().BoolVar(&f.skipLogin, "skip-login", false, "Start on the playground even when GitHub sign in is configured")
	cmd.Flags().StringVar(&f.code, "code", "", "Authorization code handed over by a previous redirect (shows the login screen as loading)")
	cmd.Flags().BoolVar(&f.preview, "preview", false, "Show the markdown preview pane")
	return cmd
}

// loadDoc opens path for editing. A path that does not exist yet starts a
// blank document under that name.
func loadDoc(path string) (model.Node, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return model.Node{Type: model.NodeDoc}, "", nil
	}
	name := filepath.Base(path)
	doc, err := publish.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Node{Type: model.NodeDoc}, name, nil
		}
		return model.Node{}, "", err
	}
	return doc, name, nil
}

func runEdit(cmd *cobra.Command, app *App, args []string, f editFlags) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	doc, name, err := loadDoc(path)
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := config.Load(app.Env)
	if err != nil {
		return writeErr(cmd, err)
	}
	// The editor owns the terminal; logs only go to --log-file.
	log, closer, err := logging.File(app.LogFile, app.level)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closer.Close()

	opts := tui.Options{
		Doc:       engine.FromContent(doc),
		FileName:  name,
		Code:      strings.TrimSpace(f.code),
		SkipLogin: f.skipLogin,
		Glyphs:    app.Glyphs,
		Preview:   f.preview,
		Logger:    log,
	}
	if opts.Glyphs == "" {
		opts.Glyphs = app.Env.ResolveGlyphs(cfg)
	}
	if cfg.TUI != nil {
		opts.Preview = opts.Preview || cfg.TUI.Preview
		opts.Theme = cfg.TUI.Theme
	}
	if app.Env.OAuthConfigured() {
		p := app.newProvider(app.oauthConfig(log))
		defer p.Close()
		opts.Provider = p
		opts.RedirectTo = app.Env.CallbackURL()
	} else {
		log.Info().Msg("github client not configured; login screen disabled")
	}
	log.Debug().Str("file", path).Bool("oauth", opts.Provider != nil).Msg("starting editor")
	return tui.Run(cmd.Context(), opts)
}

