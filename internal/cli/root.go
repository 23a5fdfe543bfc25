package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"inkmail-cli/internal/auth"
	"inkmail-cli/internal/clipboard"
	"inkmail-cli/internal/config"
	"inkmail-cli/internal/format"
	"inkmail-cli/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Env        config.Env
	PrettyJSON bool
	Format     string
	LogFile    string
	LogLevel   string
	Glyphs     string

	level     zerolog.Level
	clipboard clipboard.Writer
	// newProvider is swapped in tests to avoid a real browser and port.
	newProvider func(cfg auth.OAuthConfig) oauthProvider
}

// oauthProvider is what the commands need from auth.OAuthProvider.
type oauthProvider interface {
	auth.Provider
	Session() *auth.Session
	Close()
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	if app.newProvider == nil {
		app.newProvider = func(cfg auth.OAuthConfig) oauthProvider { return auth.NewOAuthProvider(cfg) }
	}
	env, envErr := config.LoadEnv()
	app.Env = env

	cmd := &cobra.Command{
		Use:          "inkmail [file]",
		Short:        "Write rich text in the terminal, copy it as email HTML",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Open the editor (login screen first when a GitHub client is configured)
  inkmail

  # Edit a markdown or content-tree file (shortcut for: inkmail edit notes.md)
  inkmail notes.md

  # Email HTML for a document, straight to the clipboard
  inkmail export notes.md --copy

  # The toolbar registry as a table
  inkmail actions --format table
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, app, args, editFlags{})
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if envErr != nil {
			return writeErr(cmd, envErr)
		}
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|edn|table)", app.Format))
		}
		lvl, err := logging.ParseLevel(app.LogLevel)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.level = lvl
		return nil
	}

	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("INKMAIL_FORMAT", "json"), "Output format (json|edn|table)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", env.LogFile, "Append logs to this file (the editor logs nowhere otherwise)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", env.LogLevel, "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.Glyphs, "glyphs", env.Glyphs, "Glyph set for the editor (unicode|ascii)")

	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newPreviewCmd(app))
	cmd.AddCommand(newActionsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// logger builds the logger for non-interactive commands: the log file when
// one is set, stderr otherwise.
func (app *App) logger(cmd *cobra.Command) (zerolog.Logger, io.Closer, error) {
	if strings.TrimSpace(app.LogFile) != "" {
		return logging.File(app.LogFile, app.level)
	}
	return logging.Console(cmd.ErrOrStderr(), app.level), io.NopCloser(nil), nil
}

func (app *App) oauthConfig(log zerolog.Logger) auth.OAuthConfig {
	return auth.OAuthConfig{
		ClientID:     app.Env.ClientID,
		ClientSecret: app.Env.ClientSecret,
		Scopes:       app.Env.Scopes,
		Logger:       log,
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeEnvelope wraps data as {"data": ..., "_hints": [...]}. The table
// format prints the data alone.
func writeEnvelope(cmd *cobra.Command, app *App, data any, hints ...string) error {
	if app.Format == "table" {
		return writeOut(cmd, app, data)
	}
	env := map[string]any{"data": data}
	if len(hints) > 0 {
		env["_hints"] = hints
	}
	return writeOut(cmd, app, env)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
