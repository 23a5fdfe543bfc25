package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkmail-cli/internal/auth"

	"github.com/spf13/cobra"
)

// waitRouter turns the trigger's navigation into a channel the headless
// login command can block on.
type waitRouter struct {
	pushed chan string
}

func newWaitRouter() *waitRouter { return &waitRouter{pushed: make(chan string, 1)} }

func (r *waitRouter) Push(path string) {
	select {
	case r.pushed <- path:
	default:
	}
}

func (r *waitRouter) Refresh() {}

type userView auth.User

func (u userView) Table() ([]string, [][]string) {
	return []string{"LOGIN", "NAME", "EMAIL"}, [][]string{{u.Login, u.Name, u.Email}}
}

func newLoginCmd(app *App) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with GitHub in the browser and print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Env.OAuthConfigured() {
				return writeErr(cmd, fmt.Errorf("%w: set INKMAIL_GITHUB_CLIENT_ID", auth.ErrNotConfigured))
			}
			log, closer, err := app.logger(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closer.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := app.oauthConfig(log)
			cfg.CallbackTimeout = timeout
			p := app.newProvider(cfg)
			defer p.Close()

			r := newWaitRouter()
			tr := auth.NewTrigger(p, r, auth.TriggerOptions{
				RedirectTo: app.Env.CallbackURL(),
				Logger:     log,
			})
			defer tr.Close()

			tr.Login(ctx)
			if !tr.Loading() {
				return writeErr(cmd, errors.New("sign in failed (see log for details)"))
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for the browser sign in to finish...")
			select {
			case <-r.pushed:
			case <-ctx.Done():
				return writeErr(cmd, fmt.Errorf("sign in did not finish: %w", ctx.Err()))
			}
			s := p.Session()
			if s == nil {
				return writeErr(cmd, errors.New("signed in without a session"))
			}
			return writeEnvelope(cmd, app, userView(s.User), "inkmail edit")
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "How long to wait for the browser redirect")
	return cmd
}
