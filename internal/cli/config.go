package cli

import (
	"fmt"
	"strings"

	"inkmail-cli/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change editor preferences (~/.inkmail/config.json)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the config file and where it lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path(app.Env)
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := config.Load(app.Env)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeEnvelope(cmd, app, map[string]any{"path": path, "config": cfg})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: fmt.Sprintf("Set a preference (%s)", strings.Join(config.Keys, ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.Env)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := config.Save(app.Env, cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeEnvelope(cmd, app, cfg, "inkmail config show")
		},
	})
	return cmd
}
