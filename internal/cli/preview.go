package cli

import (
	"fmt"
	"strings"

	"inkmail-cli/internal/publish"
	"inkmail-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newPreviewCmd(app *App) *cobra.Command {
	var width int
	var raw bool
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a document as markdown in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			md := publish.Markdown(doc)
			if !raw {
				md = tui.RenderMarkdown(md, width)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(md, "\n"))
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source instead of rendering it")
	return cmd
}
