package cli

import (
	"fmt"
	"strings"

	"inkmail-cli/internal/docs"
	"inkmail-cli/internal/tui"

	"github.com/spf13/cobra"
)

type topicList []docs.Topic

func (l topicList) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{t.Name, t.Title})
	}
	return []string{"TOPIC", "TITLE"}, rows
}

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Read the built-in guides",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeEnvelope(cmd, app, topicList(docs.Topics()), "inkmail docs <topic>")
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("topic", args[0]))
			}
			if !raw {
				md = tui.RenderMarkdown(md, 80)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(md, "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown source")
	return cmd
}
