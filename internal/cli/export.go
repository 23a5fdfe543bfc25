package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inkmail-cli/internal/clipboard"
	"inkmail-cli/internal/emailhtml"
	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/model"
	"inkmail-cli/internal/notify"
	"inkmail-cli/internal/publish"
	"inkmail-cli/internal/toolbar"

	"github.com/spf13/cobra"
)

// readDoc loads a document that must exist.
func readDoc(path string) (model.Node, error) {
	doc, err := publish.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Node{}, errNotFound("file", path)
	}
	return doc, err
}

func newExportCmd(app *App) *cobra.Command {
	var copyHTML bool
	var toDir string
	var name string
	var formats []string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Email HTML for a document (stdout, clipboard, or files with --to)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDoc(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			if strings.TrimSpace(toDir) != "" {
				if name == "" {
					base := filepath.Base(args[0])
					name = strings.TrimSuffix(base, filepath.Ext(base))
				}
				res, err := publish.Write(doc, toDir, name, publish.WriteOptions{
					Formats:   formats,
					Overwrite: overwrite,
					Pretty:    app.PrettyJSON,
				})
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeEnvelope(cmd, app, res, "inkmail export "+args[0]+" --copy", "inkmail preview "+args[0])
			}

			if !copyHTML {
				html, err := emailhtml.Render(doc.Content)
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
				return err
			}
			return copyEmail(cmd, app, doc)
		},
	}
	cmd.Flags().BoolVar(&copyHTML, "copy", false, "Copy the HTML to the clipboard instead of printing it")
	cmd.Flags().StringVar(&toDir, "to", "", "Write files to this directory instead")
	cmd.Flags().StringVar(&name, "name", "", "Base file name for --to (default: input name)")
	cmd.Flags().StringSliceVar(&formats, "formats", nil, "Formats for --to: md,html,json (default all)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files with --to")
	return cmd
}

// copyEmail runs the toolbar's email action against the loaded document, so
// the CLI copies exactly what the editor button would.
func copyEmail(cmd *cobra.Command, app *App, doc model.Node) error {
	log, closer, err := app.logger(cmd)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closer.Close()

	cb := app.clipboard
	if cb == nil {
		cb = clipboard.NewSystem(cmd.ErrOrStderr())
	}
	var toasts notify.Queue
	acts := toolbar.Build(engine.FromContent(doc), toolbar.Deps{
		Notifier:  &toasts,
		Clipboard: cb,
		Serialize: emailhtml.Render,
		Logger:    log,
	})
	a, ok := toolbar.Lookup(acts, toolbar.NameEmail)
	if !ok {
		return writeErr(cmd, errNotFound("action", toolbar.NameEmail))
	}
	a.Execute()

	for _, t := range toasts.Drain() {
		if t.Level == notify.LevelError {
			return writeErr(cmd, fmt.Errorf("%s: %s", t.Title, t.Description))
		}
		notify.Log{Logger: log}.Emit(t)
	}
	return nil
}
