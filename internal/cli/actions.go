package cli

import (
	"strings"

	"inkmail-cli/internal/toolbar"
	"inkmail-cli/internal/tui"

	"github.com/spf13/cobra"
)

type actionRow struct {
	Name     string `json:"name"`
	Group    string `json:"group"`
	Icon     string `json:"icon"`
	Glyph    string `json:"glyph"`
	Shortcut string `json:"shortcut"`
	Prompts  bool   `json:"prompts"`
}

type actionList []actionRow

func (l actionList) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{r.Name, r.Group, r.Glyph, r.Shortcut})
	}
	return []string{"NAME", "GROUP", "ICON", "SHORTCUT"}, rows
}

func newActionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "actions [name]",
		Short: "List the toolbar actions (or show one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acts := toolbar.Build(nil, toolbar.Deps{})
			if err := toolbar.Validate(acts); err != nil {
				return writeErr(cmd, err)
			}
			ascii := strings.EqualFold(strings.TrimSpace(app.Glyphs), "ascii")
			if len(args) == 1 {
				name := strings.ToLower(strings.TrimSpace(args[0]))
				a, ok := toolbar.Lookup(acts, name)
				if !ok {
					nf := notFoundError{kind: "action", id: name}
					if s, ok := toolbar.Suggest(acts, name); ok {
						return writeErr(cmd, suggestError{notFoundError: nf, suggestion: s})
					}
					return writeErr(cmd, nf)
				}
				return writeEnvelope(cmd, app, actionList{rowFor(a, ascii)})
			}
			out := make(actionList, 0, len(acts))
			for _, a := range acts {
				out = append(out, rowFor(a, ascii))
			}
			return writeEnvelope(cmd, app, out, "inkmail edit", "inkmail actions <name>")
		},
	}
}

func rowFor(a toolbar.Action, ascii bool) actionRow {
	_, prompts := a.(toolbar.Prompter)
	return actionRow{
		Name:     a.Name(),
		Group:    a.Group().Label(),
		Icon:     string(a.Icon()),
		Glyph:    toolbar.Glyph(a.Icon(), ascii),
		Shortcut: tui.ActionShortcut(a.Name()),
		Prompts:  prompts,
	}
}
