package toolbar

import (
	"fmt"

	"inkmail-cli/internal/clipboard"
	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/model"
	"inkmail-cli/internal/notify"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"
)

// Deps are the collaborators actions use besides the editor.
type Deps struct {
	Prompt    Prompt
	Notifier  notify.Emitter
	Clipboard clipboard.Writer
	Serialize Serializer
	Logger    zerolog.Logger
}

// Build returns the toolbar actions in display order. Every action holds e;
// when e is nil (or a nil pointer) the actions do nothing and report inactive.
func Build(e engine.Editor, deps Deps) []Action {
	mk := func(name string, icon Icon, group Group) base {
		return base{name: name, icon: icon, group: group, editor: e}
	}
	return []Action{
		markAction{base: mk(NameBold, IconBold, GroupMark), mark: model.MarkBold},
		markAction{base: mk(NameItalic, IconItalic, GroupMark), mark: model.MarkItalic},
		markAction{base: mk(NameUnderline, IconUnderline, GroupMark), mark: model.MarkUnderline},
		markAction{base: mk(NameStrike, IconStrikethrough, GroupMark), mark: model.MarkStrike},
		deleteLineAction{base: mk(NameDeleteLine, IconEraser, GroupMark)},
		dividerAction{base: mk(NameDivider, IconSeparator, GroupCustom)},
		linkAction{base: mk(NameLink, IconLink, GroupCustom), prompt: deps.Prompt},
		alignAction{base: mk(NameLeft, IconAlignLeft, GroupAlignment), align: model.AlignLeft},
		alignAction{base: mk(NameCenter, IconAlignCenter, GroupAlignment), align: model.AlignCenter},
		alignAction{base: mk(NameRight, IconAlignRight, GroupAlignment), align: model.AlignRight},
		emailAction{
			base:      mk(NameEmail, IconMail, GroupEmail),
			serialize: deps.Serialize,
			clipboard: deps.Clipboard,
			notifier:  deps.Notifier,
			log:       deps.Logger,
		},
	}
}

// Builder memoizes Build: the action list is rebuilt only when the editor
// handle changes. Collaborators are fixed per Builder, so new collaborators
// mean a new Builder.
type Builder struct {
	deps    Deps
	editor  engine.Editor
	actions []Action
}

func NewBuilder(deps Deps) *Builder {
	return &Builder{deps: deps}
}

func (b *Builder) Actions(e engine.Editor) []Action {
	if b.actions != nil && b.editor == e {
		return b.actions
	}
	b.editor = e
	b.actions = Build(e, b.deps)
	return b.actions
}

// Lookup finds an action by name.
func Lookup(actions []Action, name string) (Action, bool) {
	for _, a := range actions {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

type duplicateNameError struct {
	name string
}

func (e duplicateNameError) Error() string {
	return fmt.Sprintf("duplicate action name: %s", e.name)
}

// Validate rejects registries where a name appears twice.
func Validate(actions []Action) error {
	seen := make(map[string]bool, len(actions))
	for _, a := range actions {
		if seen[a.Name()] {
			return duplicateNameError{name: a.Name()}
		}
		seen[a.Name()] = true
	}
	return nil
}

// Suggest returns the action name closest to name, when it is within two
// edits.
func Suggest(actions []Action, name string) (string, bool) {
	best, bestDist := "", 3
	for _, a := range actions {
		if d := levenshtein.ComputeDistance(name, a.Name()); d < bestDist {
			best, bestDist = a.Name(), d
		}
	}
	return best, best != ""
}

// Prompter is implemented by actions that ask for input before running.
type Prompter interface {
	Prompts() (label, initial string)
}
