// Package toolbar builds the formatting actions that drive the document engine
// and renders them as clustered toolbar buttons.
package toolbar

import (
	"fmt"
	"reflect"

	"inkmail-cli/internal/clipboard"
	"inkmail-cli/internal/emailhtml"
	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/model"
	"inkmail-cli/internal/notify"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Action is one user-invocable editing operation.
//
// Execute never panics or returns an error: engine failures are swallowed by
// the chain and side-channel failures are reported through the notifier.
// IsActive is a pure query and is called on every render.
type Action interface {
	Name() string
	Icon() Icon
	Group() Group
	Execute()
	IsActive() bool
}

// Group clusters actions visually; it has no effect on what they do.
type Group string

const (
	GroupAlignment Group = "alignment"
	GroupImage     Group = "image"
	GroupMark      Group = "mark"
	GroupCustom    Group = "custom"
	GroupEmail     Group = "email"
)

var titleCaser = cases.Title(language.English)

// Label is the display name of the group ("Alignment", "Mark", ...).
func (g Group) Label() string { return titleCaser.String(string(g)) }

const (
	NameBold       = "bold"
	NameItalic     = "italic"
	NameUnderline  = "underline"
	NameStrike     = "strike"
	NameDeleteLine = "delete-line"
	NameDivider    = "divider"
	NameLink       = "link"
	NameLeft       = "left"
	NameCenter     = "center"
	NameRight      = "right"
	NameEmail      = "email"
)

const (
	CopiedTitle       = "Copied to clipboard"
	CopiedDescription = "The HTML code has been copied!"
	CopyFailedTitle   = "Copy failed"
)

// Prompt asks the user for a line of input. ok is false when the user
// cancelled; an empty string with ok set means "cleared".
type Prompt interface {
	Ask(label, initial string) (value string, ok bool)
}

// PromptFunc adapts a function to a Prompt.
type PromptFunc func(label, initial string) (string, bool)

func (f PromptFunc) Ask(label, initial string) (string, bool) { return f(label, initial) }

// Serializer converts the document content array to email HTML.
type Serializer func(content []model.Node) (string, error)

// ready reports whether an editor handle can be used. Typed nil pointers
// inside a non-nil interface count as not ready.
func ready(e engine.Editor) bool {
	if e == nil {
		return false
	}
	v := reflect.ValueOf(e)
	return v.Kind() != reflect.Ptr || !v.IsNil()
}

type base struct {
	name   string
	icon   Icon
	group  Group
	editor engine.Editor
}

func (b base) Name() string { return b.name }
func (b base) Icon() Icon   { return b.icon }
func (b base) Group() Group { return b.group }

type markAction struct {
	base
	mark string
}

func (a markAction) Execute() {
	if !ready(a.editor) {
		return
	}
	a.editor.Chain().Focus().ToggleMark(a.mark).Run()
}

func (a markAction) IsActive() bool {
	return ready(a.editor) && a.editor.IsActive(a.mark)
}

type deleteLineAction struct{ base }

func (a deleteLineAction) Execute() {
	if !ready(a.editor) {
		return
	}
	a.editor.Chain().Focus().SelectParentNode().DeleteSelection().Run()
}

func (deleteLineAction) IsActive() bool { return false }

type dividerAction struct{ base }

func (a dividerAction) Execute() {
	if !ready(a.editor) {
		return
	}
	a.editor.Chain().Focus().SetHorizontalRule().Run()
}

func (a dividerAction) IsActive() bool {
	return ready(a.editor) && a.editor.IsActive(model.NodeHorizontalRule)
}

type alignAction struct {
	base
	align string
}

func (a alignAction) Execute() {
	if !ready(a.editor) {
		return
	}
	a.editor.Chain().Focus().SetTextAlign(a.align).Run()
}

func (a alignAction) IsActive() bool {
	return ready(a.editor) && a.editor.IsActiveAttrs(map[string]string{model.AttrTextAlign: a.align})
}

type linkAction struct {
	base
	prompt Prompt
}

func (a linkAction) Execute() {
	if !ready(a.editor) || a.prompt == nil {
		return
	}
	prev := a.editor.GetAttributes(model.MarkLink)[model.AttrHref]
	url, ok := a.prompt.Ask("URL", prev)
	if !ok {
		return
	}
	url = emailhtml.NormalizeHref(url)
	if url == "" {
		a.editor.Chain().Focus().ExtendMarkRange(model.MarkLink).UnsetLink().Run()
		return
	}
	a.editor.Chain().Focus().ExtendMarkRange(model.MarkLink).SetLink(map[string]string{model.AttrHref: url}).Run()
}

func (a linkAction) IsActive() bool {
	return ready(a.editor) && a.editor.IsActive(model.MarkLink)
}

// Prompts reports that Execute asks for input first. The TUI uses this to
// collect the answer in a modal before running the action.
func (a linkAction) Prompts() (label, initial string) {
	if !ready(a.editor) {
		return "URL", ""
	}
	return "URL", a.editor.GetAttributes(model.MarkLink)[model.AttrHref]
}

type emailAction struct {
	base
	serialize Serializer
	clipboard clipboard.Writer
	notifier  notify.Emitter
	log       zerolog.Logger
}

func (a emailAction) Execute() {
	if !ready(a.editor) {
		return
	}
	if err := a.copyHTML(); err != nil {
		a.log.Error().Err(err).Str("action", a.name).Msg("copy as email html failed")
		a.emit(notify.Error(CopyFailedTitle, err.Error()))
		return
	}
	a.emit(notify.Info(CopiedTitle, CopiedDescription))
}

func (a emailAction) copyHTML() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("export panicked: %v", r)
		}
	}()
	if a.serialize == nil || a.clipboard == nil {
		return fmt.Errorf("email export is not configured")
	}
	doc := a.editor.JSON()
	html, err := a.serialize(doc.Content)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	if err := a.clipboard.Write(html); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

func (a emailAction) emit(t notify.Toast) {
	if a.notifier != nil {
		a.notifier.Emit(t)
	}
}

func (emailAction) IsActive() bool { return false }
