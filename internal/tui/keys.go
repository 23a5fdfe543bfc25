package tui

import (
	"strings"

	"inkmail-cli/internal/toolbar"

	"github.com/charmbracelet/bubbles/key"
)

// actionKeys binds every toolbar action to a shortcut. ctrl+i is tab in most
// terminals, so the alt layer carries the full set.
var actionKeys = map[string]key.Binding{
	toolbar.NameBold:       key.NewBinding(key.WithKeys("alt+b", "ctrl+b"), key.WithHelp("alt+b", "bold")),
	toolbar.NameItalic:     key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic")),
	toolbar.NameUnderline:  key.NewBinding(key.WithKeys("alt+u", "ctrl+u"), key.WithHelp("alt+u", "underline")),
	toolbar.NameStrike:     key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("alt+s", "strike")),
	toolbar.NameDeleteLine: key.NewBinding(key.WithKeys("alt+d"), key.WithHelp("alt+d", "delete line")),
	toolbar.NameDivider:    key.NewBinding(key.WithKeys("alt+h"), key.WithHelp("alt+h", "divider")),
	toolbar.NameLink:       key.NewBinding(key.WithKeys("alt+k", "ctrl+k"), key.WithHelp("alt+k", "link")),
	toolbar.NameLeft:       key.NewBinding(key.WithKeys("alt+l"), key.WithHelp("alt+l", "align left")),
	toolbar.NameCenter:     key.NewBinding(key.WithKeys("alt+e"), key.WithHelp("alt+e", "center")),
	toolbar.NameRight:      key.NewBinding(key.WithKeys("alt+r"), key.WithHelp("alt+r", "align right")),
	toolbar.NameEmail:      key.NewBinding(key.WithKeys("alt+m"), key.WithHelp("alt+m", "copy email html")),
}

// ActionShortcut lists the keys bound to an action, e.g. "alt+b/ctrl+b".
func ActionShortcut(name string) string {
	b, ok := actionKeys[name]
	if !ok {
		return ""
	}
	return strings.Join(b.Keys(), "/")
}

type keyMap struct {
	Quit        key.Binding
	Palette     key.Binding
	FocusNext   key.Binding
	Preview     key.Binding
	SelectAll   key.Binding
	Login       key.Binding
	Skip        key.Binding
	Activate    key.Binding
	Cancel      key.Binding
	ToolbarPrev key.Binding
	ToolbarNext key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:        key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Palette:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "actions")),
		FocusNext:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "toolbar")),
		Preview:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "preview")),
		SelectAll:   key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "select all")),
		Login:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "sign in")),
		Skip:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		Activate:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "apply")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ToolbarPrev: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "move")),
		ToolbarNext: key.NewBinding(key.WithKeys("right", "l")),
	}
}

// editorHelp feeds the footer help line.
type editorHelp struct {
	keys    keyMap
	toolbar bool
}

func (h editorHelp) ShortHelp() []key.Binding {
	if h.toolbar {
		return []key.Binding{h.keys.ToolbarPrev, h.keys.Activate, h.keys.Cancel, h.keys.Palette, h.keys.Quit}
	}
	return []key.Binding{
		h.keys.FocusNext,
		actionKeys[toolbar.NameBold],
		actionKeys[toolbar.NameLink],
		actionKeys[toolbar.NameEmail],
		h.keys.Palette,
		h.keys.Preview,
		h.keys.Quit,
	}
}

func (h editorHelp) FullHelp() [][]key.Binding {
	var acts []key.Binding
	for _, name := range []string{
		toolbar.NameBold, toolbar.NameItalic, toolbar.NameUnderline, toolbar.NameStrike,
		toolbar.NameDeleteLine, toolbar.NameDivider, toolbar.NameLink,
		toolbar.NameLeft, toolbar.NameCenter, toolbar.NameRight, toolbar.NameEmail,
	} {
		acts = append(acts, actionKeys[name])
	}
	return [][]key.Binding{acts, h.ShortHelp()}
}
