// Package engine holds the rich-text document engine that toolbar actions drive.
//
// Callers talk to it through Editor and Chain: commands are queued on a chain
// and applied together by Run, queries read the committed state only.
package engine

import (
	"errors"

	"inkmail-cli/internal/model"
)

// Editor is the handle the toolbar and the TUI hold on to.
type Editor interface {
	// Chain starts a new command chain against the current state.
	Chain() Chain
	// IsActive reports whether a mark or node type is active at the selection.
	IsActive(name string) bool
	// IsActiveAttrs reports whether the selected text blocks carry all attrs.
	IsActiveAttrs(attrs map[string]string) bool
	// GetAttributes returns the attributes of a mark at the selection.
	GetAttributes(mark string) map[string]string
	// JSON returns the full document content tree.
	JSON() model.Node
}

// Chain queues commands; every step returns the chain itself and Run applies
// the queued steps atomically.
type Chain interface {
	Focus() Chain
	ToggleMark(name string) Chain
	SetTextAlign(align string) Chain
	SetHorizontalRule() Chain
	SelectParentNode() Chain
	DeleteSelection() Chain
	ExtendMarkRange(name string) Chain
	SetLink(attrs map[string]string) Chain
	UnsetLink() Chain
	InsertText(s string) Chain
	SplitBlock() Chain
	DeleteBackward() Chain
	// Run applies every queued step. When one fails, nothing is committed and
	// Run reports false.
	Run() bool
}

var (
	ErrNotReady       = errors.New("editor not ready")
	ErrEmptySelection = errors.New("selection is empty")
	ErrUnknownMark    = errors.New("unknown mark")
	ErrInvalidAlign   = errors.New("invalid text alignment")
	ErrInvalidLink    = errors.New("link requires a non-empty href")
	ErrNoTextBlock    = errors.New("no text block in selection")
	ErrNoParent       = errors.New("selection has no selectable parent")
	ErrAtStart        = errors.New("cursor at document start")
)
