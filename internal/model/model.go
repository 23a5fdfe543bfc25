package model

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	NodeDoc            = "doc"
	NodeParagraph      = "paragraph"
	NodeText           = "text"
	NodeHorizontalRule = "horizontalRule"
	NodeHardBreak      = "hardBreak"
)

const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkStrike    = "strike"
	MarkLink      = "link"
)

const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"
)

// AttrTextAlign is the paragraph attribute carrying alignment.
const AttrTextAlign = "textAlign"

// AttrHref is the link mark attribute carrying the target URL.
const AttrHref = "href"

// Node is one entry of the editor content tree. The JSON shape matches the
// ProseMirror document JSON so files exported by web editors load as-is.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

var ErrNotDoc = errors.New("content root is not a doc node")

// ParseDoc decodes a content tree and checks that the root is a doc node.
func ParseDoc(b []byte) (Node, error) {
	var n Node
	if err := json.Unmarshal(b, &n); err != nil {
		return Node{}, err
	}
	if n.Type != NodeDoc {
		return Node{}, ErrNotDoc
	}
	return n, nil
}

func (n Node) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(n, "", "  ")
	}
	return json.Marshal(n)
}

// Attr returns a string attribute, or "" when missing or not a string.
func (n Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	s, _ := n.Attrs[key].(string)
	return s
}

func (m Mark) Attr(key string) string {
	if m.Attrs == nil {
		return ""
	}
	s, _ := m.Attrs[key].(string)
	return s
}

// HasMark reports whether a text node carries the given mark type.
func (n Node) HasMark(typ string) bool {
	for _, m := range n.Marks {
		if m.Type == typ {
			return true
		}
	}
	return false
}

// PlainText joins all text below n; block nodes are separated by newlines.
func (n Node) PlainText() string {
	var b strings.Builder
	n.writeText(&b)
	return strings.TrimRight(b.String(), "\n")
}

func (n Node) writeText(b *strings.Builder) {
	switch n.Type {
	case NodeText:
		b.WriteString(n.Text)
		return
	case NodeHardBreak:
		b.WriteByte('\n')
		return
	case NodeHorizontalRule:
		b.WriteString("---\n")
		return
	}
	for _, c := range n.Content {
		c.writeText(b)
	}
	if n.Type == NodeParagraph {
		b.WriteByte('\n')
	}
}
