package publish

import (
	"bytes"
	"strings"

	"inkmail-cli/internal/model"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gtext "github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var mdParser = goldmark.New(goldmark.WithExtensions(extension.Strikethrough)).Parser()

// ParseMarkdown converts markdown into a content tree. Structure the editor
// has no node for (headings, lists, quotes, code) is flattened into
// paragraphs; headings become bold.
func ParseMarkdown(src []byte) model.Node {
	root := mdParser.Parse(gtext.NewReader(src))
	c := mdConverter{src: src}
	c.block(root)
	return model.Node{Type: model.NodeDoc, Content: c.blocks}
}

type inlineMarks struct {
	bold, italic, underline, strike bool
	link                            string
}

func (m inlineMarks) marks() []model.Mark {
	var out []model.Mark
	if m.bold {
		out = append(out, model.Mark{Type: model.MarkBold})
	}
	if m.italic {
		out = append(out, model.Mark{Type: model.MarkItalic})
	}
	if m.underline {
		out = append(out, model.Mark{Type: model.MarkUnderline})
	}
	if m.strike {
		out = append(out, model.Mark{Type: model.MarkStrike})
	}
	if m.link != "" {
		out = append(out, model.Mark{Type: model.MarkLink, Attrs: map[string]any{model.AttrHref: m.link}})
	}
	return out
}

type mdConverter struct {
	src    []byte
	blocks []model.Node
}

func (c *mdConverter) paragraph(inline []model.Node) {
	c.blocks = append(c.blocks, model.Node{Type: model.NodeParagraph, Content: inline})
}

func (c *mdConverter) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if c.rawText(n) == emptyParagraph {
			c.paragraph(nil)
			return
		}
		c.paragraph(c.inlines(n, inlineMarks{}))
	case *ast.Heading:
		c.paragraph(c.inlines(n, inlineMarks{bold: true}))
	case *ast.ThematicBreak:
		c.blocks = append(c.blocks, model.Node{Type: model.NodeHorizontalRule})
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var inline []model.Node
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(c.src)), "\n")
			if i > 0 {
				inline = append(inline, model.Node{Type: model.NodeHardBreak})
			}
			if line != "" {
				inline = append(inline, model.Node{Type: model.NodeText, Text: line})
			}
		}
		c.paragraph(inline)
	default:
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			c.block(ch)
		}
	}
}

func (c *mdConverter) rawText(n ast.Node) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return strings.TrimSpace(b.String())
}

func (c *mdConverter) inlines(n ast.Node, m inlineMarks) []model.Node {
	var out []model.Node
	add := func(s string, m inlineMarks) {
		if s == "" {
			return
		}
		out = append(out, model.Node{Type: model.NodeText, Text: s, Marks: m.marks()})
	}
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch ch := ch.(type) {
		case *ast.Text:
			add(string(util.UnescapePunctuations(ch.Segment.Value(c.src))), m)
			switch {
			case ch.HardLineBreak():
				out = append(out, model.Node{Type: model.NodeHardBreak})
			case ch.SoftLineBreak():
				add(" ", m)
			}
		case *ast.String:
			add(string(ch.Value), m)
		case *ast.Emphasis:
			mm := m
			if ch.Level >= 2 {
				mm.bold = true
			} else {
				mm.italic = true
			}
			out = append(out, c.inlines(ch, mm)...)
		case *east.Strikethrough:
			mm := m
			mm.strike = true
			out = append(out, c.inlines(ch, mm)...)
		case *ast.Link:
			mm := m
			mm.link = string(ch.Destination)
			out = append(out, c.inlines(ch, mm)...)
		case *ast.AutoLink:
			mm := m
			mm.link = string(ch.URL(c.src))
			add(string(ch.Label(c.src)), mm)
		case *ast.RawHTML:
			// Underline has no markdown syntax; it round-trips as <u>.
			var raw bytes.Buffer
			for i := 0; i < ch.Segments.Len(); i++ {
				seg := ch.Segments.At(i)
				raw.Write(seg.Value(c.src))
			}
			switch strings.ToLower(strings.TrimSpace(raw.String())) {
			case "<u>":
				m.underline = true
			case "</u>":
				m.underline = false
			}
		default:
			out = append(out, c.inlines(ch, m)...)
		}
	}
	return out
}
