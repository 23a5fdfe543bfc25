package publish

import (
	"bytes"
	"strings"

	"inkmail-cli/internal/model"
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
	"`", "\\`",
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
)

// Markdown renders a content tree as CommonMark. Alignment has no markdown
// form and is dropped; underline is written as inline <u> HTML.
func Markdown(doc model.Node) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	first := true
	for _, n := range doc.Content {
		if !first {
			writeLn("")
		}
		first = false
		switch n.Type {
		case model.NodeHorizontalRule:
			writeLn("---")
		default:
			line := inlineMarkdown(n.Content)
			if strings.TrimSpace(line) == "" {
				writeLn(emptyParagraph)
				continue
			}
			lines := strings.Split(line, "\n")
			for i, l := range lines {
				lines[i] = escapeBlockStart(l)
			}
			writeLn(strings.Join(lines, "\n"))
		}
	}
	return buf.String()
}

// emptyParagraph stands in for a paragraph without text; a blank line would
// only separate its neighbours.
const emptyParagraph = "&nbsp;"

// escapeBlockStart keeps a line of paragraph text from opening a heading,
// list, quote or setext underline.
func escapeBlockStart(line string) string {
	body := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(body)]
	if body == "" {
		return line
	}
	spaceOrEnd := func(i int) bool {
		return i >= len(body) || body[i] == ' ' || body[i] == '\t'
	}
	switch c := body[0]; {
	case c == '#':
		n := len(body) - len(strings.TrimLeft(body, "#"))
		if n <= 6 && spaceOrEnd(n) {
			return indent + `\` + body
		}
	case c == '>':
		return indent + `\` + body
	case c == '-' || c == '+' || c == '=':
		if spaceOrEnd(1) || strings.Trim(body, string(c)+" \t") == "" {
			return indent + `\` + body
		}
	case c >= '0' && c <= '9':
		n := len(body) - len(strings.TrimLeft(body, "0123456789"))
		if n <= 9 && n < len(body) && (body[n] == '.' || body[n] == ')') && spaceOrEnd(n+1) {
			return indent + body[:n] + `\` + body[n:]
		}
	}
	return line
}

func inlineMarkdown(nodes []model.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case model.NodeHardBreak:
			b.WriteString("\\\n")
		case model.NodeText:
			b.WriteString(textMarkdown(n))
		default:
			b.WriteString(inlineMarkdown(n.Content))
		}
	}
	return b.String()
}

// textMarkdown wraps one text run in its marks. Surrounding spaces stay
// outside the delimiters, otherwise CommonMark would not treat them as
// emphasis.
func textMarkdown(n model.Node) string {
	core := strings.TrimSpace(n.Text)
	if core == "" {
		return n.Text
	}
	lead := n.Text[:strings.Index(n.Text, core)]
	trail := n.Text[len(lead)+len(core):]

	s := mdEscaper.Replace(core)
	if n.HasMark(model.MarkUnderline) {
		s = "<u>" + s + "</u>"
	}
	if n.HasMark(model.MarkStrike) {
		s = "~~" + s + "~~"
	}
	if n.HasMark(model.MarkItalic) {
		s = "_" + s + "_"
	}
	if n.HasMark(model.MarkBold) {
		s = "**" + s + "**"
	}
	for _, m := range n.Marks {
		if m.Type == model.MarkLink && m.Attr(model.AttrHref) != "" {
			s = "[" + s + "](" + m.Attr(model.AttrHref) + ")"
		}
	}
	return lead + s + trail
}
