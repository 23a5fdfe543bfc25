// Package emailhtml turns editor content into HTML that survives email
// clients: inline styles only, a small fixed set of elements.
package emailhtml

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"inkmail-cli/internal/model"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	containerStyle = "font-family: Helvetica, Arial, sans-serif; font-size: 16px; line-height: 1.5; color: #1f2937"
	paragraphStyle = "margin: 0 0 16px"
	linkStyle      = "color: #2563eb; text-decoration: underline"
	ruleStyle      = "border: none; border-top: 1px solid #eaeaea; margin: 26px 0"
)

var (
	policy   = newPolicy()
	schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:[^0-9]`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "p", "strong", "em", "u", "s", "a", "hr", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.AllowStyles("text-align").MatchingEnum("left", "center", "right", "justify").OnElements("p")
	safeValue := regexp.MustCompile(`^[a-zA-Z0-9#%.,\s()'"-]+$`)
	p.AllowStyles("margin", "color", "font-family", "font-size", "line-height", "text-decoration", "border", "border-top").
		Matching(safeValue).
		Globally()
	return p
}

// Render serializes a doc's content array.
func Render(content []model.Node) (string, error) {
	root := element(atom.Div, containerStyle)
	for _, n := range content {
		appendBlock(root, n)
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

func element(a atom.Atom, style string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if style != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
	}
	return n
}

func appendBlock(parent *html.Node, n model.Node) {
	switch n.Type {
	case model.NodeParagraph:
		style := paragraphStyle
		if align := n.Attr(model.AttrTextAlign); align != "" {
			style += "; text-align: " + align
		}
		p := element(atom.P, style)
		for _, c := range n.Content {
			appendInline(p, c)
		}
		if p.FirstChild == nil {
			// Empty paragraphs collapse in most clients; keep the line.
			p.AppendChild(element(atom.Br, ""))
		}
		parent.AppendChild(p)
	case model.NodeHorizontalRule:
		parent.AppendChild(element(atom.Hr, ruleStyle))
	default:
		if n.Text != "" || n.Type == model.NodeHardBreak {
			appendInline(parent, n)
			return
		}
		for _, c := range n.Content {
			appendBlock(parent, c)
		}
	}
}

func appendInline(parent *html.Node, n model.Node) {
	switch n.Type {
	case model.NodeHardBreak:
		parent.AppendChild(element(atom.Br, ""))
		return
	case model.NodeText:
	default:
		if n.Text == "" {
			for _, c := range n.Content {
				appendInline(parent, c)
			}
			return
		}
	}
	if n.Text == "" {
		return
	}
	out := &html.Node{Type: html.TextNode, Data: n.Text}
	for _, m := range []struct {
		mark string
		tag  atom.Atom
	}{
		{model.MarkStrike, atom.S},
		{model.MarkUnderline, atom.U},
		{model.MarkItalic, atom.Em},
		{model.MarkBold, atom.Strong},
	} {
		if n.HasMark(m.mark) {
			w := element(m.tag, "")
			w.AppendChild(out)
			out = w
		}
	}
	if href := linkHref(n); href != "" {
		a := element(atom.A, linkStyle)
		a.Attr = append(a.Attr, html.Attribute{Key: "href", Val: href})
		a.AppendChild(out)
		out = a
	}
	parent.AppendChild(out)
}

func linkHref(n model.Node) string {
	for _, m := range n.Marks {
		if m.Type == model.MarkLink {
			return NormalizeHref(m.Attr(model.AttrHref))
		}
	}
	return ""
}

// NormalizeHref gives scheme-less input a scheme so the sanitizer keeps it:
// "example.com" becomes "https://example.com", "me@x.test" becomes
// "mailto:me@x.test". Anything that already names a scheme is returned
// trimmed and otherwise untouched; "host:8080" counts as scheme-less.
func NormalizeHref(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case schemeRe.MatchString(href):
		return href
	case strings.Contains(href, "@") && !strings.ContainsAny(href, "/?#"):
		return "mailto:" + href
	}
	return "https://" + href
}
