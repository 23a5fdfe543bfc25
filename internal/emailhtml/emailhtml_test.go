package emailhtml

import (
	"strings"
	"testing"

	"inkmail-cli/internal/model"
)

func text(s string, marks ...model.Mark) model.Node {
	return model.Node{Type: model.NodeText, Text: s, Marks: marks}
}

func para(align string, inline ...model.Node) model.Node {
	n := model.Node{Type: model.NodeParagraph, Content: inline}
	if align != "" {
		n.Attrs = map[string]any{model.AttrTextAlign: align}
	}
	return n
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		content []model.Node
		want    []string
		notWant []string
	}{
		{
			name:    "plain paragraph",
			content: []model.Node{para("", text("Hi"))},
			want:    []string{"<div", "<p", "Hi</p>", "</div>"},
		},
		{
			name: "nested marks",
			content: []model.Node{para("", text("Hi",
				model.Mark{Type: model.MarkBold},
				model.Mark{Type: model.MarkItalic},
				model.Mark{Type: model.MarkUnderline},
				model.Mark{Type: model.MarkStrike},
			))},
			want: []string{"<strong><em><u><s>Hi</s></u></em></strong>"},
		},
		{
			name:    "link",
			content: []model.Node{para("", text("site", model.Mark{Type: model.MarkLink, Attrs: map[string]any{"href": "https://x.test/a?b=1"}}))},
			want:    []string{`href="https://x.test/a?b=1"`, ">site</a>"},
		},
		{
			name:    "scheme-less link keeps its target",
			content: []model.Node{para("", text("site", model.Mark{Type: model.MarkLink, Attrs: map[string]any{"href": "example.com"}}))},
			want:    []string{`href="https://example.com"`, ">site</a>"},
		},
		{
			name:    "unsafe link scheme dropped",
			content: []model.Node{para("", text("click", model.Mark{Type: model.MarkLink, Attrs: map[string]any{"href": "javascript:alert(1)"}}))},
			want:    []string{"click"},
			notWant: []string{"javascript"},
		},
		{
			name:    "alignment",
			content: []model.Node{para(model.AlignCenter, text("mid"))},
			want:    []string{"text-align", "center", "mid"},
		},
		{
			name:    "rule and break",
			content: []model.Node{{Type: model.NodeHorizontalRule}, para("", text("a"), model.Node{Type: model.NodeHardBreak}, text("b"))},
			want:    []string{"<hr", "a<br", "b</p>"},
		},
		{
			name:    "text is escaped",
			content: []model.Node{para("", text("<script>alert(1)</script>"))},
			want:    []string{"&lt;script&gt;"},
			notWant: []string{"<script"},
		},
		{
			name:    "unknown nodes keep their text",
			content: []model.Node{{Type: "blockquote", Content: []model.Node{para("", text("quoted"))}}},
			want:    []string{"quoted</p>"},
			notWant: []string{"blockquote"},
		},
		{
			name:    "empty paragraph keeps a line",
			content: []model.Node{para("")},
			want:    []string{"<p", "<br"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.content)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Fatalf("expected %q in %q", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Fatalf("did not expect %q in %q", w, got)
				}
			}
		})
	}
}

func TestRender_Empty(t *testing.T) {
	got, err := Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(got, "<div") || !strings.HasSuffix(got, "</div>") {
		t.Fatalf("expected empty container, got %q", got)
	}
}

func TestNormalizeHref(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"  https://x.test  ":  "https://x.test",
		"example.com":         "https://example.com",
		"example.com/a?b=1":   "https://example.com/a?b=1",
		"//cdn.test/x":        "https://cdn.test/x",
		"localhost:8080/path": "https://localhost:8080/path",
		"me@x.test":           "mailto:me@x.test",
		"mailto:me@x.test":    "mailto:me@x.test",
		"javascript:alert(1)": "javascript:alert(1)",
	}
	for in, want := range tests {
		if got := NormalizeHref(in); got != want {
			t.Fatalf("NormalizeHref(%q) = %q, want %q", in, got, want)
		}
	}
}
