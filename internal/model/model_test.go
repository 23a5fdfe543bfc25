package model

import (
	"errors"
	"testing"
)

func TestParseDoc(t *testing.T) {
	in := `{"type":"doc","content":[{"type":"paragraph","attrs":{"textAlign":"center"},"content":[{"type":"text","text":"Hi","marks":[{"type":"link","attrs":{"href":"https://x.test"}}]}]},{"type":"horizontalRule"}]}`

	doc, err := ParseDoc([]byte(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Content) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Content))
	}
	p := doc.Content[0]
	if got := p.Attr(AttrTextAlign); got != AlignCenter {
		t.Fatalf("expected center alignment, got %q", got)
	}
	txt := p.Content[0]
	if !txt.HasMark(MarkLink) || txt.Marks[0].Attr(AttrHref) != "https://x.test" {
		t.Fatalf("expected link mark, got %#v", txt.Marks)
	}
	if got := doc.PlainText(); got != "Hi\n---" {
		t.Fatalf("unexpected plain text %q", got)
	}
}

func TestParseDoc_RejectsNonDocRoot(t *testing.T) {
	_, err := ParseDoc([]byte(`{"type":"paragraph"}`))
	if !errors.Is(err, ErrNotDoc) {
		t.Fatalf("expected ErrNotDoc, got %v", err)
	}
	if _, err := ParseDoc([]byte(`{`)); err == nil {
		t.Fatal("expected syntax error")
	}
}
