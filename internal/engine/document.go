package engine

import (
	"strings"

	"inkmail-cli/internal/model"
)

// Marks is the formatting carried by one character.
type Marks struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	// Link is the href of the link mark; empty means no link.
	Link string
}

func (m Marks) Has(name string) bool {
	switch name {
	case model.MarkBold:
		return m.Bold
	case model.MarkItalic:
		return m.Italic
	case model.MarkUnderline:
		return m.Underline
	case model.MarkStrike:
		return m.Strike
	case model.MarkLink:
		return m.Link != ""
	}
	return false
}

func (m Marks) with(name string, on bool) Marks {
	switch name {
	case model.MarkBold:
		m.Bold = on
	case model.MarkItalic:
		m.Italic = on
	case model.MarkUnderline:
		m.Underline = on
	case model.MarkStrike:
		m.Strike = on
	}
	return m
}

// sameMark reports whether a and b carry the same instance of mark name. Links
// only match when they point at the same href.
func sameMark(a, b Marks, name string) bool {
	if name == model.MarkLink {
		return a.Link != "" && a.Link == b.Link
	}
	return a.Has(name) && b.Has(name)
}

func toggleable(name string) bool {
	switch name {
	case model.MarkBold, model.MarkItalic, model.MarkUnderline, model.MarkStrike:
		return true
	}
	return false
}

// Char is one rune of a text block. Hard breaks are stored as '\n'.
type Char struct {
	R     rune
	Marks Marks
}

const (
	BlockParagraph      = model.NodeParagraph
	BlockHorizontalRule = model.NodeHorizontalRule
)

type Block struct {
	Kind  string
	Align string
	Chars []Char
}

func (b Block) text() bool { return b.Kind == BlockParagraph }

func (b Block) clone() Block {
	b.Chars = append([]Char(nil), b.Chars...)
	return b
}

func paragraph(align string, chars []Char) Block {
	if align == "" {
		align = model.AlignLeft
	}
	return Block{Kind: BlockParagraph, Align: align, Chars: chars}
}

// Pos addresses a gap between characters: Offset 0 is before the first rune.
type Pos struct {
	Block  int
	Offset int
}

func (p Pos) Less(q Pos) bool {
	if p.Block != q.Block {
		return p.Block < q.Block
	}
	return p.Offset < q.Offset
}

type Selection struct {
	Anchor Pos
	Head   Pos
	// Node is set when a whole block is selected.
	Node bool
}

func Cursor(p Pos) Selection { return Selection{Anchor: p, Head: p} }

func (s Selection) Empty() bool { return s.Anchor == s.Head && !s.Node }

func (s Selection) From() Pos {
	if s.Head.Less(s.Anchor) {
		return s.Head
	}
	return s.Anchor
}

func (s Selection) To() Pos {
	if s.Head.Less(s.Anchor) {
		return s.Anchor
	}
	return s.Head
}

type state struct {
	blocks  []Block
	sel     Selection
	stored  *Marks
	focused bool
}

func (s state) clone() state {
	out := s
	out.blocks = make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		out.blocks[i] = b.clone()
	}
	if s.stored != nil {
		m := *s.stored
		out.stored = &m
	}
	return out
}

func (s *state) clampPos(p Pos) Pos {
	if len(s.blocks) == 0 {
		return Pos{}
	}
	if p.Block < 0 {
		return Pos{}
	}
	if p.Block >= len(s.blocks) {
		last := len(s.blocks) - 1
		return Pos{Block: last, Offset: len(s.blocks[last].Chars)}
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if n := len(s.blocks[p.Block].Chars); p.Offset > n {
		p.Offset = n
	}
	return p
}

// eachChar calls fn for every character between from and to.
func (s *state) eachChar(from, to Pos, fn func(c *Char)) {
	for bi := from.Block; bi <= to.Block && bi < len(s.blocks); bi++ {
		chars := s.blocks[bi].Chars
		lo, hi := 0, len(chars)
		if bi == from.Block {
			lo = from.Offset
		}
		if bi == to.Block {
			hi = to.Offset
		}
		for i := lo; i < hi && i < len(chars); i++ {
			fn(&chars[i])
		}
	}
}

func (s *state) selectionRange() (Pos, Pos) {
	from, to := s.sel.From(), s.sel.To()
	if s.sel.Node {
		from = Pos{Block: from.Block}
		to = Pos{Block: from.Block, Offset: len(s.blocks[from.Block].Chars)}
	}
	return from, to
}

// marksAt returns the marks a cursor at p picks up: the character before it,
// or the one after it at the start of a block.
func (s *state) marksAt(p Pos) Marks {
	if p.Block >= len(s.blocks) {
		return Marks{}
	}
	chars := s.blocks[p.Block].Chars
	switch {
	case p.Offset > 0 && p.Offset <= len(chars):
		return chars[p.Offset-1].Marks
	case p.Offset == 0 && len(chars) > 0:
		return chars[0].Marks
	}
	return Marks{}
}

func (s *state) cursorMarks() Marks {
	if s.stored != nil {
		return *s.stored
	}
	return s.marksAt(s.sel.Head)
}

// markRange finds the contiguous run carrying mark name around p, looking at
// the character after p first and then the one before it.
func (s *state) markRange(p Pos, name string) (Pos, Pos, bool) {
	if p.Block >= len(s.blocks) {
		return Pos{}, Pos{}, false
	}
	chars := s.blocks[p.Block].Chars
	pivot := -1
	if p.Offset < len(chars) && chars[p.Offset].Marks.Has(name) {
		pivot = p.Offset
	} else if p.Offset > 0 && p.Offset <= len(chars) && chars[p.Offset-1].Marks.Has(name) {
		pivot = p.Offset - 1
	}
	if pivot < 0 {
		return Pos{}, Pos{}, false
	}
	ref := chars[pivot].Marks
	lo, hi := pivot, pivot+1
	for lo > 0 && sameMark(chars[lo-1].Marks, ref, name) {
		lo--
	}
	for hi < len(chars) && sameMark(chars[hi].Marks, ref, name) {
		hi++
	}
	return Pos{Block: p.Block, Offset: lo}, Pos{Block: p.Block, Offset: hi}, true
}

// Document is the in-memory engine. It is not safe for concurrent use; the
// TUI drives it from its update loop only.
type Document struct {
	st        state
	version   uint64
	lastErr   error
	listeners []func(*Document)
}

var _ Editor = (*Document)(nil)

// New returns a document holding a single empty paragraph.
func New() *Document {
	return &Document{st: state{blocks: []Block{paragraph("", nil)}}}
}

// FromContent loads a content tree. Unknown block nodes are flattened into
// paragraphs so their text survives.
func FromContent(doc model.Node) *Document {
	d := &Document{}
	for _, n := range doc.Content {
		d.st.blocks = append(d.st.blocks, blocksFromNode(n)...)
	}
	if len(d.st.blocks) == 0 {
		d.st.blocks = []Block{paragraph("", nil)}
	}
	return d
}

func blocksFromNode(n model.Node) []Block {
	switch n.Type {
	case model.NodeHorizontalRule:
		return []Block{{Kind: BlockHorizontalRule}}
	case model.NodeParagraph:
		return []Block{paragraph(n.Attr(model.AttrTextAlign), charsFromInline(n.Content))}
	case model.NodeText, model.NodeHardBreak:
		return []Block{paragraph("", charsFromInline([]model.Node{n}))}
	}
	var out []Block
	for _, c := range n.Content {
		out = append(out, blocksFromNode(c)...)
	}
	return out
}

func charsFromInline(nodes []model.Node) []Char {
	var out []Char
	for _, n := range nodes {
		switch n.Type {
		case model.NodeHardBreak:
			out = append(out, Char{R: '\n'})
		case model.NodeText:
			var m Marks
			for _, mk := range n.Marks {
				if mk.Type == model.MarkLink {
					m.Link = mk.Attr(model.AttrHref)
					continue
				}
				m = m.with(mk.Type, true)
			}
			for _, r := range n.Text {
				out = append(out, Char{R: r, Marks: m})
			}
		default:
			out = append(out, charsFromInline(n.Content)...)
		}
	}
	return out
}

func (d *Document) Chain() Chain { return &chain{doc: d} }

// Version increases on every committed change, including selection moves.
func (d *Document) Version() uint64 { return d.version }

// LastError is the failure of the most recent chain that did not commit.
func (d *Document) LastError() error { return d.lastErr }

func (d *Document) Focused() bool { return d.st.focused }

func (d *Document) Selection() Selection { return d.st.sel }

// Blocks returns a copy of the document blocks.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.st.blocks))
	for i, b := range d.st.blocks {
		out[i] = b.clone()
	}
	return out
}

// OnUpdate registers fn to run after every committed change.
func (d *Document) OnUpdate(fn func(*Document)) {
	d.listeners = append(d.listeners, fn)
}

func (d *Document) changed() {
	d.version++
	for _, fn := range d.listeners {
		fn(d)
	}
}

func (d *Document) commit(next state) {
	d.st = next
	d.lastErr = nil
	d.changed()
}

func (d *Document) IsActive(name string) bool {
	if d == nil {
		return false
	}
	s := &d.st
	switch name {
	case model.NodeHorizontalRule:
		from := s.sel.From()
		return s.sel.Node && s.blocks[from.Block].Kind == BlockHorizontalRule
	case model.NodeParagraph:
		return s.blocks[s.sel.Head.Block].Kind == BlockParagraph
	}
	if s.sel.Empty() {
		return s.cursorMarks().Has(name)
	}
	from, to := s.selectionRange()
	seen, all := false, true
	s.eachChar(from, to, func(c *Char) {
		seen = true
		if !c.Marks.Has(name) {
			all = false
		}
	})
	return seen && all
}

func (d *Document) IsActiveAttrs(attrs map[string]string) bool {
	if d == nil || len(attrs) == 0 {
		return false
	}
	s := &d.st
	from, to := s.selectionRange()
	matched := false
	for bi := from.Block; bi <= to.Block; bi++ {
		b := s.blocks[bi]
		if !b.text() {
			continue
		}
		for k, v := range attrs {
			if k != model.AttrTextAlign || b.Align != v {
				return false
			}
		}
		matched = true
	}
	return matched
}

func (d *Document) GetAttributes(mark string) map[string]string {
	out := map[string]string{}
	if d == nil || mark != model.MarkLink {
		return out
	}
	s := &d.st
	var m Marks
	if s.sel.Empty() {
		m = s.cursorMarks()
	} else {
		from, to := s.selectionRange()
		found := false
		s.eachChar(from, to, func(c *Char) {
			if !found {
				m = c.Marks
				found = true
			}
		})
	}
	if m.Link != "" {
		out[model.AttrHref] = m.Link
	}
	return out
}

func (d *Document) JSON() model.Node {
	doc := model.Node{Type: model.NodeDoc}
	if d == nil {
		return doc
	}
	for _, b := range d.st.blocks {
		if b.Kind == BlockHorizontalRule {
			doc.Content = append(doc.Content, model.Node{Type: model.NodeHorizontalRule})
			continue
		}
		doc.Content = append(doc.Content, model.Node{
			Type:    model.NodeParagraph,
			Attrs:   map[string]any{model.AttrTextAlign: b.Align},
			Content: inlineNodes(b.Chars),
		})
	}
	return doc
}

func inlineNodes(chars []Char) []model.Node {
	var out []model.Node
	var run strings.Builder
	var cur Marks
	flush := func() {
		if run.Len() == 0 {
			return
		}
		out = append(out, model.Node{Type: model.NodeText, Text: run.String(), Marks: marksJSON(cur)})
		run.Reset()
	}
	for _, c := range chars {
		if c.R == '\n' {
			flush()
			out = append(out, model.Node{Type: model.NodeHardBreak})
			continue
		}
		if c.Marks != cur {
			flush()
			cur = c.Marks
		}
		run.WriteRune(c.R)
	}
	flush()
	return out
}

func marksJSON(m Marks) []model.Mark {
	var out []model.Mark
	for _, name := range []string{model.MarkBold, model.MarkItalic, model.MarkUnderline, model.MarkStrike} {
		if m.Has(name) {
			out = append(out, model.Mark{Type: name})
		}
	}
	if m.Link != "" {
		out = append(out, model.Mark{Type: model.MarkLink, Attrs: map[string]any{model.AttrHref: m.Link}})
	}
	return out
}
