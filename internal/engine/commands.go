package engine

import (
	"strings"

	"inkmail-cli/internal/model"
)

type command func(s *state) error

type chain struct {
	doc   *Document
	steps []command
}

func (c *chain) add(cmd command) Chain {
	c.steps = append(c.steps, cmd)
	return c
}

func (c *chain) Run() bool {
	if c.doc == nil {
		return false
	}
	next := c.doc.st.clone()
	for _, step := range c.steps {
		if err := step(&next); err != nil {
			c.doc.lastErr = err
			return false
		}
	}
	c.doc.commit(next)
	return true
}

func (c *chain) Focus() Chain {
	return c.add(func(s *state) error {
		s.focused = true
		return nil
	})
}

func (c *chain) ToggleMark(name string) Chain {
	return c.add(func(s *state) error {
		if !toggleable(name) {
			return ErrUnknownMark
		}
		if s.sel.Empty() {
			m := s.cursorMarks()
			m = m.with(name, !m.Has(name))
			s.stored = &m
			return nil
		}
		from, to := s.selectionRange()
		all, seen := true, false
		s.eachChar(from, to, func(ch *Char) {
			seen = true
			if !ch.Marks.Has(name) {
				all = false
			}
		})
		if !seen {
			return nil
		}
		s.eachChar(from, to, func(ch *Char) {
			ch.Marks = ch.Marks.with(name, !all)
		})
		return nil
	})
}

func (c *chain) SetTextAlign(align string) Chain {
	return c.add(func(s *state) error {
		switch align {
		case model.AlignLeft, model.AlignCenter, model.AlignRight, model.AlignJustify:
		default:
			return ErrInvalidAlign
		}
		from, to := s.selectionRange()
		updated := false
		for bi := from.Block; bi <= to.Block; bi++ {
			if s.blocks[bi].text() {
				s.blocks[bi].Align = align
				updated = true
			}
		}
		if !updated {
			return ErrNoTextBlock
		}
		return nil
	})
}

func (c *chain) SetHorizontalRule() Chain {
	return c.add(func(s *state) error {
		if s.sel.Node {
			bi := s.sel.From().Block
			align := s.blocks[bi].Align
			s.blocks[bi] = Block{Kind: BlockHorizontalRule}
			s.blocks = insertBlocks(s.blocks, bi+1, paragraph(align, nil))
			s.sel = Cursor(Pos{Block: bi + 1})
			return nil
		}
		if !s.sel.Empty() {
			deleteRange(s)
		}
		p := s.sel.Head
		cur := s.blocks[p.Block]
		if !cur.text() {
			s.blocks = insertBlocks(s.blocks, p.Block+1, Block{Kind: BlockHorizontalRule}, paragraph("", nil))
			s.sel = Cursor(Pos{Block: p.Block + 2})
			return nil
		}
		before := append([]Char(nil), cur.Chars[:p.Offset]...)
		after := append([]Char(nil), cur.Chars[p.Offset:]...)
		var repl []Block
		if len(before) > 0 {
			repl = append(repl, paragraph(cur.Align, before))
		}
		repl = append(repl, Block{Kind: BlockHorizontalRule}, paragraph(cur.Align, after))
		s.blocks = replaceBlocks(s.blocks, p.Block, p.Block+1, repl...)
		s.sel = Cursor(Pos{Block: p.Block + len(repl) - 1})
		s.stored = nil
		return nil
	})
}

func (c *chain) SelectParentNode() Chain {
	return c.add(func(s *state) error {
		from, to := s.sel.From(), s.sel.To()
		if s.sel.Node || from.Block != to.Block {
			return ErrNoParent
		}
		bi := from.Block
		s.sel = Selection{
			Anchor: Pos{Block: bi},
			Head:   Pos{Block: bi, Offset: len(s.blocks[bi].Chars)},
			Node:   true,
		}
		return nil
	})
}

func (c *chain) DeleteSelection() Chain {
	return c.add(func(s *state) error {
		if s.sel.Empty() {
			return ErrEmptySelection
		}
		deleteRange(s)
		return nil
	})
}

func (c *chain) ExtendMarkRange(name string) Chain {
	return c.add(func(s *state) error {
		if s.sel.Node {
			return nil
		}
		from, to, ok := s.markRange(s.sel.From(), name)
		// Only grow: a run that does not cover the selection leaves it alone.
		if !ok || s.sel.From().Less(from) || to.Less(s.sel.To()) {
			return nil
		}
		s.sel = Selection{Anchor: from, Head: to}
		return nil
	})
}

func (c *chain) SetLink(attrs map[string]string) Chain {
	return c.add(func(s *state) error {
		href := strings.TrimSpace(attrs[model.AttrHref])
		if href == "" {
			return ErrInvalidLink
		}
		if s.sel.Empty() {
			m := s.cursorMarks()
			m.Link = href
			s.stored = &m
			return nil
		}
		from, to := s.selectionRange()
		s.eachChar(from, to, func(ch *Char) { ch.Marks.Link = href })
		return nil
	})
}

func (c *chain) UnsetLink() Chain {
	return c.add(func(s *state) error {
		from, to := s.selectionRange()
		if s.sel.Empty() {
			if lo, hi, ok := s.markRange(s.sel.Head, model.MarkLink); ok {
				from, to = lo, hi
			}
			if s.stored != nil {
				s.stored.Link = ""
			}
		}
		s.eachChar(from, to, func(ch *Char) { ch.Marks.Link = "" })
		return nil
	})
}

func (c *chain) InsertText(text string) Chain {
	return c.add(func(s *state) error {
		if text == "" {
			return nil
		}
		marks := s.cursorMarks()
		if !s.sel.Empty() {
			deleteRange(s)
		}
		ensureTextBlock(s)
		p := s.sel.Head
		if s.stored == nil && marks.Link != "" {
			// Links do not grow when typing at their end.
			chars := s.blocks[p.Block].Chars
			if p.Offset >= len(chars) || chars[p.Offset].Marks.Link != marks.Link {
				marks.Link = ""
			}
		}
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			if i > 0 {
				splitAt(s)
				p = s.sel.Head
			}
			ins := make([]Char, 0, len(line))
			for _, r := range line {
				ins = append(ins, Char{R: r, Marks: marks})
			}
			b := &s.blocks[p.Block]
			b.Chars = append(b.Chars[:p.Offset], append(ins, b.Chars[p.Offset:]...)...)
			p.Offset += len(ins)
			s.sel = Cursor(p)
		}
		s.stored = nil
		return nil
	})
}

func (c *chain) SplitBlock() Chain {
	return c.add(func(s *state) error {
		if !s.sel.Empty() {
			deleteRange(s)
		}
		if !s.blocks[s.sel.Head.Block].text() {
			bi := s.sel.Head.Block
			s.blocks = insertBlocks(s.blocks, bi+1, paragraph("", nil))
			s.sel = Cursor(Pos{Block: bi + 1})
			return nil
		}
		splitAt(s)
		return nil
	})
}

func (c *chain) DeleteBackward() Chain {
	return c.add(func(s *state) error {
		if !s.sel.Empty() {
			deleteRange(s)
			return nil
		}
		p := s.sel.Head
		cur := s.blocks[p.Block]
		switch {
		case !cur.text():
			s.blocks = replaceBlocks(s.blocks, p.Block, p.Block+1)
			if len(s.blocks) == 0 {
				s.blocks = []Block{paragraph("", nil)}
			}
			if p.Block > 0 {
				prev := p.Block - 1
				s.sel = Cursor(Pos{Block: prev, Offset: len(s.blocks[prev].Chars)})
			} else {
				s.sel = Cursor(Pos{})
			}
		case p.Offset > 0:
			b := &s.blocks[p.Block]
			b.Chars = append(b.Chars[:p.Offset-1], b.Chars[p.Offset:]...)
			s.sel = Cursor(Pos{Block: p.Block, Offset: p.Offset - 1})
		case p.Block == 0:
			return ErrAtStart
		case !s.blocks[p.Block-1].text():
			s.blocks = replaceBlocks(s.blocks, p.Block-1, p.Block)
			s.sel = Cursor(Pos{Block: p.Block - 1})
		default:
			prev := &s.blocks[p.Block-1]
			off := len(prev.Chars)
			prev.Chars = append(prev.Chars, cur.Chars...)
			s.blocks = replaceBlocks(s.blocks, p.Block, p.Block+1)
			s.sel = Cursor(Pos{Block: p.Block - 1, Offset: off})
		}
		s.stored = nil
		return nil
	})
}

// deleteRange removes the selected content and collapses the selection at
// the deletion point. A node selection removes the whole block.
func deleteRange(s *state) {
	if s.sel.Node {
		bi := s.sel.From().Block
		s.blocks = replaceBlocks(s.blocks, bi, bi+1)
		if len(s.blocks) == 0 {
			s.blocks = []Block{paragraph("", nil)}
		}
		if bi >= len(s.blocks) {
			bi = len(s.blocks) - 1
		}
		s.sel = Cursor(Pos{Block: bi})
		s.stored = nil
		return
	}
	from, to := s.sel.From(), s.sel.To()
	first, last := s.blocks[from.Block], s.blocks[to.Block]
	var head, tail []Char
	if first.text() {
		head = append(head, first.Chars[:from.Offset]...)
	}
	if last.text() {
		tail = append(tail, last.Chars[to.Offset:]...)
	}
	align := first.Align
	if !first.text() {
		align = last.Align
	}
	merged := paragraph(align, append(head, tail...))
	s.blocks = replaceBlocks(s.blocks, from.Block, to.Block+1, merged)
	s.sel = Cursor(Pos{Block: from.Block, Offset: len(head)})
	s.stored = nil
}

func splitAt(s *state) {
	p := s.sel.Head
	cur := s.blocks[p.Block]
	before := paragraph(cur.Align, append([]Char(nil), cur.Chars[:p.Offset]...))
	after := paragraph(cur.Align, append([]Char(nil), cur.Chars[p.Offset:]...))
	s.blocks = replaceBlocks(s.blocks, p.Block, p.Block+1, before, after)
	s.sel = Cursor(Pos{Block: p.Block + 1})
}

// ensureTextBlock moves a cursor sitting on a rule into a fresh paragraph
// right after it.
func ensureTextBlock(s *state) {
	bi := s.sel.Head.Block
	if s.blocks[bi].text() {
		return
	}
	s.blocks = insertBlocks(s.blocks, bi+1, paragraph("", nil))
	s.sel = Cursor(Pos{Block: bi + 1})
}

func replaceBlocks(blocks []Block, lo, hi int, repl ...Block) []Block {
	out := make([]Block, 0, len(blocks)-(hi-lo)+len(repl))
	out = append(out, blocks[:lo]...)
	out = append(out, repl...)
	return append(out, blocks[hi:]...)
}

func insertBlocks(blocks []Block, at int, ins ...Block) []Block {
	return replaceBlocks(blocks, at, at, ins...)
}
