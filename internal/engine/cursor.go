package engine

type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	LineStart
	LineEnd
)

// Move moves the cursor. With extend set only the head moves, growing or
// shrinking the selection; otherwise a non-empty selection collapses towards
// the direction of travel first.
func (d *Document) Move(dir Direction, extend bool) {
	s := &d.st
	if !extend && !s.sel.Empty() && (dir == Left || dir == Right) {
		p := s.sel.From()
		if dir == Right {
			p = s.sel.To()
		}
		d.setSelection(Cursor(p))
		return
	}
	head := step(s, s.sel.Head, dir)
	if extend {
		d.setSelection(Selection{Anchor: s.sel.Anchor, Head: head})
		return
	}
	d.setSelection(Cursor(head))
}

func step(s *state, p Pos, dir Direction) Pos {
	switch dir {
	case Left:
		if p.Offset > 0 {
			p.Offset--
		} else if p.Block > 0 {
			p.Block--
			p.Offset = len(s.blocks[p.Block].Chars)
		}
	case Right:
		if p.Offset < len(s.blocks[p.Block].Chars) {
			p.Offset++
		} else if p.Block < len(s.blocks)-1 {
			p.Block++
			p.Offset = 0
		}
	case Up:
		if p.Block > 0 {
			p.Block--
		} else {
			p.Offset = 0
		}
	case Down:
		if p.Block < len(s.blocks)-1 {
			p.Block++
		} else {
			p.Offset = len(s.blocks[p.Block].Chars)
		}
	case LineStart:
		p.Offset = 0
	case LineEnd:
		p.Offset = len(s.blocks[p.Block].Chars)
	}
	return s.clampPos(p)
}

// SetSelection replaces the selection; positions are clamped to the document.
func (d *Document) SetSelection(anchor, head Pos) {
	d.setSelection(Selection{Anchor: d.st.clampPos(anchor), Head: d.st.clampPos(head)})
}

func (d *Document) SelectAll() {
	last := len(d.st.blocks) - 1
	d.setSelection(Selection{Head: Pos{Block: last, Offset: len(d.st.blocks[last].Chars)}})
}

func (d *Document) setSelection(sel Selection) {
	d.st.sel = sel
	d.st.stored = nil
	d.changed()
}
