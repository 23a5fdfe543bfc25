package tui

import (
	"strings"

	"inkmail-cli/internal/engine"
	"inkmail-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// lineRef maps one rendered row back to the document: chars [start, end) of
// block, drawn after pad columns.
type lineRef struct {
	block      int
	start, end int
	pad        int
}

type docView struct {
	lines []string
	refs  []lineRef
}

type charStyle struct {
	marks    engine.Marks
	selected bool
	cursor   bool
}

func (c charStyle) style() lipgloss.Style {
	st := lipgloss.NewStyle()
	m := c.marks
	if m.Bold {
		st = st.Bold(true)
	}
	if m.Italic {
		st = st.Italic(true)
	}
	if m.Underline || m.Link != "" {
		st = st.Underline(true)
	}
	if m.Strike {
		st = st.Strikethrough(true)
	}
	if m.Link != "" {
		st = st.Foreground(colorLink)
	}
	if c.selected {
		st = st.Background(colorSelectedBg).Foreground(colorSelectedFg)
	}
	if c.cursor {
		st = st.Reverse(true)
	}
	return st
}

// renderDocument lays out the blocks at the given width. The cursor is drawn
// only when showCursor is set; selected text is highlighted either way.
func renderDocument(doc *engine.Document, width int, showCursor bool) docView {
	if width < 10 {
		width = 10
	}
	var out docView
	sel := doc.Selection()
	from, to := sel.From(), sel.To()
	head := sel.Head

	for bi, b := range doc.Blocks() {
		if b.Kind == engine.BlockHorizontalRule {
			st := styleMuted()
			if sel.Node && from.Block == bi {
				st = lipgloss.NewStyle().Background(colorSelectedBg)
			}
			out.lines = append(out.lines, st.Render(strings.Repeat(glyphHRule(), width)))
			out.refs = append(out.refs, lineRef{block: bi})
			continue
		}

		inSel := func(off int) bool {
			p := engine.Pos{Block: bi, Offset: off}
			if sel.Node {
				return from.Block == bi
			}
			return !sel.Empty() && !p.Less(from) && p.Less(to)
		}
		isCursor := func(off int) bool {
			return showCursor && sel.Empty() && head.Block == bi && head.Offset == off
		}

		// Wrap on '\n' and at width.
		start := 0
		for start <= len(b.Chars) {
			end := start
			for end < len(b.Chars) && end-start < width-1 && b.Chars[end].R != '\n' {
				end++
			}
			var line strings.Builder
			var run []rune
			var runStyle charStyle
			flush := func() {
				if len(run) > 0 {
					line.WriteString(runStyle.style().Render(string(run)))
					run = run[:0]
				}
			}
			for off := start; off < end; off++ {
				cs := charStyle{marks: b.Chars[off].Marks, selected: inSel(off), cursor: isCursor(off)}
				if cs != runStyle {
					flush()
					runStyle = cs
				}
				run = append(run, b.Chars[off].R)
			}
			flush()
			cols := end - start
			lineEnd := end >= len(b.Chars) || b.Chars[end].R == '\n'
			if lineEnd && isCursor(end) {
				line.WriteString(charStyle{cursor: true}.style().Render(" "))
				cols++
			}

			pad := alignPad(b.Align, width, cols)
			out.lines = append(out.lines, strings.Repeat(" ", pad)+line.String())
			out.refs = append(out.refs, lineRef{block: bi, start: start, end: end, pad: pad})

			if end < len(b.Chars) && b.Chars[end].R == '\n' {
				end++
			} else if end >= len(b.Chars) {
				break
			}
			start = end
		}
	}
	return out
}

func alignPad(align string, width, cols int) int {
	if cols >= width {
		return 0
	}
	switch align {
	case model.AlignCenter:
		return (width - cols) / 2
	case model.AlignRight:
		return width - cols
	default:
		return 0
	}
}

// posAt maps a click at (x, row) within the document area to a position.
func (v docView) posAt(x, row int) (engine.Pos, bool) {
	if row < 0 || row >= len(v.refs) {
		return engine.Pos{}, false
	}
	ref := v.refs[row]
	off := ref.start + x - ref.pad
	if off < ref.start {
		off = ref.start
	}
	if off > ref.end {
		off = ref.end
	}
	return engine.Pos{Block: ref.block, Offset: off}, true
}
