package toolbar

import (
	"strings"

	"inkmail-cli/internal/engine"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
)

type Styles struct {
	Box     lipgloss.Style
	Button  lipgloss.Style
	Pressed lipgloss.Style
	Focused lipgloss.Style
}

// blend mixes two hex colors in Lab space; t=0 yields a.
func blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}

func DefaultStyles() Styles {
	const (
		accentLight, accentDark   = "#4f46e5", "#8b87ff"
		surfaceLight, surfaceDark = "#ffffff", "#262626"
	)
	pressedBg := lipgloss.AdaptiveColor{
		Light: blend(accentLight, surfaceLight, 0.7),
		Dark:  blend(accentDark, surfaceDark, 0.55),
	}
	button := lipgloss.NewStyle().Padding(0, 1)
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "250", Dark: "240"}).
			Padding(0, 1),
		Button: button,
		Pressed: button.
			Background(pressedBg).
			Foreground(lipgloss.AdaptiveColor{Light: accentLight, Dark: "255"}).
			Bold(true),
		Focused: lipgloss.NewStyle().Underline(true),
	}
}

type RenderOptions struct {
	ASCII bool
	// Focus is the name of the keyboard-focused action, if any.
	Focus string
	// Width wraps clusters onto further rows when set.
	Width  int
	Styles *Styles
}

// Hit is the clickable area of one button: columns [X0, X1) on row Y.
type Hit struct {
	Name   string
	X0, X1 int
	Y      int
	// Active is the pressed state evaluated for this frame.
	Active bool
}

type Bar struct {
	View string
	Hits []Hit
}

// At returns the action under a cell of the rendered bar.
func (b Bar) At(x, y int) (string, bool) {
	for _, h := range b.Hits {
		if h.Y == y && x >= h.X0 && x < h.X1 {
			return h.Name, true
		}
	}
	return "", false
}

const (
	clusterGap = "  "
	// Border plus padding before the first button of a cluster.
	boxInset  = 2
	boxHeight = 3
)

// Render draws one bordered box per group, in first-seen group order. Every
// button re-evaluates IsActive. Nothing is drawn while the editor is not
// ready.
func Render(e engine.Editor, actions []Action, opts RenderOptions) Bar {
	if !ready(e) {
		return Bar{}
	}
	st := opts.Styles
	if st == nil {
		d := DefaultStyles()
		st = &d
	}

	var (
		bar   Bar
		rows  []string
		row   []string
		rowW  int
		rowY  int
		flush = func() {
			if len(row) == 0 {
				return
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	)
	for _, c := range Clusters(actions) {
		var btns []string
		var hits []Hit
		for _, a := range c.Actions {
			active := a.IsActive()
			style := st.Button
			if active {
				style = st.Pressed
			}
			if a.Name() == opts.Focus {
				style = style.Inherit(st.Focused)
			}
			btn := style.Render(Glyph(a.Icon(), opts.ASCII))
			btns = append(btns, btn)
			hits = append(hits, Hit{Name: a.Name(), X1: xansi.StringWidth(btn), Active: active})
		}
		box := st.Box.Render(strings.Join(btns, " "))
		w := lipgloss.Width(box)

		startX := rowW
		if len(row) > 0 {
			startX += len(clusterGap)
		}
		if opts.Width > 0 && len(row) > 0 && startX+w > opts.Width {
			flush()
			rowY += boxHeight
			startX = 0
		}
		x := startX + boxInset
		for _, h := range hits {
			bw := h.X1
			h.X0, h.X1, h.Y = x, x+bw, rowY+1
			bar.Hits = append(bar.Hits, h)
			x += bw + 1
		}
		if len(row) > 0 {
			row = append(row, clusterGap)
		}
		row = append(row, box)
		rowW = startX + w
	}
	flush()
	bar.View = strings.Join(rows, "\n")
	return bar
}
