package toolbar

// Icon is an opaque reference to a button glyph.
type Icon string

const (
	IconBold          Icon = "bold"
	IconItalic        Icon = "italic"
	IconUnderline     Icon = "underline"
	IconStrikethrough Icon = "strikethrough"
	IconEraser        Icon = "eraser"
	IconSeparator     Icon = "separator-horizontal"
	IconLink          Icon = "link"
	IconAlignLeft     Icon = "align-left"
	IconAlignCenter   Icon = "align-center"
	IconAlignRight    Icon = "align-right"
	IconMail          Icon = "mail"
)

// Terminal fonts cannot render the web icon set, so each icon maps to a
// short glyph. The ASCII set is for fonts without the Unicode symbols.
var (
	unicodeGlyphs = map[Icon]string{
		IconBold:          "𝐁",
		IconItalic:        "𝐼",
		IconUnderline:     "U̲",
		IconStrikethrough: "S̶",
		IconEraser:        "⌫",
		IconSeparator:     "―",
		IconLink:          "🔗",
		IconAlignLeft:     "⇤",
		IconAlignCenter:   "↔",
		IconAlignRight:    "⇥",
		IconMail:          "✉",
	}
	asciiGlyphs = map[Icon]string{
		IconBold:          "B",
		IconItalic:        "I",
		IconUnderline:     "U",
		IconStrikethrough: "S",
		IconEraser:        "DEL",
		IconSeparator:     "--",
		IconLink:          "@",
		IconAlignLeft:     "<|",
		IconAlignCenter:   "||",
		IconAlignRight:    "|>",
		IconMail:          "HTML",
	}
)

// Glyph resolves an icon; unknown icons fall back to their name.
func Glyph(i Icon, ascii bool) string {
	set := unicodeGlyphs
	if ascii {
		set = asciiGlyphs
	}
	if g, ok := set[i]; ok {
		return g
	}
	return string(i)
}
