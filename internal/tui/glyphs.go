package tui

import (
	"strings"
	"sync"
)

// Terminal fonts vary; every decorative glyph has an ASCII fallback.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// parseGlyphs maps a preference string; unknown values keep Unicode.
func parseGlyphs(v string) glyphSet {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "ascii":
		return glyphSetASCII
	default:
		return glyphSetUnicode
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func asciiGlyphs() bool { return glyphs() == glyphSetASCII }

func glyphHRule() string {
	if asciiGlyphs() {
		return "-"
	}
	return "─"
}

func glyphGitHub() string {
	if asciiGlyphs() {
		return "[gh]"
	}
	return "⌥"
}

func glyphSep() string {
	if asciiGlyphs() {
		return "|"
	}
	return "·"
}
