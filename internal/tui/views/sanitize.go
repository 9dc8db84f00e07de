package views

import (
	"strings"

	"github.com/rivo/tview"
)

// Codepoints tcell renders at the wrong width: skin tone modifiers, the
// zero width joiner and variation selectors. Dropping them turns an emoji
// sequence into its base glyph.
var dropRanges = [][2]rune{
	{0x1F3FB, 0x1F3FF},
	{0x200D, 0x200D},
	{0xFE00, 0xFE0F},
	{0xE0100, 0xE01EF},
}

func dropRune(r rune) bool {
	for _, rg := range dropRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

// cleanText makes s safe to print in a dynamic-color text view.
func cleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if dropRune(r) {
			return -1
		}
		return r
	}, s)
	return tview.Escape(s)
}
