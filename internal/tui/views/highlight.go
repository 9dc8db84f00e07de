package views

import (
	"strings"

	"github.com/matheus3301/wppview/internal/search"
	"github.com/matheus3301/wppview/internal/tui/ui"
)

// highlightTags turns marked search output into tview color tags. Only
// segment text is escaped, so user text can never inject tags.
func highlightTags(engine search.Engine, marked string, theme *ui.Theme) string {
	var b strings.Builder
	for _, seg := range engine.Segments(marked) {
		if !seg.Match {
			b.WriteString(cleanText(seg.Text))
			continue
		}
		b.WriteString(ui.Tag(theme.HighlightFg, theme.HighlightBg))
		b.WriteString(cleanText(seg.Text))
		b.WriteString("[-:-]")
	}
	return b.String()
}
