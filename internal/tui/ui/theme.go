package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor       tcell.Color
	FgColor       tcell.Color
	BorderColor   tcell.Color
	TitleColor    tcell.Color
	TableHeaderFg tcell.Color
	TableCursorFg tcell.Color
	TableCursorBg tcell.Color
	MenuKeyColor  tcell.Color
	LabelColor    tcell.Color
	DimColor      tcell.Color
	HighlightFg   tcell.Color
	HighlightBg   tcell.Color
	FlashColor    tcell.Color
}

// DefaultTheme returns a dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:       tcell.ColorBlack,
		FgColor:       tcell.ColorCadetBlue,
		BorderColor:   tcell.ColorDodgerBlue,
		TitleColor:    tcell.ColorFuchsia,
		TableHeaderFg: tcell.ColorWhite,
		TableCursorFg: tcell.ColorBlack,
		TableCursorBg: tcell.ColorAqua,
		MenuKeyColor:  tcell.ColorDodgerBlue,
		LabelColor:    tcell.ColorOrange,
		DimColor:      tcell.ColorGray,
		HighlightFg:   tcell.ColorBlack,
		HighlightBg:   tcell.ColorYellow,
		FlashColor:    tcell.ColorNavajoWhite,
	}
}

// Tag returns the tview color tag for fg on bg.
func Tag(fg, bg tcell.Color) string {
	return "[" + colorName(fg) + ":" + colorName(bg) + "]"
}

func colorName(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return "-"
	}
	return c.CSS()
}
