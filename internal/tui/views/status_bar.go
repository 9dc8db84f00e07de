package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"
)

// StatusBar displays the session, the open chat, key hints and flash messages.
type StatusBar struct {
	*tview.TextView
	session string
	chat    string
	hints   []string
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetSession updates the session name display.
func (sb *StatusBar) SetSession(name string) {
	sb.session = name
	sb.render()
}

// SetChat updates the open chat display.
func (sb *StatusBar) SetChat(name string) {
	sb.chat = name
	sb.render()
}

// SetHints updates the key hints.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = hints
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	line := fmt.Sprintf(" [::b]%s[-:-:-]", tview.Escape(sb.session))
	if sb.chat != "" {
		line += " | " + cleanText(sb.chat)
	}
	line += " | " + time.Now().Format("15:04")
	if len(sb.hints) > 0 {
		line += " | [::d]" + tview.Escape(strings.Join(sb.hints, " ")) + "[-:-:-]"
	}
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", tview.Escape(sb.flash))
	}

	_, _ = fmt.Fprint(sb, line)
}
