package views

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppview/internal/api"
	"github.com/matheus3301/wppview/internal/tui/ui"
	"github.com/rivo/tview"
)

// ChatList is the table of stored chats.
type ChatList struct {
	*tview.Table
	theme *ui.Theme
	chats []api.Chat
}

// NewChatList creates a new chat list table.
func NewChatList(theme *ui.Theme) *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" Chats ")
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &ChatList{Table: table, theme: theme}
}

// Update refreshes the chat list with new data.
func (cl *ChatList) Update(chats []api.Chat) {
	cl.chats = chats
	cl.Clear()

	for col, h := range []string{" NAME", " KIND", " LAST"} {
		cl.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}

	for i, chat := range chats {
		row := i + 1
		cl.SetCell(row, 0, tview.NewTableCell(" "+cleanText(chat.Name)).SetMaxWidth(40).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+chat.Namespace).SetTextColor(cl.theme.DimColor))
		cl.SetCell(row, 2, tview.NewTableCell(" "+formatTimestamp(chat.LastMessageAt, time.Now())).SetMaxWidth(12).SetTextColor(cl.theme.FgColor))
	}
}

// SelectedChat returns the selected chat, or false when none is selected.
func (cl *ChatList) SelectedChat() (api.Chat, bool) {
	row, _ := cl.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(cl.chats) {
		return cl.chats[idx], true
	}
	return api.Chat{}, false
}

func formatTimestamp(ms int64, now time.Time) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms).In(now.Location())
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("02/01")
}
