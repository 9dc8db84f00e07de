package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppview/internal/api"
	"github.com/matheus3301/wppview/internal/search"
	"github.com/matheus3301/wppview/internal/tui/ui"
	"github.com/rivo/tview"
)

// SearchView searches the open chat and lists highlighted hits.
type SearchView struct {
	*tview.Flex
	theme   *ui.Theme
	engine  search.Engine
	input   *tview.InputField
	results *tview.Table
	onQuery func(query string)
	data    []api.Message
}

// NewSearchView creates a new search view. engine must use the same
// markers as the daemon.
func NewSearchView(theme *ui.Theme, engine search.Engine) *SearchView {
	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	results.SetBorder(true)
	results.SetBorderColor(theme.BorderColor)
	results.SetBackgroundColor(theme.BgColor)
	results.SetTitle(" Results ")
	results.SetTitleColor(theme.TitleColor)
	results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(results, 0, 1, false)

	sv := &SearchView{
		Flex:    flex,
		theme:   theme,
		engine:  engine,
		input:   input,
		results: results,
	}
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && sv.onQuery != nil {
			sv.onQuery(sv.input.GetText())
		}
	})
	return sv
}

// SetOnQuery sets the callback when a search query is submitted.
func (sv *SearchView) SetOnQuery(fn func(query string)) {
	sv.onQuery = fn
}

// Reset clears the query and the results.
func (sv *SearchView) Reset() {
	sv.input.SetText("")
	sv.data = nil
	sv.results.Clear()
}

// Update refreshes search results.
func (sv *SearchView) Update(hits []api.Message) {
	sv.data = hits
	sv.results.Clear()
	sv.results.SetTitle(fmt.Sprintf(" Results (%d) ", len(hits)))

	for col, h := range []string{" DAY", " TIME", " FROM", " MESSAGE"} {
		sv.results.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(sv.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold))
	}

	for i, h := range hits {
		row := i + 1
		sv.results.SetCell(row, 0, tview.NewTableCell(" "+cleanText(h.Label)).SetTextColor(sv.theme.LabelColor))
		sv.results.SetCell(row, 1, tview.NewTableCell(" "+time.UnixMilli(h.Timestamp).Format("15:04")).SetTextColor(sv.theme.DimColor))
		sv.results.SetCell(row, 2, tview.NewTableCell(" "+cleanText(sender(h))).SetMaxWidth(25).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 3, tview.NewTableCell(" "+highlightTags(sv.engine, h.Highlighted, sv.theme)).SetExpansion(1).SetTextColor(sv.theme.FgColor))
	}
}

// Selected returns the selected hit.
func (sv *SearchView) Selected() (api.Message, bool) {
	row, _ := sv.results.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(sv.data) {
		return sv.data[idx], true
	}
	return api.Message{}, false
}

// Input returns the search input field.
func (sv *SearchView) Input() *tview.InputField {
	return sv.input
}

// Results returns the results table.
func (sv *SearchView) Results() *tview.Table {
	return sv.results
}
