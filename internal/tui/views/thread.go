package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/wppview/internal/api"
	"github.com/matheus3301/wppview/internal/jid"
	"github.com/matheus3301/wppview/internal/tui/ui"
	"github.com/rivo/tview"
)

// Thread shows one chat page as day buckets.
type Thread struct {
	*tview.TextView
	theme   *ui.Theme
	chatJID string
	next    api.ListBucketsRequest
}

// NewThread creates a new thread view.
func NewThread(theme *ui.Theme) *Thread {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitleColor(theme.TitleColor)
	tv.SetTitle(" Messages ")
	return &Thread{TextView: tv, theme: theme}
}

// SetChat switches the thread to another chat and clears it.
func (t *Thread) SetChat(chat api.Chat) {
	t.chatJID = chat.JID
	t.next = api.ListBucketsRequest{ChatJID: chat.JID}
	t.SetTitle(fmt.Sprintf(" %s ", cleanText(chat.Name)))
	t.Clear()
}

// ChatJID returns the JID of the chat on screen.
func (t *Thread) ChatJID() string { return t.chatJID }

// Older returns the request for the page before the one on screen.
func (t *Thread) Older() api.ListBucketsRequest { return t.next }

// Update replaces the content with a fetched page.
func (t *Thread) Update(resp *api.ListBucketsResponse) {
	t.Clear()
	t.next = resp.Next(t.chatJID, 0)
	_, _ = fmt.Fprint(t, renderBuckets(resp.Buckets, t.theme))
	t.ScrollToEnd()
}

func renderBuckets(buckets []api.Bucket, theme *ui.Theme) string {
	var b strings.Builder
	label := ui.Tag(theme.LabelColor, theme.BgColor)
	dim := ui.Tag(theme.DimColor, theme.BgColor)
	for _, bucket := range buckets {
		fmt.Fprintf(&b, "%s── %s ──[-:-]\n", label, cleanText(bucket.Label))
		for _, m := range bucket.Messages {
			fmt.Fprintf(&b, "[::b]%s[-:-:-] %s%s[-:-]\n", cleanText(sender(m)), dim, time.UnixMilli(m.Timestamp).Format("15:04"))
			if m.WellFormed {
				b.WriteString(cleanText(m.Text))
			} else {
				fmt.Fprintf(&b, "%s%s[-:-]", dim, cleanText(m.Text))
			}
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func sender(m api.Message) string {
	if m.From == jid.SelfID || m.Direction == "outbound" {
		return "You"
	}
	return m.From
}
