// Package tui is the terminal viewer: chat list, day-bucketed thread and
// search over the daemon's view service.
package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppview/internal/api"
	"github.com/matheus3301/wppview/internal/search"
	"github.com/matheus3301/wppview/internal/tui/keys"
	"github.com/matheus3301/wppview/internal/tui/ui"
	"github.com/matheus3301/wppview/internal/tui/views"
	"github.com/rivo/tview"
)

// Backend is the subset of the view service client the TUI uses.
type Backend interface {
	ListChats(ctx context.Context, req api.ListChatsRequest) (*api.ListChatsResponse, error)
	ListBuckets(ctx context.Context, req api.ListBucketsRequest) (*api.ListBucketsResponse, error)
	Search(ctx context.Context, req api.SearchRequest) (*api.SearchResponse, error)
}

const (
	pageChats  = "chats"
	pageThread = "thread"
	pageSearch = "search"

	requestTimeout = 10 * time.Second
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	backend   Backend
	registry  *keys.Registry
	statusBar *views.StatusBar
	chatList  *views.ChatList
	thread    *views.Thread
	searchV   *views.SearchView
	chat      api.Chat
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application. engine must carry the daemon's markers.
func NewApp(backend Backend, sessionName string, engine search.Engine) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		backend:   backend,
		registry:  keys.NewRegistry(),
		statusBar: views.NewStatusBar(),
		chatList:  views.NewChatList(theme),
		thread:    views.NewThread(theme),
		searchV:   views.NewSearchView(theme, engine),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetSession(sessionName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q',
		Description: "q:quit",
		Handler:     a.Stop,
	})
	a.registry.AddPage(pageChats, &keys.Action{
		Key: tcell.KeyRune, Rune: 'r',
		Description: "r:refresh",
		Handler:     a.loadChats,
	})
	a.registry.AddPage(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: '/',
		Description: "/:search",
		Handler:     a.showSearch,
	})
	a.registry.AddPage(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'k',
		Description: "k:older",
		Handler:     func() { a.loadThread(a.thread.Older()) },
	})
	a.registry.AddPage(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'n',
		Description: "n:newest",
		Handler:     func() { a.loadThread(api.ListBucketsRequest{ChatJID: a.chat.JID}) },
	})
	a.registry.AddPage(pageThread, &keys.Action{
		Key:         tcell.KeyEscape,
		Description: "esc:chats",
		Handler:     func() { a.switchTo(pageChats, a.chatList) },
	})
	a.registry.AddPage(pageSearch, &keys.Action{
		Key:         tcell.KeyEscape,
		Description: "esc:thread",
		Handler:     func() { a.switchTo(pageThread, a.thread) },
	})
}

func (a *App) setupCallbacks() {
	a.chatList.SetSelectedFunc(func(int, int) {
		if chat, ok := a.chatList.SelectedChat(); ok {
			a.openChat(chat)
		}
	})

	a.searchV.SetOnQuery(func(query string) {
		chatJID := a.chat.JID
		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
			defer cancel()
			resp, err := a.backend.Search(ctx, api.SearchRequest{ChatJID: chatJID, Query: query})
			a.app.QueueUpdateDraw(func() {
				if err != nil {
					a.statusBar.SetFlash("search failed: " + err.Error())
					return
				}
				a.statusBar.SetFlash("")
				a.searchV.Update(resp.Hits)
				a.app.SetFocus(a.searchV.Results())
			})
		}()
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageChats, a.chatList, true, true)
	a.pages.AddPage(pageThread, a.thread, true, false)
	a.pages.AddPage(pageSearch, a.searchV, true, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(root, true)
	a.statusBar.SetHints(a.registry.Hints(pageChats))

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		page, _ := a.pages.GetFrontPage()

		// Text input keeps its keys; Esc still leaves the page.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok && event.Key() != tcell.KeyEscape {
			return event
		}
		if a.registry.HandleEvent(page, event) {
			return nil
		}
		return event
	})
}

func (a *App) switchTo(page string, focus tview.Primitive) {
	a.pages.SwitchToPage(page)
	a.app.SetFocus(focus)
	a.statusBar.SetHints(a.registry.Hints(page))
}

func (a *App) openChat(chat api.Chat) {
	a.chat = chat
	a.thread.SetChat(chat)
	a.searchV.Reset()
	a.statusBar.SetChat(chat.Name)
	a.switchTo(pageThread, a.thread)
	a.loadThread(api.ListBucketsRequest{ChatJID: chat.JID})
}

// loadThread fetches the page req names; a zero cursor means the newest page.
func (a *App) loadThread(req api.ListBucketsRequest) {
	chatJID := req.ChatJID
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
		defer cancel()
		resp, err := a.backend.ListBuckets(ctx, req)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.statusBar.SetFlash("load failed: " + err.Error())
				return
			}
			if chatJID != a.thread.ChatJID() {
				return
			}
			if len(resp.Buckets) == 0 && req.BeforeTs != 0 {
				a.statusBar.SetFlash("no older messages")
				return
			}
			a.statusBar.SetFlash("")
			a.thread.Update(resp)
		})
	}()
}

func (a *App) loadChats() {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, requestTimeout)
		defer cancel()
		resp, err := a.backend.ListChats(ctx, api.ListChatsRequest{})
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.statusBar.SetFlash("load chats failed: " + err.Error())
				return
			}
			a.chatList.Update(resp.Chats)
		})
	}()
}

func (a *App) showSearch() {
	a.switchTo(pageSearch, a.searchV.Input())
}

// Run starts the TUI application.
func (a *App) Run() error {
	a.loadChats()
	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
