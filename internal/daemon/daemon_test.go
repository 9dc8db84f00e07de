package daemon

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppview/internal/api"
	"github.com/matheus3301/wppview/internal/lock"
	"github.com/matheus3301/wppview/internal/message"
	"github.com/matheus3301/wppview/internal/store"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// shortBase avoids the 104-char Unix socket limit on macOS.
func shortBase(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "wppview-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func strPtr(s string) *string { return &s }

func TestDaemonLifecycle(t *testing.T) {
	p := Params{SessionName: "test", BaseDir: shortBase(t), Offline: true}

	var db *store.DB
	var srv *Server
	app := fxtest.New(t, Module(p), fx.Populate(&db, &srv))
	app.RequireStart()
	defer app.RequireStop()

	info, err := os.Stat(srv.SocketPath())
	if err != nil {
		t.Fatalf("socket missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("socket perm = %o, want 600", perm)
	}

	ts := time.Now().Add(-time.Minute).UnixMilli()
	recs := []*store.Record{
		{ChatJID: "1@s.whatsapp.net", MsgID: "m1", FromJID: "1@s.whatsapp.net", ToJID: "me", Content: strPtr("hello world"), Direction: message.Inbound, Timestamp: ts},
		{ChatJID: "1@s.whatsapp.net", MsgID: "m2", FromJID: "me", ToJID: "1@s.whatsapp.net", Content: strPtr(`{"text":"Hello back"}`), Direction: message.Outbound, Timestamp: ts + 1},
		{ChatJID: "1@s.whatsapp.net", MsgID: "m3", FromJID: "1@s.whatsapp.net", ToJID: "me", Content: nil, Direction: message.Inbound, Timestamp: ts + 2},
	}
	if err := db.UpsertRecords(recs); err != nil {
		t.Fatal(err)
	}

	c, err := api.Dial(srv.SocketPath())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chats, err := c.ListChats(ctx, api.ListChatsRequest{})
	if err != nil {
		t.Fatalf("ListChats error = %v", err)
	}
	if len(chats.Chats) != 1 || chats.Chats[0].JID != "1@s.whatsapp.net" {
		t.Errorf("chats = %+v", chats.Chats)
	}

	buckets, err := c.ListBuckets(ctx, api.ListBucketsRequest{ChatJID: "1@s.whatsapp.net"})
	if err != nil {
		t.Fatalf("ListBuckets error = %v", err)
	}
	var got []string
	for _, b := range buckets.Buckets {
		for _, m := range b.Messages {
			got = append(got, m.Text)
		}
	}
	want := []string{"hello world", "Hello back", ""}
	if len(got) != len(want) {
		t.Fatalf("texts = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("text[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	hits, err := c.Search(ctx, api.SearchRequest{ChatJID: "1@s.whatsapp.net", Query: "hello"})
	if err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if len(hits.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits.Hits))
	}
	if hits.Hits[1].Highlighted != "<mark>Hello</mark> back" {
		t.Errorf("highlighted = %q", hits.Hits[1].Highlighted)
	}
}

func TestSecondDaemonIsLockedOut(t *testing.T) {
	p := Params{SessionName: "test", BaseDir: shortBase(t), Offline: true}

	first := fxtest.New(t, Module(p))
	first.RequireStart()
	defer first.RequireStop()

	second := fx.New(Module(p), fx.NopLogger)
	err := second.Err()
	if err == nil {
		t.Fatal("second daemon started on a locked session")
	}
	if !errors.Is(err, lock.ErrHeld) && !strings.Contains(err.Error(), "is locked by") {
		t.Errorf("error = %v, want lock.ErrHeld", err)
	}
}
