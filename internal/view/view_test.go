package view

import (
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/wppview/internal/bucket"
	"github.com/matheus3301/wppview/internal/jid"
	"github.com/matheus3301/wppview/internal/message"
	"github.com/matheus3301/wppview/internal/search"
	"github.com/matheus3301/wppview/internal/store"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func strPtr(s string) *string { return &s }

type fakeSource struct {
	recs   []store.Record
	err    error
	calls  int
	limit  int
	before store.Cursor
}

func (f *fakeSource) ListRecords(_ string, before store.Cursor, limit int) ([]store.Record, error) {
	f.calls++
	f.limit = limit
	f.before = before
	return f.recs, f.err
}

// newestFirst mimics the store's page order.
func newestFirst() *fakeSource {
	return &fakeSource{recs: []store.Record{
		{MsgID: "t2", FromJID: "me", ToJID: "1@s.whatsapp.net", Content: strPtr(`{"text":"see you Tomorrow"}`), Direction: message.Outbound, Timestamp: now.Add(-time.Hour).UnixMilli()},
		{MsgID: "t1", FromJID: "1@s.whatsapp.net", ToJID: "me", Content: strPtr("tomorrow?"), Timestamp: now.Add(-2 * time.Hour).UnixMilli()},
		{MsgID: "y1", FromJID: "1@s.whatsapp.net", ToJID: "me", Content: strPtr("{}"), Timestamp: now.AddDate(0, 0, -1).UnixMilli()},
		{MsgID: "o1", FromJID: "1@lid", ToJID: "me", Content: nil, Timestamp: time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC).UnixMilli()},
	}}
}

func TestPageIsChronologicalAndNormalized(t *testing.T) {
	svc := NewService(newestFirst(), fixedClock, Options{}, nil)

	msgs, _, err := svc.Page("1@s.whatsapp.net", store.Cursor{}, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	require.Equal(t, "o1", msgs[0].ID)
	require.Equal(t, "", msgs[0].DisplayText)
	require.False(t, msgs[0].WellFormed)
	require.Equal(t, jid.LinkedDevice, msgs[0].From.Namespace)

	require.Equal(t, "y1", msgs[1].ID)
	require.Equal(t, "unsupported message", msgs[1].DisplayText)

	require.Equal(t, "t2", msgs[3].ID)
	require.Equal(t, "see you Tomorrow", msgs[3].DisplayText)
	require.Equal(t, jid.Self, msgs[3].From.Namespace)
}

func TestPageUsesDefaultPageSize(t *testing.T) {
	src := newestFirst()
	svc := NewService(src, fixedClock, Options{PageSize: 7}, nil)
	_, _, err := svc.Page("c", store.Cursor{}, 0)
	require.NoError(t, err)
	require.Equal(t, 7, src.limit)

	_, _, err = svc.Page("c", store.Cursor{}, 3)
	require.NoError(t, err)
	require.Equal(t, 3, src.limit)
}

func TestPageReturnsOldestRecordCursor(t *testing.T) {
	src := newestFirst()
	src.recs[3].ID = 11
	svc := NewService(src, fixedClock, Options{}, nil)

	before := store.Cursor{Timestamp: now.UnixMilli(), ID: 40}
	_, next, err := svc.Page("c", before, 0)
	require.NoError(t, err)
	require.Equal(t, before, src.before)
	require.Equal(t, store.Cursor{Timestamp: src.recs[3].Timestamp, ID: 11}, next)

	src.recs = nil
	msgs, next, err := svc.Page("c", next, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.True(t, next.IsZero())
}

func TestBuckets(t *testing.T) {
	svc := NewService(newestFirst(), fixedClock, Options{Labels: bucket.Labels{Today: "Hoje"}}, nil)

	buckets, _, err := svc.Buckets("c", store.Cursor{}, 0)
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	require.Equal(t, "02/01/2025", buckets[0].Label)
	require.Equal(t, "Yesterday", buckets[1].Label)
	require.Equal(t, "Hoje", buckets[2].Label)
	require.Equal(t, 2, buckets[2].Len())
	require.Equal(t, "t1", buckets[2].Messages[0].ID)
}

func TestBucketsInvalidTimestamp(t *testing.T) {
	src := &fakeSource{recs: []store.Record{{MsgID: "bad", Timestamp: 0}}}
	svc := NewService(src, fixedClock, Options{}, nil)

	_, _, err := svc.Buckets("c", store.Cursor{}, 0)
	require.ErrorIs(t, err, bucket.ErrInvalidTimestamp)
}

func TestSourceError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeSource{err: boom}, fixedClock, Options{}, nil)

	_, _, err := svc.Buckets("c", store.Cursor{}, 0)
	require.ErrorIs(t, err, boom)
	_, err = svc.Search("c", "x", 0)
	require.ErrorIs(t, err, boom)
}

func TestSearch(t *testing.T) {
	svc := NewService(newestFirst(), fixedClock, Options{Marker: search.Marker{Open: "<b>", Close: "</b>"}}, nil)

	hits, err := svc.Search("c", "TOMORROW", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "<b>tomorrow</b>?", hits[0].Highlighted)
	require.Equal(t, "see you <b>Tomorrow</b>", hits[1].Highlighted)
}

func TestSearchLabeled(t *testing.T) {
	svc := NewService(newestFirst(), fixedClock, Options{}, nil)

	hits, err := svc.SearchLabeled("c", "message", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "Yesterday", hits[0].Label)
	require.Equal(t, "y1", hits[0].Message.ID)
	require.Equal(t, "unsupported <mark>message</mark>", hits[0].Highlighted)
}

func TestSearchBlankQueryReturnsPage(t *testing.T) {
	svc := NewService(newestFirst(), fixedClock, Options{}, nil)
	hits, err := svc.SearchLabeled("c", "  ", 0)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	require.Equal(t, "o1", hits[0].Message.ID)
}

// TestClockReadOncePerRequest verifies that a request uses a single
// clock reading even if the clock advances mid-request.
func TestClockReadOncePerRequest(t *testing.T) {
	reads := 0
	clock := func() time.Time {
		reads++
		return now.AddDate(0, 0, reads-1)
	}
	svc := NewService(newestFirst(), clock, Options{}, nil)

	buckets, _, err := svc.Buckets("c", store.Cursor{}, 0)
	require.NoError(t, err)
	require.Equal(t, 1, reads)
	require.Equal(t, "Today", buckets[len(buckets)-1].Label)
}
