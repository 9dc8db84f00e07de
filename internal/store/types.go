package store

import "github.com/matheus3301/wppview/internal/message"

// Chat is a conversation known to the store.
type Chat struct {
	JID           string
	Name          string
	LastMessageAt int64
}

// Record is a stored raw message. Content is nil when the source had none.
type Record struct {
	ID        int64
	ChatJID   string
	MsgID     string
	FromJID   string
	ToJID     string
	Content   *string
	Direction message.Direction
	Timestamp int64
}

// Cursor is a keyset position in a chat's records. Records strictly older
// than it, by (Timestamp, ID), come next.
type Cursor struct {
	Timestamp int64
	ID        int64
}

// IsZero reports whether c is the "start from latest" cursor.
func (c Cursor) IsZero() bool { return c.Timestamp <= 0 }

// Cursor returns the position just after r when paging back.
func (r *Record) Cursor() Cursor {
	return Cursor{Timestamp: r.Timestamp, ID: r.ID}
}

// Raw converts the stored row into the pipeline's input shape.
func (r *Record) Raw() message.RawRecord {
	return message.RawRecord{
		ID:        r.MsgID,
		ChatJID:   r.ChatJID,
		From:      r.FromJID,
		To:        r.ToJID,
		Content:   r.Content,
		Timestamp: r.Timestamp,
		Direction: r.Direction,
	}
}

// RawRecords converts a page of stored rows, preserving order.
func RawRecords(recs []Record) []message.RawRecord {
	out := make([]message.RawRecord, len(recs))
	for i := range recs {
		out[i] = recs[i].Raw()
	}
	return out
}
