package api

import (
	"encoding/json"
	"fmt"

	"github.com/matheus3301/wppview/internal/bucket"
	"github.com/matheus3301/wppview/internal/jid"
	"github.com/matheus3301/wppview/internal/message"
	"github.com/matheus3301/wppview/internal/store"
	"github.com/matheus3301/wppview/internal/view"
	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Requests and responses travel as google.protobuf.Struct; these types are
// their typed form on either side of the wire.

// ListBucketsRequest asks for one page of a chat grouped by day. The page
// holds messages strictly older than (BeforeTs, BeforeID); a zero BeforeTs
// asks for the newest page.
type ListBucketsRequest struct {
	ChatJID  string `json:"chat_jid"`
	BeforeTs int64  `json:"before_ts,omitempty"`
	BeforeID int64  `json:"before_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (r ListBucketsRequest) cursor() store.Cursor {
	return store.Cursor{Timestamp: r.BeforeTs, ID: r.BeforeID}
}

// SearchRequest asks for the messages of a chat page matching Query.
type SearchRequest struct {
	ChatJID string `json:"chat_jid"`
	Query   string `json:"query"`
	Limit   int    `json:"limit,omitempty"`
}

// ListChatsRequest asks for known chats, most recent first.
type ListChatsRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Message is a normalized message as sent to clients.
type Message struct {
	ID            string `json:"id"`
	ChatJID       string `json:"chat_jid"`
	Timestamp     int64  `json:"timestamp_unix_ms"`
	Direction     string `json:"direction"`
	From          string `json:"from"`
	FromNamespace string `json:"from_namespace"`
	To            string `json:"to"`
	ToNamespace   string `json:"to_namespace"`
	Text          string `json:"text"`
	WellFormed    bool   `json:"well_formed"`
	Highlighted   string `json:"highlighted,omitempty"`
	Label         string `json:"label,omitempty"`
}

// Bucket is a labeled day of messages.
type Bucket struct {
	Label    string    `json:"label"`
	Messages []Message `json:"messages"`
}

// Chat is a stored conversation.
type Chat struct {
	JID           string `json:"jid"`
	Name          string `json:"name"`
	Namespace     string `json:"namespace"`
	LastMessageAt int64  `json:"last_message_at_unix_ms"`
}

// ListBucketsResponse carries the bucketed page. NextBeforeTs and
// NextBeforeID page further back; both are zero on an empty page.
type ListBucketsResponse struct {
	RequestID    string   `json:"request_id"`
	Buckets      []Bucket `json:"buckets"`
	NextBeforeTs int64    `json:"next_before_ts,omitempty"`
	NextBeforeID int64    `json:"next_before_id,omitempty"`
}

// Next returns the request for the page older than this one.
func (r *ListBucketsResponse) Next(chatJID string, limit int) ListBucketsRequest {
	return ListBucketsRequest{ChatJID: chatJID, BeforeTs: r.NextBeforeTs, BeforeID: r.NextBeforeID, Limit: limit}
}

// SearchResponse carries the highlighted hits in display order.
type SearchResponse struct {
	RequestID string    `json:"request_id"`
	Hits      []Message `json:"hits"`
}

// ListChatsResponse carries a page of chats.
type ListChatsResponse struct {
	RequestID string `json:"request_id"`
	Chats     []Chat `json:"chats"`
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("struct from %T: %w", v, err)
	}
	return st, nil
}

func fromStruct(st *structpb.Struct, v any) error {
	if st == nil {
		st = &structpb.Struct{}
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func messageToWire(m message.Message) Message {
	return Message{
		ID:            m.ID,
		ChatJID:       m.ChatJID,
		Timestamp:     m.Timestamp,
		Direction:     string(m.Direction),
		From:          m.From.Raw,
		FromNamespace: m.From.Namespace.String(),
		To:            m.To.Raw,
		ToNamespace:   m.To.Namespace.String(),
		Text:          m.DisplayText,
		WellFormed:    m.WellFormed,
	}
}

func bucketsToWire(buckets []bucket.Bucket) []Bucket {
	return lo.Map(buckets, func(b bucket.Bucket, _ int) Bucket {
		return Bucket{
			Label: b.Label,
			Messages: lo.Map(b.Messages, func(m message.Message, _ int) Message {
				return messageToWire(m)
			}),
		}
	})
}

func hitsToWire(hits []view.LabeledHit) []Message {
	return lo.Map(hits, func(h view.LabeledHit, _ int) Message {
		m := messageToWire(h.Message)
		m.Highlighted = h.Highlighted
		m.Label = h.Label
		return m
	})
}

func chatsToWire(chats []store.Chat) []Chat {
	return lo.Map(chats, func(c store.Chat, _ int) Chat {
		return Chat{
			JID:           c.JID,
			Name:          c.Name,
			Namespace:     jid.Classify(c.JID).Namespace.String(),
			LastMessageAt: c.LastMessageAt,
		}
	})
}
