// Package message turns raw records from the data source into normalized
// messages ready for bucketing and search.
package message

import (
	"github.com/matheus3301/wppview/internal/content"
	"github.com/matheus3301/wppview/internal/jid"
)

// Direction tells whether a message was received or sent by the local account.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// RawRecord is a message as read from the data source.
type RawRecord struct {
	ID        string
	ChatJID   string
	From      string
	To        string
	Content   *string // nil when the source has no content
	Timestamp int64   // Unix milliseconds
	Direction Direction
}

// Message is a normalized record. DisplayText is always set, possibly to "".
type Message struct {
	ID          string
	ChatJID     string
	Timestamp   int64
	Direction   Direction
	From        jid.Identifier
	To          jid.Identifier
	DisplayText string
	WellFormed  bool
}

// Normalizer applies identifier classification and content normalization.
type Normalizer struct {
	Placeholder string
}

// NewNormalizer returns a Normalizer using placeholder for unreadable
// content, or content.DefaultPlaceholder when placeholder is empty.
func NewNormalizer(placeholder string) Normalizer {
	if placeholder == "" {
		placeholder = content.DefaultPlaceholder
	}
	return Normalizer{Placeholder: placeholder}
}

// Normalize converts a single record. It never fails.
func (n Normalizer) Normalize(r RawRecord) Message {
	res := content.Normalize(content.Decode(r.Content), n.placeholder())
	return Message{
		ID:          r.ID,
		ChatJID:     r.ChatJID,
		Timestamp:   r.Timestamp,
		Direction:   r.Direction,
		From:        jid.Classify(r.From),
		To:          jid.Classify(r.To),
		DisplayText: res.DisplayText,
		WellFormed:  res.WellFormed,
	}
}

// NormalizeAll converts records preserving their order.
func (n Normalizer) NormalizeAll(records []RawRecord) []Message {
	msgs := make([]Message, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, n.Normalize(r))
	}
	return msgs
}

func (n Normalizer) placeholder() string {
	if n.Placeholder == "" {
		return content.DefaultPlaceholder
	}
	return n.Placeholder
}
