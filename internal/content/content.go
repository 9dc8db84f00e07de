// Package content decodes raw message payloads into a tagged union and
// derives display text from it.
package content

import (
	"bytes"
	"encoding/json"
)

// DefaultPlaceholder is shown for payloads whose text could not be recovered.
const DefaultPlaceholder = "unsupported message"

// textField is the only recognized field of a structured text container.
const textField = "text"

// Kind tags the variant held by a Payload.
type Kind int

const (
	Absent Kind = iota
	PlainText
	StructuredText
	Malformed
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "plain_text"
	case StructuredText:
		return "structured_text"
	case Malformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Payload is a decoded content value. Text is set for PlainText, and for
// StructuredText when the container carried a string text field.
type Payload struct {
	Kind Kind
	Text *string
}

// Result is the display form of a payload.
type Result struct {
	DisplayText string
	WellFormed  bool
}

// Decode classifies raw content. A nil or empty string is Absent; anything
// that is not a JSON object is PlainText and kept verbatim.
func Decode(raw *string) Payload {
	if raw == nil || *raw == "" {
		return Payload{Kind: Absent}
	}
	s := *raw

	data := []byte(s)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Payload{Kind: PlainText, Text: &s}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Payload{Kind: PlainText, Text: &s}
	}

	field, ok := fields[textField]
	if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return Payload{Kind: StructuredText}
	}
	var text string
	if err := json.Unmarshal(field, &text); err != nil {
		return Payload{Kind: Malformed}
	}
	return Payload{Kind: StructuredText, Text: &text}
}

// Normalize maps a payload to display text. The placeholder replaces any
// container whose text is missing or empty; absent content yields "".
func Normalize(p Payload, placeholder string) Result {
	switch p.Kind {
	case PlainText:
		return Result{DisplayText: *p.Text, WellFormed: true}
	case StructuredText:
		if p.Text != nil && *p.Text != "" {
			return Result{DisplayText: *p.Text, WellFormed: true}
		}
		return Result{DisplayText: placeholder}
	case Malformed:
		return Result{DisplayText: placeholder}
	default:
		return Result{}
	}
}

// Encode wraps text in a structured text container.
func Encode(text string) string {
	b, _ := json.Marshal(map[string]string{textField: text})
	return string(b)
}

// EmptyContainer is a container with no text field, used for payloads
// that carry no human-readable text (media, stickers, etc).
const EmptyContainer = "{}"
