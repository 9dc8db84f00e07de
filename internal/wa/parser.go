package wa

import (
	"bytes"

	"github.com/matheus3301/wppview/internal/content"
	"github.com/matheus3301/wppview/internal/jid"
	"github.com/matheus3301/wppview/internal/message"
	"github.com/matheus3301/wppview/internal/store"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// FromLiveMessage converts a live whatsmeow message event into a raw record.
func FromLiveMessage(evt *events.Message) *store.Record {
	return FromHistoryMessage(evt.Message, evt.Info)
}

// FromHistoryMessage converts a message and its info into a raw record.
func FromHistoryMessage(msg *waE2E.Message, info types.MessageInfo) *store.Record {
	chat := NormalizeJID(info.Chat.String())
	sender := NormalizeJID(info.Sender.String())
	from, to := endpoints(chat, sender, info.IsFromMe)

	return &store.Record{
		ChatJID:   chat,
		MsgID:     info.ID,
		FromJID:   from,
		ToJID:     to,
		Content:   encodeContent(msg),
		Direction: direction(info.IsFromMe),
		Timestamp: info.Timestamp.UnixMilli(),
	}
}

// NormalizeJID strips the device part from a JID string
// ("123:4@s.whatsapp.net" -> "123@s.whatsapp.net"). Strings that do not
// parse as a JID are returned unchanged.
func NormalizeJID(s string) string {
	if s == "" {
		return s
	}
	parsed, err := types.ParseJID(s)
	if err != nil || parsed.User == "" {
		return s
	}
	return parsed.ToNonAD().String()
}

// endpoints derives the from/to identifiers. The local account is always
// written as jid.SelfID so the classifier can tell it apart.
func endpoints(chat, sender string, fromMe bool) (string, string) {
	if fromMe {
		return jid.SelfID, chat
	}
	if sender == "" {
		sender = chat
	}
	if jid.Classify(chat).Namespace == jid.Group {
		return sender, chat
	}
	return sender, jid.SelfID
}

func direction(fromMe bool) message.Direction {
	if fromMe {
		return message.Outbound
	}
	return message.Inbound
}

// encodeContent stores plain conversation text verbatim and everything else
// in the text container form. Text that would itself be read as a container
// is wrapped so it round-trips unchanged.
func encodeContent(msg *waE2E.Message) *string {
	if msg == nil {
		return nil
	}
	var s string
	switch {
	case msg.GetConversation() != "":
		s = msg.GetConversation()
		if looksLikeContainer(s) {
			s = content.Encode(s)
		}
	case msg.GetExtendedTextMessage() != nil:
		s = content.Encode(msg.GetExtendedTextMessage().GetText())
	default:
		s = content.EmptyContainer
	}
	return &s
}

func looksLikeContainer(s string) bool {
	trimmed := bytes.TrimSpace([]byte(s))
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// MessageType names the payload kind of a message, for logging.
func MessageType(msg *waE2E.Message) string {
	if msg == nil {
		return "unknown"
	}
	switch {
	case msg.GetConversation() != "" || msg.GetExtendedTextMessage() != nil:
		return "text"
	case msg.GetImageMessage() != nil:
		return "image"
	case msg.GetVideoMessage() != nil:
		return "video"
	case msg.GetAudioMessage() != nil:
		return "audio"
	case msg.GetDocumentMessage() != nil:
		return "document"
	case msg.GetStickerMessage() != nil:
		return "sticker"
	case msg.GetContactMessage() != nil:
		return "contact"
	case msg.GetLocationMessage() != nil:
		return "location"
	default:
		return "unknown"
	}
}
