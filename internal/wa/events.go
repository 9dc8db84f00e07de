package wa

import (
	"strconv"
	"time"

	"github.com/matheus3301/wppview/internal/store"
	"go.mau.fi/whatsmeow/proto/waHistorySync"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
)

// Sink receives records produced from whatsmeow events.
type Sink interface {
	UpsertRecord(r *store.Record) error
	UpsertRecords(recs []*store.Record) error
	SetCheckpoint(key, value string) error
}

// HistoryCheckpoint is the checkpoint key holding the Unix millisecond time
// of the last stored history batch.
const HistoryCheckpoint = "history_synced_at"

// EventHandler turns whatsmeow message events into raw records and writes
// them to a Sink. Other event types are only logged.
type EventHandler struct {
	sink   Sink
	logger *zap.Logger
}

// NewEventHandler creates a new event handler. A nil logger is replaced by a no-op one.
func NewEventHandler(sink Sink, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{sink: sink, logger: logger}
}

// Handle is the whatsmeow event handler function.
func (h *EventHandler) Handle(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Message:
		h.handleMessage(evt)
	case *events.HistorySync:
		h.handleHistorySync(evt)
	case *events.Connected:
		h.logger.Info("WhatsApp connected")
	case *events.Disconnected:
		h.logger.Warn("WhatsApp disconnected")
	case *events.LoggedOut:
		h.logger.Warn("WhatsApp logged out", zap.String("reason", evt.Reason.String()))
	}
}

func (h *EventHandler) handleMessage(evt *events.Message) {
	rec := FromLiveMessage(evt)
	if !dated(rec) {
		h.logger.Warn("skipping message without timestamp",
			zap.String("msg_id", rec.MsgID),
			zap.String("chat", rec.ChatJID))
		return
	}
	if err := h.sink.UpsertRecord(rec); err != nil {
		h.logger.Error("failed to store message",
			zap.Error(err),
			zap.String("msg_id", rec.MsgID),
			zap.String("type", MessageType(evt.Message)))
	}
}

func (h *EventHandler) handleHistorySync(evt *events.HistorySync) {
	recs := HistoryRecords(evt.Data)
	if len(recs) == 0 {
		return
	}
	if err := h.sink.UpsertRecords(recs); err != nil {
		h.logger.Error("failed to store history batch", zap.Error(err), zap.Int("count", len(recs)))
		return
	}
	if err := h.sink.SetCheckpoint(HistoryCheckpoint, strconv.FormatInt(time.Now().UnixMilli(), 10)); err != nil {
		h.logger.Warn("failed to update history checkpoint", zap.Error(err))
	}
	h.logger.Info("history batch stored", zap.Int("records", len(recs)))
}

// HistoryRecords flattens a history sync blob into raw records. Entries
// without a message or a timestamp are skipped.
func HistoryRecords(data *waHistorySync.HistorySync) []*store.Record {
	if data == nil {
		return nil
	}
	var recs []*store.Record
	for _, conv := range data.GetConversations() {
		chat, err := types.ParseJID(conv.GetID())
		if err != nil {
			continue
		}
		for _, hm := range conv.GetMessages() {
			wmsg := hm.GetMessage()
			if wmsg == nil || wmsg.GetMessage() == nil || wmsg.GetMessageTimestamp() == 0 {
				continue
			}
			key := wmsg.GetKey()
			info := types.MessageInfo{
				MessageSource: types.MessageSource{
					Chat:     chat,
					IsFromMe: key.GetFromMe(),
					IsGroup:  chat.Server == types.GroupServer,
				},
				ID:        key.GetID(),
				Timestamp: time.Unix(int64(wmsg.GetMessageTimestamp()), 0),
			}
			if p := key.GetParticipant(); p != "" {
				if sender, err := types.ParseJID(p); err == nil {
					info.Sender = sender
				}
			}
			if rec := FromHistoryMessage(wmsg.GetMessage(), info); dated(rec) {
				recs = append(recs, rec)
			}
		}
	}
	return recs
}

// dated reports whether rec carries a positive timestamp. A record
// without one cannot be bucketed and would fail its whole chat page.
func dated(rec *store.Record) bool {
	return rec.Timestamp > 0
}
