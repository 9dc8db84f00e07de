package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/matheus3301/wppview/internal/message"
)

// UpsertRecord stores a raw message (idempotent on chat_jid + msg_id) and
// bumps the owning chat's last activity.
func (db *DB) UpsertRecord(r *Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertRecordTx(tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertRecords stores a batch of raw messages in one transaction.
func (db *DB) UpsertRecords(recs []*Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		if err := upsertRecordTx(tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertRecordTx(tx *sql.Tx, r *Record) error {
	now := time.Now().UnixMilli()
	direction := r.Direction
	if direction == "" {
		direction = message.Inbound
	}

	if _, err := tx.Exec(`
		INSERT INTO chats (jid, last_message_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(jid) DO UPDATE SET
			last_message_at = MAX(chats.last_message_at, excluded.last_message_at),
			updated_at = excluded.updated_at`,
		r.ChatJID, r.Timestamp, now); err != nil {
		return fmt.Errorf("upsert chat %q: %w", r.ChatJID, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO records (chat_jid, msg_id, from_jid, to_jid, content, direction, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_jid, msg_id) DO UPDATE SET
			content = excluded.content,
			from_jid = excluded.from_jid,
			to_jid = excluded.to_jid`,
		r.ChatJID, r.MsgID, r.FromJID, r.ToJID, nullString(r.Content), string(direction), r.Timestamp, now); err != nil {
		return fmt.Errorf("upsert record %q: %w", r.MsgID, err)
	}
	return nil
}

// ListRecords returns a page of records for a chat, newest first, using
// keyset pagination on (timestamp, id). A zero cursor starts from the
// latest record; a cursor without an ID pages on timestamp alone.
func (db *DB) ListRecords(chatJID string, before Cursor, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	beforeTs, beforeID := before.Timestamp, before.ID
	if beforeTs <= 0 {
		beforeTs, beforeID = math.MaxInt64, 0
	}
	if beforeID <= 0 {
		// No id is below MinInt64: the filter reduces to timestamp < beforeTs.
		beforeID = math.MinInt64
	}
	rows, err := db.Query(`
		SELECT id, chat_jid, msg_id, from_jid, to_jid, content, direction, timestamp
		FROM records
		WHERE chat_jid = ? AND (timestamp < ? OR (timestamp = ? AND id < ?))
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, chatJID, beforeTs, beforeTs, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recs []Record
	for rows.Next() {
		var (
			r         Record
			content   sql.NullString
			direction string
		)
		if err := rows.Scan(&r.ID, &r.ChatJID, &r.MsgID, &r.FromJID, &r.ToJID, &content, &direction, &r.Timestamp); err != nil {
			return nil, err
		}
		if content.Valid {
			s := content.String
			r.Content = &s
		}
		r.Direction = message.Direction(direction)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// CountRecords returns the number of records stored for a chat.
func (db *DB) CountRecords(chatJID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM records WHERE chat_jid = ?`, chatJID).Scan(&n)
	return n, err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
