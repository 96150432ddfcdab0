package models

import "time"

// Message content is ciphertext produced by the client; the server stores and
// relays it without inspecting it. KeyTimestamp identifies the client-side key
// used for encryption.
type Message struct {
	ID           int64     `db:"id" json:"id"`
	SenderID     int64     `db:"sender_id" json:"sender"`
	RecipientID  int64     `db:"recipient_id" json:"recipient"`
	Content      string    `db:"content" json:"content"`
	Read         bool      `db:"is_read" json:"read"`
	KeyTimestamp int64     `db:"key_timestamp" json:"key_timestamp"`
	SentAt       time.Time `db:"sent_at" json:"timestamp"`
}
