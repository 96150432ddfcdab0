package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"music-service/internal/models"
)

var ErrNotRecipient = errors.New("only the recipient may mark a message read")

type MessageRepository interface {
	History(ctx context.Context, userID, friendID int64) ([]models.Message, error)
	HistoryAfter(ctx context.Context, userID, friendID, afterID int64) ([]models.Message, error)
	Create(ctx context.Context, senderID, recipientID int64, content string, keyTimestamp int64) (*models.Message, error)
	MarkConversationRead(ctx context.Context, recipientID, senderID int64) error
	MarkRead(ctx context.Context, messageID, userID int64) error
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id, sender_id, recipient_id, content, is_read, key_timestamp, sent_at`

func (r *messageRepository) History(ctx context.Context, userID, friendID int64) ([]models.Message, error) {
	return r.historyAfter(ctx, userID, friendID, 0)
}

func (r *messageRepository) HistoryAfter(ctx context.Context, userID, friendID, afterID int64) ([]models.Message, error) {
	return r.historyAfter(ctx, userID, friendID, afterID)
}

func (r *messageRepository) historyAfter(ctx context.Context, userID, friendID, afterID int64) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.SelectContext(ctx, &messages, `
SELECT `+messageColumns+`
FROM messages
WHERE id > $3
  AND ((sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1))
ORDER BY sent_at ASC
`, userID, friendID, afterID)
	return messages, err
}

func (r *messageRepository) Create(ctx context.Context, senderID, recipientID int64, content string, keyTimestamp int64) (*models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO messages (sender_id, recipient_id, content, is_read, key_timestamp)
VALUES ($1, $2, $3, FALSE, $4)
RETURNING `+messageColumns+`
`, senderID, recipientID, content, keyTimestamp).StructScan(&msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, recipientID, senderID int64) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE messages SET is_read=TRUE
WHERE recipient_id=$1 AND sender_id=$2 AND is_read=FALSE
`, recipientID, senderID)
	return err
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID, userID int64) error {
	var recipientID int64
	if err := r.db.GetContext(ctx, &recipientID, `SELECT recipient_id FROM messages WHERE id=$1`, messageID); err != nil {
		return err
	}
	if recipientID != userID {
		return ErrNotRecipient
	}
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read=TRUE WHERE id=$1`, messageID)
	return err
}
