package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"music-service/internal/models"
	"music-service/internal/rabbitmq"
)

var (
	ErrFriendshipForbidden = errors.New("friendship action not allowed")
	ErrAlreadyFriends      = errors.New("users are already friends")
	ErrDuplicateRequest    = errors.New("friend request already sent")
)

// IncomingRequestError reports that the addressee already sent the caller a
// request; FriendshipID lets the caller accept that one instead.
type IncomingRequestError struct {
	FriendshipID int64
}

func (e *IncomingRequestError) Error() string {
	return fmt.Sprintf("counterpart already sent a friend request (friendship %d)", e.FriendshipID)
}

type FriendshipRepository interface {
	CreateRequest(ctx context.Context, requesterID, addresseeID int64) (*models.Friendship, error)
	Accept(ctx context.Context, friendshipID, userID int64) error
	Reject(ctx context.Context, friendshipID, userID int64) error
	Remove(ctx context.Context, friendshipID, userID int64) error
	ListForUser(ctx context.Context, userID int64) ([]models.FriendshipWithUser, error)
}

type friendshipRepository struct {
	db        *sqlx.DB
	publisher rabbitmq.Publisher
}

func NewFriendshipRepository(db *sqlx.DB, publisher rabbitmq.Publisher) FriendshipRepository {
	return &friendshipRepository{db: db, publisher: publisher}
}

const friendshipColumns = `id, requester_id, addressee_id, status, created_at`

// CreateRequest creates a pending friendship for the pair, or reports the
// conflict that prevents it. The pair row is locked for the duration of the
// transaction; if a mirrored request slips in between, the symmetric unique
// index rejects the insert and the conflict is re-resolved from the winner's
// row.
func (r *friendshipRepository) CreateRequest(ctx context.Context, requesterID, addresseeID int64) (*models.Friendship, error) {
	var created models.Friendship
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var existing models.Friendship
		err := tx.GetContext(ctx, &existing, `
SELECT `+friendshipColumns+`
FROM friendships
WHERE (requester_id=$1 AND addressee_id=$2) OR (requester_id=$2 AND addressee_id=$1)
FOR UPDATE
`, requesterID, addresseeID)
		switch {
		case err == nil:
			return conflictFor(&existing, requesterID)
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		return tx.QueryRowxContext(ctx, `
INSERT INTO friendships (requester_id, addressee_id, status)
VALUES ($1, $2, 'pending')
RETURNING `+friendshipColumns+`
`, requesterID, addresseeID).StructScan(&created)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, r.resolveRace(ctx, requesterID, addresseeID, err)
		}
		return nil, err
	}

	r.logPublish(ctx, "friend.request.created", map[string]any{
		"friendship_id": created.ID,
		"requester_id":  created.RequesterID,
		"addressee_id":  created.AddresseeID,
		"created_at":    created.CreatedAt,
	})

	return &created, nil
}

// Accept marks a pending friendship accepted. Only the addressee may accept;
// accepting an already-accepted friendship is a no-op.
func (r *friendshipRepository) Accept(ctx context.Context, friendshipID, userID int64) error {
	var accepted *models.Friendship
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		f, err := lockFriendship(ctx, tx, friendshipID)
		if err != nil {
			return err
		}
		if f.AddresseeID != userID {
			return ErrFriendshipForbidden
		}
		if f.Status == models.FriendshipAccepted {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE friendships SET status='accepted' WHERE id=$1`, friendshipID); err != nil {
			return err
		}
		accepted = f
		return nil
	})
	if err != nil {
		return err
	}

	if accepted != nil {
		r.logPublish(ctx, "friendship.accepted", map[string]any{
			"friendship_id": accepted.ID,
			"requester_id":  accepted.RequesterID,
			"addressee_id":  accepted.AddresseeID,
		})
	}

	return nil
}

// Reject deletes the friendship record. Only the addressee may reject; the
// current status does not matter.
func (r *friendshipRepository) Reject(ctx context.Context, friendshipID, userID int64) error {
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		f, err := lockFriendship(ctx, tx, friendshipID)
		if err != nil {
			return err
		}
		if f.AddresseeID != userID {
			return ErrFriendshipForbidden
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM friendships WHERE id=$1`, friendshipID)
		return err
	})
	if err != nil {
		return err
	}

	r.logPublish(ctx, "friend.request.rejected", map[string]any{
		"friendship_id": friendshipID,
		"by_user_id":    userID,
	})

	return nil
}

// Remove deletes the friendship record. Either party may remove it; a pending
// row removed by its requester acts as a withdrawal of the request.
func (r *friendshipRepository) Remove(ctx context.Context, friendshipID, userID int64) error {
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		f, err := lockFriendship(ctx, tx, friendshipID)
		if err != nil {
			return err
		}
		if f.RequesterID != userID && f.AddresseeID != userID {
			return ErrFriendshipForbidden
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM friendships WHERE id=$1`, friendshipID)
		return err
	})
	if err != nil {
		return err
	}

	r.logPublish(ctx, "friendship.removed", map[string]any{
		"friendship_id": friendshipID,
		"by_user_id":    userID,
	})

	return nil
}

func (r *friendshipRepository) ListForUser(ctx context.Context, userID int64) ([]models.FriendshipWithUser, error) {
	var friendships []models.FriendshipWithUser
	err := r.db.SelectContext(ctx, &friendships, `
SELECT f.id, f.requester_id, f.addressee_id, f.status, f.created_at,
       u.id AS friend_id, u.nick AS friend_nick, u.email AS friend_email
FROM friendships f
JOIN users u ON u.id = CASE WHEN f.requester_id=$1 THEN f.addressee_id ELSE f.requester_id END
WHERE f.requester_id=$1 OR f.addressee_id=$1
ORDER BY f.id
`, userID)
	return friendships, err
}

// conflictFor maps an existing pair row to the error the caller should see.
func conflictFor(existing *models.Friendship, requesterID int64) error {
	if existing.Status == models.FriendshipAccepted {
		return ErrAlreadyFriends
	}
	if existing.RequesterID == requesterID {
		return ErrDuplicateRequest
	}
	return &IncomingRequestError{FriendshipID: existing.ID}
}

// resolveRace re-reads the pair after a unique violation so the caller gets
// the same conflict error it would have seen had the racer committed first.
func (r *friendshipRepository) resolveRace(ctx context.Context, requesterID, addresseeID int64, original error) error {
	var existing models.Friendship
	err := r.db.GetContext(ctx, &existing, `
SELECT `+friendshipColumns+`
FROM friendships
WHERE (requester_id=$1 AND addressee_id=$2) OR (requester_id=$2 AND addressee_id=$1)
`, requesterID, addresseeID)
	if err != nil {
		return original
	}
	return conflictFor(&existing, requesterID)
}

func lockFriendship(ctx context.Context, tx *sqlx.Tx, friendshipID int64) (*models.Friendship, error) {
	var f models.Friendship
	err := tx.GetContext(ctx, &f, `
SELECT `+friendshipColumns+`
FROM friendships
WHERE id=$1
FOR UPDATE
`, friendshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &f, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *friendshipRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *friendshipRepository) logPublish(ctx context.Context, eventType string, payload any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("warning: failed to publish %s: %v", eventType, err)
	}
}
