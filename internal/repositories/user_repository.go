package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"music-service/internal/models"
)

const searchLimit = 50

type UserRepository interface {
	Create(ctx context.Context, nick, email, passwordHash string, isAdmin bool) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	NickTaken(ctx context.Context, nick string, excludeID int64) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	UpdateNick(ctx context.Context, id int64, nick string) error
	GetProfileImagePath(ctx context.Context, id int64) (string, error)
	SetProfileImagePath(ctx context.Context, id int64, path string) error
	Delete(ctx context.Context, id int64) error
	SearchByNickOrEmail(ctx context.Context, excludeID int64, query string) ([]models.PublicUser, error)
	SearchByIDSubstring(ctx context.Context, excludeID int64, digits string) ([]models.PublicUser, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, nick, email, password_hash, is_admin, profile_image_path`

func (r *userRepository) Create(ctx context.Context, nick, email, passwordHash string, isAdmin bool) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO users (nick, email, password_hash, is_admin)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns+`
`, nick, email, passwordHash, isAdmin).StructScan(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func (r *userRepository) NickTaken(ctx context.Context, nick string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(SELECT 1 FROM users WHERE nick=$1 AND id<>$2)
`, nick, excludeID)
	return exists, err
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email)
	return exists, err
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
	return users, err
}

func (r *userRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	return r.execOne(ctx, `UPDATE users SET is_admin=$2 WHERE id=$1`, id, isAdmin)
}

func (r *userRepository) UpdateNick(ctx context.Context, id int64, nick string) error {
	return r.execOne(ctx, `UPDATE users SET nick=$2 WHERE id=$1`, id, nick)
}

func (r *userRepository) GetProfileImagePath(ctx context.Context, id int64) (string, error) {
	var path string
	err := r.db.GetContext(ctx, &path, `SELECT profile_image_path FROM users WHERE id=$1`, id)
	if err != nil {
		return "", err
	}
	return path, nil
}

func (r *userRepository) SetProfileImagePath(ctx context.Context, id int64, path string) error {
	return r.execOne(ctx, `UPDATE users SET profile_image_path=$2 WHERE id=$1`, id, path)
}

// Delete removes the account and everything hanging off it in one
// transaction: favorites, playlist contents, playlists, friendships and
// messages in either direction.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	statements := []string{
		`DELETE FROM favorites WHERE user_id=$1`,
		`DELETE FROM playlist_songs WHERE playlist_id IN (SELECT id FROM playlists WHERE owner_id=$1)`,
		`DELETE FROM playlists WHERE owner_id=$1`,
		`DELETE FROM friendships WHERE requester_id=$1 OR addressee_id=$1`,
		`DELETE FROM messages WHERE sender_id=$1 OR recipient_id=$1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			tx.Rollback()
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if count == 0 {
		tx.Rollback()
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *userRepository) SearchByNickOrEmail(ctx context.Context, excludeID int64, query string) ([]models.PublicUser, error) {
	var users []models.PublicUser
	err := r.db.SelectContext(ctx, &users, `
SELECT id, nick, email
FROM users
WHERE id<>$1 AND (nick ILIKE '%'||$2||'%' OR email ILIKE '%'||$2||'%')
ORDER BY nick ASC
LIMIT $3
`, excludeID, query, searchLimit)
	return users, err
}

// SearchByIDSubstring matches accounts whose id, rendered as text, contains
// the given digit string. Deliberately loose: "42" matches 42, 142 and 421.
func (r *userRepository) SearchByIDSubstring(ctx context.Context, excludeID int64, digits string) ([]models.PublicUser, error) {
	var users []models.PublicUser
	err := r.db.SelectContext(ctx, &users, `
SELECT id, nick, email
FROM users
WHERE id<>$1 AND CAST(id AS TEXT) LIKE '%'||$2||'%'
ORDER BY id ASC
LIMIT $3
`, excludeID, digits, searchLimit)
	return users, err
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return sql.ErrNoRows
	}
	return nil
}
