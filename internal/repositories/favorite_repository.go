package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"music-service/internal/models"
)

var ErrAlreadyFavorite = errors.New("song is already a favorite")

type FavoriteRepository interface {
	ListForUser(ctx context.Context, userID int64) ([]models.FavoriteSong, error)
	Add(ctx context.Context, userID, songID int64) error
	Remove(ctx context.Context, userID, songID int64) error
}

type favoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) ListForUser(ctx context.Context, userID int64) ([]models.FavoriteSong, error) {
	var favorites []models.FavoriteSong
	err := r.db.SelectContext(ctx, &favorites, `
SELECT f.song_id, s.title, s.artist, f.liked_at
FROM favorites f
JOIN songs s ON s.id = f.song_id
WHERE f.user_id=$1
ORDER BY f.liked_at DESC
`, userID)
	return favorites, err
}

func (r *favoriteRepository) Add(ctx context.Context, userID, songID int64) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO favorites (user_id, song_id)
VALUES ($1, $2)
ON CONFLICT (user_id, song_id) DO NOTHING
`, userID, songID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrAlreadyFavorite
	}
	return nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, songID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM favorites WHERE user_id=$1 AND song_id=$2
`, userID, songID)
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
