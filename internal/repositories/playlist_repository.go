package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"music-service/internal/models"
)

var ErrSongAlreadyInPlaylist = errors.New("song is already in the playlist")

type PlaylistRepository interface {
	ListForUser(ctx context.Context, ownerID int64) ([]models.PlaylistSummary, error)
	GetOwned(ctx context.Context, playlistID, ownerID int64) (*models.Playlist, error)
	Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error)
	Create(ctx context.Context, ownerID int64, name string) (*models.Playlist, error)
	Rename(ctx context.Context, playlistID, ownerID int64, name string) error
	Delete(ctx context.Context, playlistID, ownerID int64) error
	AddSong(ctx context.Context, playlistID, songID int64) error
	RemoveSong(ctx context.Context, playlistID, songID int64) error
}

type playlistRepository struct {
	db *sqlx.DB
}

func NewPlaylistRepository(db *sqlx.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) ListForUser(ctx context.Context, ownerID int64) ([]models.PlaylistSummary, error) {
	var playlists []models.PlaylistSummary
	err := r.db.SelectContext(ctx, &playlists, `
SELECT p.id, p.name, COUNT(ps.song_id) AS song_count
FROM playlists p
LEFT JOIN playlist_songs ps ON ps.playlist_id = p.id
WHERE p.owner_id=$1
GROUP BY p.id, p.name
ORDER BY p.id
`, ownerID)
	return playlists, err
}

func (r *playlistRepository) GetOwned(ctx context.Context, playlistID, ownerID int64) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.db.GetContext(ctx, &playlist, `
SELECT id, owner_id, name FROM playlists WHERE id=$1 AND owner_id=$2
`, playlistID, ownerID)
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (r *playlistRepository) Songs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	var songs []models.PlaylistSong
	err := r.db.SelectContext(ctx, &songs, `
SELECT s.id AS song_id, s.title, s.artist, ps.position
FROM playlist_songs ps
JOIN songs s ON s.id = ps.song_id
WHERE ps.playlist_id=$1
ORDER BY ps.position
`, playlistID)
	return songs, err
}

func (r *playlistRepository) Create(ctx context.Context, ownerID int64, name string) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO playlists (owner_id, name)
VALUES ($1, $2)
RETURNING id, owner_id, name
`, ownerID, name).StructScan(&playlist)
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

func (r *playlistRepository) Rename(ctx context.Context, playlistID, ownerID int64, name string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE playlists SET name=$3 WHERE id=$1 AND owner_id=$2
`, playlistID, ownerID, name)
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

func (r *playlistRepository) Delete(ctx context.Context, playlistID, ownerID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id=$1`, playlistID); err != nil {
		tx.Rollback()
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id=$1 AND owner_id=$2`, playlistID, ownerID)
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

func (r *playlistRepository) AddSong(ctx context.Context, playlistID, songID int64) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO playlist_songs (playlist_id, song_id, position)
SELECT $1::int, $2::int, COALESCE(MAX(position), 0) + 1
FROM playlist_songs WHERE playlist_id=$1
ON CONFLICT (playlist_id, song_id) DO NOTHING
`, playlistID, songID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrSongAlreadyInPlaylist
	}
	return nil
}

func (r *playlistRepository) RemoveSong(ctx context.Context, playlistID, songID int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM playlist_songs WHERE playlist_id=$1 AND song_id=$2
`, playlistID, songID)
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
