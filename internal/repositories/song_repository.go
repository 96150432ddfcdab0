package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"music-service/internal/models"
)

type SongRepository interface {
	Create(ctx context.Context, song *models.Song) (*models.Song, error)
	GetByID(ctx context.Context, id int64) (*models.Song, error)
}

type songRepository struct {
	db *sqlx.DB
}

func NewSongRepository(db *sqlx.DB) SongRepository {
	return &songRepository{db: db}
}

const songColumns = `id, title, artist, duration_seconds, release_date, filename, filepath, mimetype, filesize, uploaded_by`

func (r *songRepository) Create(ctx context.Context, song *models.Song) (*models.Song, error) {
	var created models.Song
	err := r.db.QueryRowxContext(ctx, `
INSERT INTO songs (title, artist, duration_seconds, release_date, filename, filepath, mimetype, filesize, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+songColumns+`
`, song.Title, song.Artist, song.DurationSeconds, song.ReleaseDate,
		song.Filename, song.Filepath, song.Mimetype, song.Filesize, song.UploadedBy).StructScan(&created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *songRepository) GetByID(ctx context.Context, id int64) (*models.Song, error) {
	var song models.Song
	err := r.db.GetContext(ctx, &song, `SELECT `+songColumns+` FROM songs WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	return &song, nil
}
