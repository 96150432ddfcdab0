package models

import "time"

// FavoriteSong is a liked song annotated with its title and artist.
type FavoriteSong struct {
	SongID  int64     `db:"song_id" json:"song_id"`
	Title   string    `db:"title" json:"song_name"`
	Artist  string    `db:"artist" json:"artist_name"`
	LikedAt time.Time `db:"liked_at" json:"liked_at"`
}
