package models

type Playlist struct {
	ID      int64  `db:"id" json:"id"`
	OwnerID int64  `db:"owner_id" json:"owner_id"`
	Name    string `db:"name" json:"name"`
}

type PlaylistSummary struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	SongCount int64  `db:"song_count" json:"song_count"`
}

type PlaylistSong struct {
	SongID   int64  `db:"song_id" json:"song_id"`
	Title    string `db:"title" json:"title"`
	Artist   string `db:"artist" json:"artist"`
	Position int    `db:"position" json:"position"`
}
