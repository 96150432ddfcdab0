package models

type Song struct {
	ID              int64  `db:"id" json:"id"`
	Title           string `db:"title" json:"title"`
	Artist          string `db:"artist" json:"artist"`
	DurationSeconds int    `db:"duration_seconds" json:"duration_seconds"`
	ReleaseDate     string `db:"release_date" json:"release_date"`
	Filename        string `db:"filename" json:"filename"`
	Filepath        string `db:"filepath" json:"-"`
	Mimetype        string `db:"mimetype" json:"mimetype"`
	Filesize        int64  `db:"filesize" json:"filesize"`
	UploadedBy      int64  `db:"uploaded_by" json:"uploaded_by"`
}
