package models

type User struct {
	ID               int64  `db:"id" json:"id"`
	Nick             string `db:"nick" json:"nick"`
	Email            string `db:"email" json:"email"`
	PasswordHash     string `db:"password_hash" json:"-"`
	IsAdmin          bool   `db:"is_admin" json:"is_admin"`
	ProfileImagePath string `db:"profile_image_path" json:"profile_image_path"`
}

// PublicUser is the subset of account fields other users may see.
type PublicUser struct {
	ID    int64  `db:"id" json:"id"`
	Nick  string `db:"nick" json:"nick"`
	Email string `db:"email" json:"email"`
}
