package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			nick TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			profile_image_path TEXT NOT NULL DEFAULT ''
			)`,
		`CREATE TABLE IF NOT EXISTS friendships (
			id SERIAL PRIMARY KEY,
			requester_id INT NOT NULL REFERENCES users(id),
			addressee_id INT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL CHECK (status IN ('pending','accepted')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (requester_id <> addressee_id)
			)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS friendships_pair_key
			ON friendships (LEAST(requester_id, addressee_id), GREATEST(requester_id, addressee_id))`,
		`CREATE TABLE IF NOT EXISTS messages (
			id SERIAL PRIMARY KEY,
			sender_id INT NOT NULL REFERENCES users(id),
			recipient_id INT NOT NULL REFERENCES users(id),
			content TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			key_timestamp BIGINT NOT NULL,
			sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		`CREATE TABLE IF NOT EXISTS songs (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			duration_seconds INT NOT NULL,
			release_date TEXT NOT NULL,
			filename TEXT NOT NULL,
			filepath TEXT NOT NULL,
			mimetype TEXT NOT NULL,
			filesize BIGINT NOT NULL,
			uploaded_by INT NOT NULL REFERENCES users(id)
			)`,
		`CREATE TABLE IF NOT EXISTS playlists (
			id SERIAL PRIMARY KEY,
			owner_id INT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL
			)`,
		`CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id INT NOT NULL REFERENCES playlists(id),
			song_id INT NOT NULL REFERENCES songs(id),
			position INT NOT NULL,
			PRIMARY KEY (playlist_id, song_id)
			)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			user_id INT NOT NULL REFERENCES users(id),
			song_id INT NOT NULL REFERENCES songs(id),
			liked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, song_id)
			)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
