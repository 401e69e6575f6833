package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens the sqlite file at path, creating its directory if needed.
// A single connection serializes writers, which the tip aggregate update
// relies on.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS stories(
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			story_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			story_type TEXT NOT NULL CHECK(story_type IN ('rekt','rich')),
			author_message TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL,
			tip_count INTEGER NOT NULL DEFAULT 0,
			total_tipped TEXT NOT NULL DEFAULT '0'
		);`,
		`CREATE TABLE IF NOT EXISTS tips(
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			tip_id TEXT UNIQUE NOT NULL,
			story_id TEXT NOT NULL REFERENCES stories(story_id),
			from_fid TEXT NOT NULL DEFAULT '',
			to_fid TEXT NOT NULL DEFAULT '',
			amount TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			transaction_hash TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS tips_story_id ON tips(story_id);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
