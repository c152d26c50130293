package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema recreates the full-text tables. The body index is rebuilt on every
// site build so there are no migrations.
const schema = `
DROP TRIGGER IF EXISTS pages_ai;
DROP TABLE IF EXISTS pages_fts;
DROP TABLE IF EXISTS pages;

CREATE TABLE pages (
	path TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL
);

CREATE VIRTUAL TABLE pages_fts USING fts5(
	title, description, tags, body,
	content='pages',
	content_rowid='rowid'
);

CREATE TRIGGER pages_ai AFTER INSERT ON pages BEGIN
	INSERT INTO pages_fts(rowid, title, description, tags, body)
	VALUES (new.rowid, new.title, new.description, new.tags, new.body);
END;
`

func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open search db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}
