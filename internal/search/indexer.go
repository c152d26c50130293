package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Bitlatte/folio/internal/model"
)

// Indexer abstracts the body index so the site builder does not depend on
// a specific implementation.
type Indexer interface {
	IndexPage(ctx context.Context, doc Document) error
	Close() error
}

// Document is a page as stored in the body index.
type Document struct {
	Path        string
	Title       string
	Description string
	Tags        []string
	Body        string
}

// DocumentFor builds the body index document for a parsed page.
func DocumentFor(page *model.ContentItem) Document {
	return Document{
		Path:        page.Path,
		Title:       page.Title,
		Description: page.Description,
		Tags:        page.Tags,
		Body:        page.PlainText,
	}
}

// batchSize is how many documents are written per transaction.
const batchSize = 500

const insertPage = `INSERT OR IGNORE INTO pages (path, title, description, tags, body) VALUES (?, ?, ?, ?, ?)`

// SQLiteIndexer buffers documents and writes them to a fresh SQLite body
// index in batches. It is not safe for concurrent use.
type SQLiteIndexer struct {
	db      *sql.DB
	pending []Document
}

// NewSQLiteIndexer creates a fresh body index at path, dropping any
// previous contents.
func NewSQLiteIndexer(path string) (*SQLiteIndexer, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteIndexer{db: db, pending: make([]Document, 0, batchSize)}, nil
}

func (x *SQLiteIndexer) IndexPage(ctx context.Context, doc Document) error {
	x.pending = append(x.pending, doc)
	if len(x.pending) < batchSize {
		return nil
	}
	return x.write(ctx)
}

// write stores the pending documents in one transaction.
func (x *SQLiteIndexer) write(ctx context.Context) (err error) {
	if len(x.pending) == 0 {
		return nil
	}
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertPage)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, doc := range x.pending {
		if _, err := stmt.ExecContext(ctx, doc.Path, doc.Title, doc.Description, strings.Join(doc.Tags, " "), doc.Body); err != nil {
			return fmt.Errorf("index page %s: %w", doc.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	x.pending = x.pending[:0]
	return nil
}

// Close writes what is still buffered and closes the database.
func (x *SQLiteIndexer) Close() error {
	err := x.write(context.Background())
	if cerr := x.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// IndexPages writes every page into idx and closes it.
func IndexPages(ctx context.Context, idx Indexer, pages []*model.ContentItem) (err error) {
	defer func() {
		if cerr := idx.Close(); err == nil {
			err = cerr
		}
	}()
	for _, page := range pages {
		if err := idx.IndexPage(ctx, DocumentFor(page)); err != nil {
			return err
		}
	}
	return nil
}
