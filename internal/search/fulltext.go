package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"
)

// Hit is one full-text match with a highlighted excerpt.
type Hit struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type FullTextResponse struct {
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

const bodyMatchLimit = 500

type SQLiteSearcher struct {
	db *sql.DB
}

func NewSQLiteSearcher(path string) (*SQLiteSearcher, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteSearcher{db: db}, nil
}

func (s *SQLiteSearcher) Close() error {
	return s.db.Close()
}

// Search ranks pages by relevance to text. Terms are prefix matched and
// all must appear unless or is set.
func (s *SQLiteSearcher) Search(ctx context.Context, text string, or bool, limit, offset int) (FullTextResponse, error) {
	match := sanitizeQuery(text, or)
	if match == "" {
		return FullTextResponse{Hits: []Hit{}}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var total uint64
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM pages_fts WHERE pages_fts MATCH ?`, match).Scan(&total); err != nil {
		return FullTextResponse{}, fmt.Errorf("count query: %w", err)
	}
	resp := FullTextResponse{Total: total, Hits: make([]Hit, 0)}
	if total == 0 {
		return resp, nil
	}

	// FTS5 rejects snippet() in a query with window functions.
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.path, p.title, snippet(pages_fts, 3, '<mark>', '</mark>', '…', 12)
		 FROM pages_fts
		 JOIN pages p ON p.rowid = pages_fts.rowid
		 WHERE pages_fts MATCH ?
		 ORDER BY pages_fts.rank LIMIT ? OFFSET ?`,
		match, limit, offset)
	if err != nil {
		return FullTextResponse{}, fmt.Errorf("search query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Path, &h.Title, &h.Snippet); err != nil {
			return FullTextResponse{}, fmt.Errorf("scan result: %w", err)
		}
		resp.Hits = append(resp.Hits, h)
	}
	if err := rows.Err(); err != nil {
		return FullTextResponse{}, fmt.Errorf("iterate results: %w", err)
	}
	return resp, nil
}

// MatchPaths implements BodyIndex.
func (s *SQLiteSearcher) MatchPaths(ctx context.Context, text string, or bool) ([]string, error) {
	resp, err := s.Search(ctx, text, or, bodyMatchLimit, 0)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		paths = append(paths, h.Path)
	}
	return paths, nil
}

// sanitizeQuery turns free text into an FTS5 expression of quoted prefix
// terms. Operators typed by the user are dropped.
func sanitizeQuery(q string, or bool) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range q {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	var terms []string
	for _, t := range strings.Fields(b.String()) {
		switch strings.ToUpper(t) {
		case "AND", "OR", "NOT", "NEAR":
			continue
		}
		terms = append(terms, `"`+t+`"*`)
	}
	if len(terms) == 0 {
		return ""
	}
	if or {
		return strings.Join(terms, " OR ")
	}
	return strings.Join(terms, " ")
}
