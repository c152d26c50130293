// Package web serves a built site with its JSON API. The site can be
// swapped after a rebuild while requests are in flight.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Bitlatte/folio/internal/index"
	"github.com/Bitlatte/folio/internal/logging"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/nav"
	"github.com/Bitlatte/folio/internal/search"
	"github.com/Bitlatte/folio/internal/site"
)

const (
	defaultSuggestLimit  = 10
	defaultFullTextLimit = 20
)

type Server struct {
	logger *zap.Logger

	mu      sync.RWMutex
	current *snapshot
	retired sync.WaitGroup
}

// snapshot is a served site and the requests still using it.
type snapshot struct {
	site     *site.Site
	inFlight sync.WaitGroup
}

type siteKey struct{}

func NewServer(s *site.Site, logger *zap.Logger) *Server {
	return &Server{current: &snapshot{site: s}, logger: logging.OrNop(logger)}
}

// Site returns the site currently being served.
func (s *Server) Site() *site.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.site
}

// SetSite starts serving next. The previous site is closed once the
// requests that picked it up have finished.
func (s *Server) SetSite(next *site.Site) {
	s.mu.Lock()
	prev := s.current
	s.current = &snapshot{site: next}
	s.mu.Unlock()

	if prev.site == nil || prev.site == next {
		return
	}
	s.retired.Add(1)
	go func() {
		defer s.retired.Done()
		prev.inFlight.Wait()
		if err := prev.site.Close(); err != nil {
			s.logger.Warn("close previous site", zap.Error(err))
		}
	}()
}

// Close waits for replaced sites to drain and closes the current one.
func (s *Server) Close() error {
	s.retired.Wait()
	if st := s.Site(); st != nil {
		return st.Close()
	}
	return nil
}

func (s *Server) acquire() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.current
	snap.inFlight.Add(1)
	return snap
}

// holdSite pins the current site for the whole request.
func (s *Server) holdSite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := s.acquire()
		defer snap.inFlight.Done()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), siteKey{}, snap.site)))
	})
}

// siteFor returns the site pinned to r, or the current one.
func (s *Server) siteFor(r *http.Request) *site.Site {
	if st, ok := r.Context().Value(siteKey{}).(*site.Site); ok {
		return st
	}
	return s.Site()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/content/meta", s.handleMeta)
	mux.HandleFunc("GET /api/content/tags", s.handleTags)
	mux.HandleFunc("GET /api/tags/suggest", s.handleSuggest)
	mux.HandleFunc("GET /api/nav", s.handleNav)
	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/page", s.handlePage)
	mux.HandleFunc("GET /api/fulltext", s.handleFullText)
	mux.HandleFunc("GET /rss.xml", s.handleRSS)
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /", s.handleFiles)
	return s.logRequests(s.holdSite(mux))
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	st := s.siteFor(r)
	res, err := st.Searcher.Search(r.Context(), st.Searcher.ParseQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.siteFor(r).Index.Items())
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.siteFor(r).Tags())
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultSuggestLimit)
	tags := search.SuggestTags(s.siteFor(r).Index.TagCounts(), r.URL.Query().Get("q"), limit)
	if tags == nil {
		tags = []model.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

type navResponse struct {
	Paths    []string      `json:"paths"`
	Sections []nav.Section `json:"sections"`
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	st := s.siteFor(r)
	writeJSON(w, http.StatusOK, navResponse{
		Paths:    st.Index.Paths(),
		Sections: st.Nav.Sections(),
	})
}

type treeResponse struct {
	index.TreeResult
	Toc index.Toc `json:"toc"`
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree := s.siteFor(r).Index.Tree(queryPath(r))
	writeJSON(w, http.StatusOK, treeResponse{TreeResult: tree, Toc: index.MakeToc(tree.Tree)})
}

type pageResponse struct {
	Item        *model.Item   `json:"item"`
	Breadcrumbs []model.Crumb `json:"breadcrumbs"`
	Siblings    []*model.Item `json:"siblings"`
	Prev        *model.Item   `json:"prev,omitempty"`
	Next        *model.Item   `json:"next,omitempty"`
	Up          nav.Link      `json:"up"`
	Top         []nav.Section `json:"top"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	st := s.siteFor(r)
	path := queryPath(r)
	item, err := st.Index.Lookup(path)
	if err != nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no page at %s", path))
		return
	}
	resp := pageResponse{
		Item:        item,
		Breadcrumbs: st.Index.Parents(item.Path, "404"),
		Siblings:    st.Index.Siblings(item.Path),
		Up:          st.Nav.Up(item.Path),
		Top:         st.Nav.Top(item.Path),
	}
	if resp.Siblings == nil {
		resp.Siblings = []*model.Item{}
	}
	if item.IsPost() {
		resp.Prev, resp.Next = st.Index.Surround(item.Path)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFullText(w http.ResponseWriter, r *http.Request) {
	st := s.siteFor(r)
	if st.FullText == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("search index unavailable"))
		return
	}
	q := r.URL.Query()
	limit := parseIntQuery(r, "limit", defaultFullTextLimit)
	offset := parseIntQuery(r, "offset", 0)
	res, err := st.FullText.Search(r.Context(), q.Get("q"), strings.EqualFold(q.Get("op"), string(search.OpOr)), limit, offset)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	s.writeXML(w, "application/rss+xml; charset=utf-8", s.siteFor(r).WriteRSS)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	s.writeXML(w, "application/xml; charset=utf-8", s.siteFor(r).WriteSitemap)
}

func (s *Server) writeXML(w http.ResponseWriter, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = buf.WriteTo(w)
}

// handleFiles serves the output directory uncached. Directories are only
// served when they hold an index.html.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	root := s.siteFor(r).Config.OutputDir
	if strings.HasSuffix(r.URL.Path, "/") {
		dir := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.FileServer(http.Dir(root)).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryPath(r *http.Request) string {
	path := r.URL.Query().Get("path")
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// responseWriter records the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", filepath.Clean(r.URL.Path)),
			zap.Int("status", rw.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
