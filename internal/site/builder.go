package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/index"
	"github.com/Bitlatte/folio/internal/logging"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/nav"
	"github.com/Bitlatte/folio/internal/search"
)

// Builder loads content and renders it to the output directory.
type Builder struct {
	Config config.Config
	// Params are the free-form site params handed to every layout.
	Params map[string]interface{}
	Logger *zap.Logger
	Now    func() time.Time
}

func NewBuilder(cfg config.Config, params map[string]interface{}, logger *zap.Logger) *Builder {
	return &Builder{
		Config: cfg,
		Params: params,
		Logger: logging.OrNop(logger),
		Now:    time.Now,
	}
}

// view is what a layout receives.
type view struct {
	model.PageData
	Nav     []nav.Section
	Top     []nav.Section
	Up      nav.Link
	Toc     index.Toc
	Headers []index.Header
	Recent  []*model.Item
}

// Load reads and indexes the content without writing anything. An existing
// full-text database is attached when present.
func (b *Builder) Load(ctx context.Context) (*Site, error) {
	s, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	if dbPath := b.Config.SearchIndexPath(); exists(dbPath) {
		s.FullText = b.openFullText(dbPath)
	}
	s.Searcher = s.newSearcher(b.logger())
	return s, nil
}

func (b *Builder) load(ctx context.Context) (*Site, error) {
	cfg := b.Config
	loader := content.NewLoader(cfg.ContentDir, b.logger())
	loader.NewWithinDays = cfg.NewWithinDays
	if cfg.Workers > 0 {
		loader.Workers = cfg.Workers
	}
	loader.Now = b.now

	pages, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	groups, err := content.LoadTagGroups(cfg.ContentDir)
	if err != nil {
		return nil, err
	}

	idx := index.Build(pages, index.Options{Dev: cfg.IsDev(), Sections: cfg.Sections})

	// Templates see the indexed pages only, in index order.
	byPath := make(map[string]*model.ContentItem, len(pages))
	for _, page := range pages {
		byPath[page.Path] = page
	}
	indexed := make([]*model.ContentItem, 0, idx.Len())
	for _, item := range idx.Items() {
		if page, ok := byPath[item.Path]; ok {
			indexed = append(indexed, page)
		}
	}
	data := &model.SiteData{Params: b.Params}
	data.Collect(indexed)

	s := &Site{
		Config:    cfg,
		Data:      data,
		Index:     idx,
		TagGroups: groups,
		Nav:       nav.New(idx, cfg.Nav),
		BuiltAt:   b.now(),
	}
	s.Searcher = s.newSearcher(b.logger())
	return s, nil
}

// Build loads the content and writes the whole site to the output directory.
func (b *Builder) Build(ctx context.Context) (*Site, error) {
	start := time.Now()
	cfg := b.Config
	log := b.logger()

	if !exists(cfg.LayoutsDir) {
		return nil, fmt.Errorf("layouts directory %q not found", cfg.LayoutsDir)
	}
	tmpl, err := parseLayouts(cfg.LayoutsDir, Funcs())
	if err != nil {
		return nil, err
	}

	s, err := b.load(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("remove output directory %q: %w", cfg.OutputDir, err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", cfg.OutputDir, err)
	}

	if exists(cfg.StaticDir) {
		if err := copyDir(cfg.StaticDir, cfg.OutputDir); err != nil {
			return nil, fmt.Errorf("copy static assets: %w", err)
		}
	} else {
		log.Debug("no static directory", zap.String("dir", cfg.StaticDir))
	}

	r := &renderer{site: s, tmpl: tmpl, outputDir: cfg.OutputDir, log: log}
	rendered, err := r.renderAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := b.writeIndexes(s); err != nil {
		return nil, err
	}
	if err := b.writeFullText(ctx, s); err != nil {
		return nil, err
	}
	s.Searcher = s.newSearcher(log)

	log.Info("site built",
		zap.Int("pages", rendered),
		zap.Int("indexed", s.Index.Len()),
		zap.Int("tags", len(s.Index.Tags())),
		zap.String("output", cfg.OutputDir),
		zap.Duration("took", time.Since(start)),
	)
	return s, nil
}

func (s *Site) newSearcher(log *zap.Logger) *search.Searcher {
	// Keep the interface nil when there is no database.
	var body search.BodyIndex
	if s.FullText != nil {
		body = s.FullText
	}
	searcher := search.NewSearcher(s.Index.Items(), body, log)
	searcher.SearchPaths = s.Config.SearchPaths
	return searcher
}

// writeIndexes writes the JSON indexes, the RSS feed and the sitemap.
func (b *Builder) writeIndexes(s *Site) error {
	out := b.Config.OutputDir
	if err := writeJSON(filepath.Join(out, "search-index.json"), s.Index.Items()); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(out, "tags.json"), s.Tags()); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.WriteRSS(&buf); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(out, "rss.xml"), &buf); err != nil {
		return err
	}

	buf.Reset()
	if err := s.WriteSitemap(&buf); err != nil {
		return err
	}
	return writeFile(filepath.Join(out, "sitemap.xml"), &buf)
}

// writeFullText builds the body index next to its final path and renames it
// into place, then attaches it to s.
func (b *Builder) writeFullText(ctx context.Context, s *Site) error {
	dbPath := b.Config.SearchIndexPath()
	tmpPath := dbPath + ".tmp"
	_ = os.Remove(tmpPath)

	idx, err := search.NewSQLiteIndexer(tmpPath)
	if err != nil {
		return fmt.Errorf("create full-text index: %w", err)
	}
	if err := search.IndexPages(ctx, idx, s.Data.Pages); err != nil {
		return fmt.Errorf("index pages: %w", err)
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		return fmt.Errorf("install full-text index: %w", err)
	}
	s.FullText = b.openFullText(dbPath)
	return nil
}

func (b *Builder) openFullText(path string) *search.SQLiteSearcher {
	fts, err := search.NewSQLiteSearcher(path)
	if err != nil {
		b.logger().Warn("full-text index unavailable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return fts
}

func (b *Builder) logger() *zap.Logger {
	return logging.OrNop(b.Logger)
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

type renderer struct {
	site      *Site
	tmpl      *template.Template
	outputDir string
	log       *zap.Logger
}

// renderAll renders every indexed page, then the home page and the optional
// search, post list and sitemap pages. It returns how many files were written.
func (r *renderer) renderAll(ctx context.Context) (int, error) {
	count := 0
	var home *model.ContentItem
	for _, page := range r.site.Data.Pages {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if page.Path == "/" {
			home = page
			continue
		}
		layout := r.layoutFor(page)
		if layout == "" {
			return count, fmt.Errorf("no layout for %s: neither %q nor %s found", page.SourcePath, page.Layout, baseLayout)
		}
		if err := r.render(page.Link(), layout, r.pageView(page)); err != nil {
			return count, err
		}
		count++
	}

	if r.tmpl.Lookup(homeLayout) == nil {
		return count, fmt.Errorf("homepage layout %s not found", homeLayout)
	}
	homeView := r.baseView("/")
	homeView.Page = home
	homeView.Recent = r.site.Index.Posts(index.PostOptions{Sort: index.SortDate, Limit: 12})
	if err := r.render("/", homeLayout, homeView); err != nil {
		return count, err
	}
	count++

	if r.tmpl.Lookup(searchLayout) != nil {
		v := r.baseView("/search/")
		v.Extra = map[string]interface{}{
			"query":     r.site.Searcher.NewQuery(),
			"tags":      r.site.Index.TagCounts(),
			"tagGroups": r.site.TagGroups,
		}
		if err := r.render("/search/", searchLayout, v); err != nil {
			return count, err
		}
		count++
	}

	if r.tmpl.Lookup(postsLayout) != nil {
		v := r.baseView("/posts/")
		v.Recent = r.site.Index.Posts(index.PostOptions{Sort: index.SortDate})
		if err := r.render("/posts/", postsLayout, v); err != nil {
			return count, err
		}
		count++
	} else {
		r.log.Debug("no post list layout, skipping /posts/", zap.String("layout", postsLayout))
	}

	if r.tmpl.Lookup(sitemapLayout) != nil {
		v := r.baseView("/sitemap/")
		tree := r.site.Index.Tree("/")
		v.Tree = tree.Tree
		v.Headers = tree.Headers
		v.Toc = index.MakeToc(tree.Tree)
		if err := r.render("/sitemap/", sitemapLayout, v); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// layoutFor picks the frontmatter layout, then the kind's default layout,
// then single.html, then base.html.
func (r *renderer) layoutFor(page *model.ContentItem) string {
	if name := lookupLayout(r.tmpl, page.Layout); name != "" {
		return name
	}
	if page.Layout != "" {
		r.log.Warn("layout not found", zap.String("layout", page.Layout), zap.String("page", page.SourcePath))
	}
	var candidates []string
	switch page.Kind {
	case model.KindFolder:
		candidates = append(candidates, folderLayout)
	case model.KindPost:
		candidates = append(candidates, postLayout)
	}
	candidates = append(candidates, singleLayout, baseLayout)
	for _, name := range candidates {
		if r.tmpl.Lookup(name) != nil {
			return name
		}
	}
	return ""
}

func (r *renderer) baseView(path string) view {
	s := r.site
	return view{
		PageData: model.PageData{
			SiteTitle:   s.Config.SiteTitle,
			BaseURL:     s.Config.SiteURL(),
			Site:        s.Data,
			Breadcrumbs: s.Index.Parents(path, "404"),
			Params:      s.Data.Params,
		},
		Nav: s.Nav.Sections(),
		Top: s.Nav.Top(path),
		Up:  s.Nav.Up(path),
	}
}

func (r *renderer) pageView(page *model.ContentItem) view {
	v := r.baseView(page.Path)
	v.Page = page
	v.Layout = page.Layout
	v.Siblings = r.site.Index.Siblings(page.Path)
	switch page.Kind {
	case model.KindFolder:
		tree := r.site.Index.Tree(page.Path)
		v.Tree = tree.Tree
		v.Headers = tree.Headers
		v.Toc = index.MakeToc(tree.Tree)
	case model.KindPost:
		v.Prev, v.Next = r.site.Index.Surround(page.Path)
	}
	return v
}

func (r *renderer) render(urlPath, layout string, data view) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, layout, data); err != nil {
		return fmt.Errorf("render %s with %s: %w", urlPath, layout, err)
	}
	out := filepath.Join(r.outputDir, filepath.FromSlash(urlPath), "index.html")
	if err := writeFile(out, &buf); err != nil {
		return err
	}
	r.log.Debug("rendered", zap.String("path", urlPath), zap.String("layout", layout))
	return nil
}
