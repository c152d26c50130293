package content

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/folio/internal/logging"
	"github.com/Bitlatte/folio/internal/model"
)

// frontMatter is the typed view of a page's YAML header.
type frontMatter struct {
	Title       string      `yaml:"title"`
	ShortTitle  string      `yaml:"shortTitle"`
	Description string      `yaml:"description"`
	Type        string      `yaml:"type"`
	Layout      string      `yaml:"layout"`
	Date        string      `yaml:"date"`
	Order       *int        `yaml:"order"`
	Visibility  string      `yaml:"visibility"`
	Permalink   string      `yaml:"permalink"`
	Github      string      `yaml:"github"`
	Tags        []string    `yaml:"tags"`
	Hero        string      `yaml:"hero"`
	Media       model.Media `yaml:"media"`
}

// Loader reads a content directory into content items.
type Loader struct {
	Dir           string
	NewWithinDays int
	Workers       int
	Logger        *zap.Logger
	// Now is the clock used for status; defaults to time.Now.
	Now func() time.Time

	once     sync.Once
	renderer *Renderer
}

func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{
		Dir:           dir,
		NewWithinDays: 90,
		Workers:       8,
		Logger:        logging.OrNop(logger),
		Now:           time.Now,
	}
}

// Load parses every markdown file under Dir. Items come back sorted by path.
func (l *Loader) Load(ctx context.Context) ([]*model.ContentItem, error) {
	if _, err := os.Stat(l.Dir); err != nil {
		return nil, fmt.Errorf("content directory %q: %w", l.Dir, err)
	}

	var files []string
	err := filepath.WalkDir(l.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %q during walk: %w", path, err)
		}
		if path != l.Dir && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isMarkdownFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect content files: %w", err)
	}

	items := make([]*model.ContentItem, len(files))
	g, gctx := errgroup.WithContext(ctx)
	workers := l.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item, err := l.LoadFile(path)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
	l.logger().Debug("content loaded", zap.String("dir", l.Dir), zap.Int("files", len(items)))
	return items, nil
}

// LoadFile parses a single markdown file below Dir.
func (l *Loader) LoadFile(path string) (*model.ContentItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	rel, err := filepath.Rel(l.Dir, path)
	if err != nil {
		return nil, fmt.Errorf("relative path for %q: %w", path, err)
	}
	return l.Parse(rel, raw)
}

// Parse builds a content item from the raw bytes of the file at rel.
func (l *Loader) Parse(rel string, raw []byte) (*model.ContentItem, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		l.logger().Warn("could not parse frontmatter, treating as pure markdown",
			zap.String("file", rel), zap.Error(err))
		fm = frontMatter{}
		body = raw
	}
	var params map[string]interface{}
	if _, err := frontmatter.Parse(bytes.NewReader(raw), &params); err != nil || params == nil {
		params = map[string]interface{}{}
	}

	rendered, err := l.markdown().Render(body)
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file %q: %w", rel, err)
	}

	sitePath := SitePath(rel)
	item := &model.ContentItem{
		SourcePath:  filepath.ToSlash(rel),
		Path:        sitePath,
		Layout:      fm.Layout,
		Title:       fm.Title,
		ShortTitle:  fm.ShortTitle,
		Description: fm.Description,
		Order:       fm.Order,
		Visibility:  fm.Visibility,
		Github:      fm.Github,
		Tags:        fm.Tags,
		Hero:        fm.Hero,
		Media:       fm.Media,
		Permalink:   fm.Permalink,
		ContentHTML: template.HTML(rendered.HTML),
		PlainText:   rendered.PlainText,
		Frontmatter: params,
	}

	if item.Title == "" {
		item.Title = rendered.Heading
	}
	if item.Title == "" {
		item.Title = titleFromFile(titleSource(rel))
	}

	item.Kind = deriveKind(fm.Type, fm.Layout, rel)

	var date time.Time
	if fm.Date != "" {
		parsed, ok := ParseDate(fm.Date)
		if !ok {
			l.logger().Warn("could not parse date, use YYYY-MM-DD or RFC3339",
				zap.String("file", rel), zap.String("date", fm.Date))
		}
		date = parsed
	}
	item.Status, item.Date = deriveStatus(fm.Layout, fm.Visibility, date, l.now(), l.NewWithinDays)

	if item.Permalink == "" {
		item.Permalink = flatPermalink(sitePath, item.Kind)
	} else {
		item.Permalink = NormalizePath(item.Permalink)
	}
	return item, nil
}

func (l *Loader) logger() *zap.Logger {
	return logging.OrNop(l.Logger)
}

func (l *Loader) markdown() *Renderer {
	l.once.Do(func() {
		if l.renderer == nil {
			l.renderer = NewRenderer()
		}
	})
	return l.renderer
}

func (l *Loader) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

// titleSource picks the name a fallback title is made from; index files use their folder.
func titleSource(rel string) string {
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	if strings.TrimSuffix(base, filepath.Ext(base)) != "index" {
		return base
	}
	dir := filepath.Base(filepath.Dir(rel))
	if dir == "." || dir == "/" {
		return "home"
	}
	return dir
}

// LoadTagGroups reads tag groups from tags.yaml in dir. Keys starting with an
// underscore and non-list values are skipped; file order is kept. A missing
// file yields no groups.
func LoadTagGroups(dir string) ([]model.TagGroup, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "tags.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}
	return ParseTagGroups(raw)
}

func ParseTagGroups(raw []byte) ([]model.TagGroup, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tags: %w", err)
	}
	var groups []model.TagGroup
	for _, entry := range doc {
		title, ok := entry.Key.(string)
		if !ok || strings.HasPrefix(title, "_") {
			continue
		}
		list, ok := entry.Value.([]interface{})
		if !ok {
			continue
		}
		group := model.TagGroup{Title: title, Tags: make([]string, 0, len(list))}
		for _, v := range list {
			group.Tags = append(group.Tags, fmt.Sprint(v))
		}
		groups = append(groups, group)
	}
	return groups, nil
}
