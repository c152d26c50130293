// Package site turns a content directory into a built site: it loads and
// indexes the content, renders every page through the layouts, and writes
// the feeds, JSON indexes and full-text database alongside.
package site

import (
	"fmt"
	"io"
	"time"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/feed"
	"github.com/Bitlatte/folio/internal/index"
	"github.com/Bitlatte/folio/internal/model"
	"github.com/Bitlatte/folio/internal/nav"
	"github.com/Bitlatte/folio/internal/search"
)

// Site is one loaded snapshot of the content. It is read-only once built and
// safe to share between goroutines.
type Site struct {
	Config    config.Config
	Data      *model.SiteData
	Index     *index.Index
	TagGroups []model.TagGroup
	Nav       *nav.Navigator
	Searcher  *search.Searcher
	FullText  *search.SQLiteSearcher
	BuiltAt   time.Time
}

// Page returns the parsed page at path or permalink, if it is indexed.
func (s *Site) Page(path string) *model.ContentItem {
	item, err := s.Index.Lookup(path)
	if err != nil {
		return nil
	}
	for _, page := range s.Data.Pages {
		if page.Path == item.Path {
			return page
		}
	}
	return nil
}

// TagIndex is the tags.json document.
type TagIndex struct {
	Groups []model.TagGroup `json:"groups"`
	List   []string         `json:"list"`
	Counts []model.Tag      `json:"counts"`
}

func (s *Site) Tags() TagIndex {
	return TagIndex{
		Groups: s.TagGroups,
		List:   index.TagList(s.TagGroups),
		Counts: s.Index.TagCounts(),
	}
}

// Description is the "description" site param, if set.
func (s *Site) Description() string {
	if s.Data == nil {
		return ""
	}
	d, _ := s.Data.Params["description"].(string)
	return d
}

func (s *Site) WriteRSS(w io.Writer) error {
	posts := feed.Posts(s.Index, s.Config.FeedPaths, s.Config.FeedLimit)
	rss := feed.NewRSS(s.Config.SiteTitle, s.Config.SiteURL(), s.Description(), posts, s.BuiltAt)
	if err := feed.Encode(w, rss); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	return nil
}

func (s *Site) WriteSitemap(w io.Writer) error {
	if err := feed.Encode(w, feed.NewSitemap(s.Config.SiteURL(), s.Index.Items())); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return nil
}

// Close releases the full-text database handle.
func (s *Site) Close() error {
	if s == nil || s.FullText == nil {
		return nil
	}
	return s.FullText.Close()
}
