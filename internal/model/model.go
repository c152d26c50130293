package model

import (
	"html/template"
	"time"
)

// Kind classifies a content item.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindPost     Kind = "post"
	KindFile     Kind = "file"
	KindCaptions Kind = "captions"
)

// ContentItem represents a single parsed markdown file (a folder index or a post).
type ContentItem struct {
	SourcePath  string
	Path        string
	Permalink   string
	Kind        Kind
	Layout      string
	Title       string
	ShortTitle  string
	Description string
	Date        time.Time
	Order       *int
	Status      Status
	Visibility  string
	Github      string
	Tags        []string
	Hero        string
	Media       Media
	ContentHTML template.HTML
	PlainText   string
	Frontmatter map[string]interface{}
}

// Link returns the URL the item is published at.
func (c *ContentItem) Link() string {
	if c.Permalink != "" {
		return c.Permalink
	}
	return c.Path
}

// Meta projects the page onto the metadata record used by the index.
func (c *ContentItem) Meta() *Item {
	item := &Item{
		Kind:        c.Kind,
		Path:        c.Path,
		Title:       c.Title,
		Description: c.Description,
	}
	if c.Kind == KindFolder {
		return item
	}
	item.Permalink = c.Permalink
	item.ShortTitle = c.ShortTitle
	item.Date = c.Date
	item.Status = c.Status
	item.Github = c.Github
	item.Tags = c.Tags
	item.Media = ItemMedia{Thumbnail: c.Media.Thumbnail}
	if c.Order != nil {
		order := *c.Order
		item.Order = &order
	}
	return item
}

// SiteData holds all site-wide data, including free-form params and content.
type SiteData struct {
	Params        map[string]interface{}
	Pages         []*ContentItem
	Posts         []*ContentItem
	ContentByKind map[Kind][]*ContentItem
}

// Collect resets the derived page lists from pages.
func (s *SiteData) Collect(pages []*ContentItem) {
	s.Pages = pages
	s.Posts = []*ContentItem{}
	s.ContentByKind = make(map[Kind][]*ContentItem)
	for _, page := range pages {
		s.ContentByKind[page.Kind] = append(s.ContentByKind[page.Kind], page)
		if page.Kind == KindPost {
			s.Posts = append(s.Posts, page)
		}
	}
}
