// Package nav builds the site navigation: the menu sections, the "up" link
// and the contextual top bar.
package nav

import (
	"strings"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/index"
	"github.com/Bitlatte/folio/internal/model"
)

type Link struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Class       string `json:"class,omitempty"`
}

type Section struct {
	Name  string `json:"name"`
	Links []Link `json:"links"`
}

var (
	searchLink = config.NavLink{Path: "/search/", Title: "Search", Description: "Search portfolio"}

	// DefaultSections is the menu used when none is configured.
	DefaultSections = []config.NavSection{
		{Name: "Navigation", Links: []config.NavLink{
			{Path: "/", Title: "Home", Description: "Home page"},
			{Path: "/sitemap/", Title: "Sitemap", Description: "Full list of everything on the site"},
			searchLink,
		}},
		{Name: "Creation", Links: []config.NavLink{
			{Path: "/work/", Title: "Work"},
			{Path: "/products/", Title: "Products"},
			{Path: "/projects/", Title: "Projects"},
			{Path: "/archive/", Title: "Archive"},
		}},
		{Name: "Ideation", Links: []config.NavLink{
			{Path: "/blog/", Title: "Blog"},
			{Path: "/site/", Title: "Site", Description: "Info and site source code"},
		}},
	}

	// DefaultTop is the content half of the top bar.
	DefaultTop = []config.NavLink{
		{Path: "/work/", Title: "Work"},
		{Path: "/products/", Title: "Products"},
		{Path: "/projects/", Title: "Projects"},
		{Path: "/blog/", Title: "Blog"},
		{Path: "/archive/", Title: "Archive", Contextual: true},
	}
)

// Navigator resolves navigation against one index.
type Navigator struct {
	idx      *index.Index
	sections []config.NavSection
	top      []config.NavLink
}

// New returns a Navigator for idx. Empty config falls back to the defaults.
func New(idx *index.Index, cfg config.NavConfig) *Navigator {
	n := &Navigator{idx: idx, sections: cfg.Sections, top: cfg.Top}
	if len(n.sections) == 0 {
		n.sections = DefaultSections
	}
	if len(n.top) == 0 {
		n.top = DefaultTop
	}
	return n
}

// link fills an empty description from the index item at the link's path.
func (n *Navigator) link(l config.NavLink) Link {
	out := Link{Path: l.Path, Title: l.Title, Description: l.Description}
	if out.Description == "" && n.idx != nil {
		if item := n.idx.Item(l.Path); item != nil {
			out.Description = item.Description
		}
	}
	return out
}

// Sections returns the main menu.
func (n *Navigator) Sections() []Section {
	out := make([]Section, 0, len(n.sections))
	for _, s := range n.sections {
		section := Section{Name: s.Name, Links: make([]Link, 0, len(s.Links))}
		for _, l := range s.Links {
			section.Links = append(section.Links, n.link(l))
		}
		out = append(out, section)
	}
	return out
}

// Up links to the parent of path. It is hidden on top-level pages.
func (n *Navigator) Up(path string) Link {
	crumbs := []model.Crumb{{Path: "/", Title: "Home"}}
	if n.idx != nil {
		crumbs = n.idx.Parents(path, "Up")
	}

	parent := crumbs[0].Title
	if len(crumbs) >= 2 {
		parent = crumbs[len(crumbs)-2].Title
	}
	class := "up"
	if len(crumbs) <= 2 {
		class = "up hidden"
	}
	return Link{
		Path:        content.ParentPath(content.NormalizePath(path)),
		Title:       "Up",
		Description: "Go up to " + parent,
		Class:       class,
	}
}

// Top returns the top bar for the page at path. Contextual links are hidden
// unless path is within them.
func (n *Navigator) Top(path string) []Section {
	current := content.NormalizePath(path)
	left := make([]Link, 0, len(n.top))
	for _, l := range n.top {
		link := n.link(l)
		if l.Contextual && !strings.HasPrefix(current, content.NormalizePath(l.Path)) {
			link.Class = "hidden"
		}
		left = append(left, link)
	}
	return []Section{
		{Name: "Content", Links: left},
		{Name: "Navigation", Links: []Link{n.Up(path), n.link(searchLink)}},
	}
}
