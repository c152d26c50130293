// Package index holds the in-memory content index: every folder and post of
// the site as metadata records, ordered hierarchically, with the lookups that
// navigation, listings and search are built from.
package index

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/model"
)

// ErrNotFound is returned when no item lives at a path.
var ErrNotFound = errors.New("index: item not found")

type Options struct {
	// Dev keeps drafts, scheduled, unlisted and hidden posts.
	Dev bool
	// Sections ranks top-level folders, e.g. ["work", "blog"].
	Sections []string
}

// Index is immutable once built and safe for concurrent readers.
type Index struct {
	items  []*model.Item
	byPath map[string]*model.Item
	dev    bool
}

// Build filters, orders and projects pages into an index.
func Build(pages []*model.ContentItem, opts Options) *Index {
	kept := make([]*model.ContentItem, 0, len(pages))
	for _, page := range pages {
		if page.Kind != model.KindFolder && page.Kind != model.KindPost {
			continue
		}
		if !opts.Dev && page.Kind == model.KindPost && !isPublishable(page) {
			continue
		}
		kept = append(kept, page)
	}

	h := newHierarchy(kept, opts.Sections)
	slices.SortStableFunc(kept, h.compare)

	idx := &Index{
		items:  make([]*model.Item, 0, len(kept)),
		byPath: make(map[string]*model.Item, len(kept)),
		dev:    opts.Dev,
	}
	for _, page := range kept {
		item := page.Meta()
		idx.items = append(idx.items, item)
		if _, dup := idx.byPath[item.Path]; !dup {
			idx.byPath[item.Path] = item
		}
	}
	return idx
}

// isPublishable is the production rule for posts: dated, and not a draft,
// unlisted or hidden.
func isPublishable(page *model.ContentItem) bool {
	if page.Date.IsZero() {
		return false
	}
	switch page.Status {
	case model.StatusDraft, model.StatusUnlisted, model.StatusHidden:
		return false
	}
	return true
}

// Items returns every indexed item in hierarchical order.
func (x *Index) Items() []*model.Item {
	return x.items
}

func (x *Index) Len() int {
	return len(x.items)
}

// Item returns the item at exactly path, or nil.
func (x *Index) Item(path string) *model.Item {
	return x.byPath[path]
}

// Lookup is Item with an error for missing paths. Posts also match on permalink.
func (x *Index) Lookup(path string) (*model.Item, error) {
	if item := x.Item(path); item != nil {
		return item, nil
	}
	if post := x.Post(path); post != nil {
		return post, nil
	}
	return nil, ErrNotFound
}

// Post finds a post by path or permalink.
func (x *Index) Post(path string) *model.Item {
	for _, item := range x.items {
		if item.IsPost() && (item.Path == path || item.Permalink == path) {
			return item
		}
	}
	return nil
}

// GetItems returns all folders and posts from path down.
func (x *Index) GetItems(path string) []*model.Item {
	prefix := content.NormalizePath(path)
	var out []*model.Item
	for _, item := range x.items {
		if strings.HasPrefix(item.Path, prefix) {
			out = append(out, item)
		}
	}
	return out
}

// GetPosts returns all posts from path down.
func (x *Index) GetPosts(path string) []*model.Item {
	var out []*model.Item
	for _, item := range x.GetItems(path) {
		if item.IsPost() {
			out = append(out, item)
		}
	}
	return out
}

// Paths lists every indexed path in lexical order.
func (x *Index) Paths() []string {
	out := make([]string, 0, len(x.items))
	for _, item := range x.items {
		out = append(out, item.Path)
	}
	sort.Strings(out)
	return out
}

type PostSort string

const (
	SortNone   PostSort = ""
	SortDate   PostSort = "date"
	SortPath   PostSort = "path"
	SortRandom PostSort = "random"
)

type PostOptions struct {
	Limit int
	Sort  PostSort
}

// Posts returns visible posts: dated, and not draft, unlisted or hidden.
// Date and path sorts are descending.
func (x *Index) Posts(opts PostOptions) []*model.Item {
	var out []*model.Item
	for _, item := range x.items {
		if !item.IsPost() || !item.HasDate() {
			continue
		}
		switch item.Status {
		case model.StatusDraft, model.StatusUnlisted, model.StatusHidden:
			continue
		}
		out = append(out, item)
	}

	switch opts.Sort {
	case SortDate:
		slices.SortStableFunc(out, func(a, b *model.Item) int {
			return b.Date.Compare(a.Date)
		})
	case SortPath:
		slices.SortStableFunc(out, func(a, b *model.Item) int {
			return strings.Compare(b.Path, a.Path)
		})
	case SortRandom:
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}
