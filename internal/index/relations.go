package index

import (
	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/model"
)

// Parents returns the breadcrumbs from Home down to path. If any level is
// missing from the index the trail collapses to Home plus fallback.
func (x *Index) Parents(path, fallback string) []model.Crumb {
	crumbs := []model.Crumb{{Path: "/", Title: "Home"}}
	current := "/"
	for _, segment := range content.Segments(path) {
		current += segment + "/"
		item := x.matchLevel(current)
		if item == nil {
			return []model.Crumb{crumbs[0], {Title: fallback}}
		}
		crumbs = append(crumbs, model.Crumb{
			Path:        item.Path,
			Title:       item.DisplayTitle(),
			Description: item.Description,
		})
	}
	return crumbs
}

func (x *Index) matchLevel(path string) *model.Item {
	if item := x.Item(path); item != nil {
		return item
	}
	return x.Post(path)
}

// Siblings returns the items that share path's parent, path included.
func (x *Index) Siblings(path string) []*model.Item {
	parent := content.ParentPath(content.NormalizePath(path))
	var out []*model.Item
	for _, item := range x.GetItems(parent) {
		if item.Path != parent && content.ParentPath(item.Path) == parent {
			out = append(out, item)
		}
	}
	return out
}

// Surround returns the posts before and after path in index order. Either
// may be nil.
func (x *Index) Surround(path string) (prev, next *model.Item) {
	posts := x.GetPosts("/")
	for i, post := range posts {
		if post.Path != path && post.Permalink != path {
			continue
		}
		if i > 0 {
			prev = posts[i-1]
		}
		if i < len(posts)-1 {
			next = posts[i+1]
		}
		return prev, next
	}
	return nil, nil
}
