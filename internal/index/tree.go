package index

import (
	"strings"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/model"
)

// MakeTree nests flat nodes below root by path. Each node is cloned and
// attached to its nearest ancestor present in nodes, or to the top level when
// none is. Folders left without descendants are pruned. nodes are not modified.
func MakeTree(nodes []*model.Item, root string) []*model.Item {
	root = content.NormalizePath(root)

	var clones []*model.Item
	byPath := make(map[string]*model.Item)
	for _, n := range nodes {
		if n.Path == root || !strings.HasPrefix(n.Path, root) {
			continue
		}
		c := n.Clone()
		clones = append(clones, c)
		if _, dup := byPath[c.Path]; !dup {
			byPath[c.Path] = c
		}
	}

	var tree []*model.Item
	for _, c := range clones {
		if parent := nearestAncestor(c.Path, root, byPath); parent != nil {
			parent.Items = append(parent.Items, c)
			continue
		}
		tree = append(tree, c)
	}
	return pruneEmptyFolders(tree)
}

func nearestAncestor(path, root string, byPath map[string]*model.Item) *model.Item {
	for p := content.ParentPath(path); len(p) > len(root) && strings.HasPrefix(p, root); p = content.ParentPath(p) {
		if parent, ok := byPath[p]; ok {
			return parent
		}
	}
	return nil
}

func pruneEmptyFolders(nodes []*model.Item) []*model.Item {
	out := nodes[:0]
	for _, n := range nodes {
		if len(n.Items) > 0 {
			n.Items = pruneEmptyFolders(n.Items)
		}
		if n.IsFolder() && len(n.Items) == 0 {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Header is a section heading generated from the folder structure.
type Header struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// MakeHeaders lists one header per folder in tree, depth first, starting at level 1.
func MakeHeaders(tree []*model.Item) []Header {
	var out []Header
	var walk func(items []*model.Item, level int)
	walk = func(items []*model.Item, level int) {
		for _, item := range items {
			if !item.IsFolder() {
				continue
			}
			out = append(out, Header{Level: level, Title: item.Title, Slug: content.Slugify(item.Title)})
			walk(item.Items, level+1)
		}
	}
	walk(tree, 1)
	return out
}

// TocLink is one entry of a table of contents.
type TocLink struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Depth    int       `json:"depth"`
	Children []TocLink `json:"children,omitempty"`
}

type Toc struct {
	Title string    `json:"title"`
	Depth int       `json:"depth"`
	Links []TocLink `json:"links"`
}

// MakeToc builds a table of contents for a tree. Only folders that contain
// folders get children; links start at depth 2.
func MakeToc(items []*model.Item) Toc {
	depth := 2
	var makeLinks func(items []*model.Item, d int) []TocLink
	makeLinks = func(items []*model.Item, d int) []TocLink {
		if d > depth {
			depth = d
		}
		links := make([]TocLink, 0, len(items))
		for _, item := range items {
			link := TocLink{
				ID:    strings.ReplaceAll(strings.Trim(item.Path, "/"), "/", "-"),
				Text:  item.Title,
				Depth: d,
			}
			if hasFolder(item.Items) {
				link.Children = makeLinks(item.Items, d+1)
			}
			links = append(links, link)
		}
		return links
	}
	links := makeLinks(items, 2)
	return Toc{Title: "On this page", Depth: depth, Links: links}
}

func hasFolder(items []*model.Item) bool {
	for _, item := range items {
		if item.IsFolder() {
			return true
		}
	}
	return false
}

// TreeResult is a folder listing: the nested tree, the flat pages and headers.
type TreeResult struct {
	Title   string        `json:"title"`
	Tree    []*model.Item `json:"tree"`
	Pages   []*model.Item `json:"pages"`
	Headers []Header      `json:"headers"`
}

// Tree returns everything below path nested into a tree.
func (x *Index) Tree(path string) TreeResult {
	path = content.NormalizePath(path)
	pages := x.GetItems(path)
	tree := MakeTree(pages, path)

	title := "Untitled Folder"
	if item := x.Item(path); item != nil && item.Title != "" {
		title = item.Title
	}
	return TreeResult{
		Title:   title,
		Tree:    tree,
		Pages:   pages,
		Headers: MakeHeaders(tree),
	}
}
