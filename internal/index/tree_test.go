package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/Bitlatte/folio/internal/model"
)

// shape renders a tree as nested paths for diffing.
type shape struct {
	Path  string
	Items []shape
}

func shapeOf(items []*model.Item) []shape {
	var out []shape
	for _, item := range items {
		out = append(out, shape{Path: item.Path, Items: shapeOf(item.Items)})
	}
	return out
}

func TestTreeRoot(t *testing.T) {
	idx := testIndex()
	res := idx.Tree("/")

	want := []shape{
		{Path: "/work/", Items: []shape{{Path: "/work/b/"}, {Path: "/work/a/"}}},
		{Path: "/blog/", Items: []shape{{Path: "/blog/2023/mid/"}, {Path: "/blog/new/"}, {Path: "/blog/old/"}}},
	}
	if diff := cmp.Diff(want, shapeOf(res.Tree)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Home", res.Title)
	assert.Len(t, res.Pages, idx.Len())
	assert.Equal(t, []Header{
		{Level: 1, Title: "Work", Slug: "work"},
		{Level: 1, Title: "Blog", Slug: "blog"},
	}, res.Headers)
}

func TestTreeSubfolder(t *testing.T) {
	res := testIndex().Tree("/blog")
	assert.Equal(t, "Blog", res.Title)
	assert.Equal(t, []shape{{Path: "/blog/2023/mid/"}, {Path: "/blog/new/"}, {Path: "/blog/old/"}}, shapeOf(res.Tree))
	assert.Empty(t, res.Headers)

	assert.Equal(t, "Untitled Folder", testIndex().Tree("/missing/").Title)
}

func TestMakeTreeDoesNotMutate(t *testing.T) {
	nodes := []*model.Item{
		{Kind: model.KindFolder, Path: "/a/", Title: "A"},
		{Kind: model.KindFolder, Path: "/a/b/", Title: "B"},
		{Kind: model.KindPost, Path: "/a/b/c/", Title: "C"},
		{Kind: model.KindFolder, Path: "/a/empty/", Title: "Empty"},
	}
	tree := MakeTree(nodes, "/")

	want := []shape{{Path: "/a/", Items: []shape{{Path: "/a/b/", Items: []shape{{Path: "/a/b/c/"}}}}}}
	if diff := cmp.Diff(want, shapeOf(tree)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	for _, n := range nodes {
		assert.Nil(t, n.Items, n.Path)
	}
	assert.NotSame(t, nodes[0], tree[0])
}

func TestMakeTreeNestedHeaders(t *testing.T) {
	nodes := []*model.Item{
		{Kind: model.KindFolder, Path: "/a/", Title: "Alpha Things"},
		{Kind: model.KindFolder, Path: "/a/b/", Title: "Beta"},
		{Kind: model.KindPost, Path: "/a/b/c/", Title: "C"},
		{Kind: model.KindPost, Path: "/d/", Title: "D"},
	}
	assert.Equal(t, []Header{
		{Level: 1, Title: "Alpha Things", Slug: "alpha-things"},
		{Level: 2, Title: "Beta", Slug: "beta"},
	}, MakeHeaders(MakeTree(nodes, "/")))
}

func TestMakeToc(t *testing.T) {
	tree := []*model.Item{
		{Kind: model.KindFolder, Path: "/a/", Title: "A", Items: []*model.Item{
			{Kind: model.KindFolder, Path: "/a/b/", Title: "B", Items: []*model.Item{
				{Kind: model.KindPost, Path: "/a/b/c/", Title: "C"},
			}},
		}},
		{Kind: model.KindPost, Path: "/d/", Title: "D"},
	}

	want := Toc{
		Title: "On this page",
		Depth: 3,
		Links: []TocLink{
			{ID: "a", Text: "A", Depth: 2, Children: []TocLink{{ID: "a-b", Text: "B", Depth: 3}}},
			{ID: "d", Text: "D", Depth: 2},
		},
	}
	if diff := cmp.Diff(want, MakeToc(tree)); diff != "" {
		t.Errorf("toc mismatch (-want +got):\n%s", diff)
	}
}

func TestTags(t *testing.T) {
	idx := testIndex()
	assert.Equal(t, []string{"go", "rust", "web"}, idx.Tags())
	assert.Equal(t, []model.Tag{{Text: "go", Count: 2}, {Text: "rust", Count: 1}, {Text: "web", Count: 1}}, idx.TagCounts())

	assert.Equal(t, []string{"a", "b", "c"}, TagList([]model.TagGroup{
		{Title: "One", Tags: []string{"c", "a"}},
		{Title: "Two", Tags: []string{"b", "a"}},
	}))
	assert.Empty(t, TagList(nil))
}
