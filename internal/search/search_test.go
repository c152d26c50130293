package search

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Bitlatte/folio/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testItems() []*model.Item {
	folder := func(path, title string) *model.Item {
		return &model.Item{Kind: model.KindFolder, Path: path, Title: title}
	}
	return []*model.Item{
		folder("/", "Home"),
		folder("/work/", "Work"),
		{Kind: model.KindPost, Path: "/work/app/", Title: "Photo App", Description: "An iOS camera", Date: day(2023, 6, 1), Tags: []string{"ios", "design"}, Media: model.ItemMedia{Thumbnail: "a.jpg"}},
		{Kind: model.KindPost, Path: "/work/site/", Title: "Web Site", Description: "Marketing pages", Date: day(2022, 3, 1), Tags: []string{"web"}},
		folder("/blog/", "Blog"),
		folder("/blog/2024/", "2024"),
		{Kind: model.KindPost, Path: "/blog/2024/go-tips/", Title: "Go Tips", Description: "Writing better Go", Date: day(2024, 2, 1), Tags: []string{"go", "web"}},
		{Kind: model.KindPost, Path: "/blog/draft/", Title: "Draft", Status: model.StatusDraft, Tags: []string{"go"}},
		folder("/notes/", "Notes"),
		{Kind: model.KindPost, Path: "/notes/x/", Title: "Note", Date: day(2021, 1, 1)},
		folder("/archive/", "Archive"),
		{Kind: model.KindPost, Path: "/archive/old/", Title: "Old Thing"},
	}
}

type node struct {
	Key   string
	Items []node
}

// nodes renders result items as nested keys: the path, or the slug for
// date groups.
func nodes(items []*model.Item) []node {
	var out []node
	for _, item := range items {
		key := item.Path
		if key == "" {
			key = item.Slug
		}
		out = append(out, node{Key: key, Items: nodes(item.Items)})
	}
	return out
}

func postPaths(res Result) []string {
	var out []string
	var walk func(items []*model.Item)
	walk = func(items []*model.Item) {
		for _, item := range items {
			if item.IsPost() {
				out = append(out, item.Path)
			}
			walk(item.Items)
		}
	}
	walk(res.Items)
	return out
}

func TestRunDefaults(t *testing.T) {
	res := Run(testItems(), NewQuery())

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, []string{"design", "go", "ios", "web"}, res.Tags)
	want := []node{
		{Key: "/work/", Items: []node{{Key: "/work/app/"}, {Key: "/work/site/"}}},
		{Key: "/blog/", Items: []node{{Key: "/blog/2024/", Items: []node{{Key: "/blog/2024/go-tips/"}}}}},
		{Key: "/archive/", Items: []node{{Key: "/archive/old/"}}},
	}
	if diff := cmp.Diff(want, nodes(res.Items)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDoesNotMutateItems(t *testing.T) {
	items := testItems()
	Run(items, NewQuery())
	for _, item := range items {
		assert.Nil(t, item.Items, item.Path)
	}
}

func TestRunFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"tags and", "tags=web", []string{"/work/site/", "/blog/2024/go-tips/"}},
		{"tags and both", "tags=go&tags=web", []string{"/blog/2024/go-tips/"}},
		{"tags or", "tags=ios&tags=go&tagsOp=or", []string{"/work/app/", "/blog/2024/go-tips/"}},
		{"text title", "text=go", []string{"/blog/2024/go-tips/"}},
		{"text case insensitive", "text=PHOTO", []string{"/work/app/"}},
		{"text and", "text=camera+pages", nil},
		{"text or", "text=camera+pages&textOp=or", []string{"/work/app/", "/work/site/"}},
		{"text path token", "text=/blog/", []string{"/blog/2024/go-tips/"}},
		{"text matches tags", "text=design", []string{"/work/app/"}},
		{"path", "path=/work", []string{"/work/app/", "/work/site/"}},
		{"bare path", "path=work", []string{"/work/app/", "/work/site/"}},
		{"text path and word", "text=/work/+camera", []string{"/work/app/"}},
		{"text path or word", "text=/blog/+camera&textOp=or", []string{"/work/app/", "/blog/2024/go-tips/"}},
		{"search paths", "searchPaths=/notes/", []string{"/notes/x/"}},
		{"drafts kept", "path=/blog/&excludeDrafts=false", []string{"/blog/2024/go-tips/", "/blog/draft/"}},
		{"thumbnail", "hasThumbnail=true", []string{"/work/app/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(testItems(), ParseQueryString(tt.query))
			assert.Equal(t, tt.want, postPaths(res))
			assert.Equal(t, len(tt.want), res.Total)
			assert.NotNil(t, res.Items)
		})
	}
}

func TestRunScopedTree(t *testing.T) {
	res := Run(testItems(), ParseQueryString("path=/blog/&excludeDrafts=false"))
	assert.Equal(t, []node{
		{Key: "/blog/2024/", Items: []node{{Key: "/blog/2024/go-tips/"}}},
		{Key: "/blog/draft/"},
	}, nodes(res.Items))
}

func TestRunGroupByDate(t *testing.T) {
	res := Run(testItems(), ParseQueryString("group=date"))
	assert.Equal(t, []node{
		{Key: "year-2024", Items: []node{{Key: "/blog/2024/go-tips/"}}},
		{Key: "year-2023", Items: []node{{Key: "/work/app/"}}},
		{Key: "year-2022", Items: []node{{Key: "/work/site/"}}},
		{Key: "year-none", Items: []node{{Key: "/archive/old/"}}},
	}, nodes(res.Items))
	assert.Equal(t, "2024", res.Items[0].Title)
	assert.Equal(t, "No Date", res.Items[3].Title)
	assert.True(t, res.Items[0].IsFolder())
}

func TestRunSortsBeforeLimit(t *testing.T) {
	res := Run(testItems(), ParseQueryString("group=date&limit=2"))
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"/blog/2024/go-tips/", "/work/app/"}, postPaths(res))
	assert.Equal(t, []string{"design", "go", "ios", "web"}, res.Tags)
}

func TestRunRandom(t *testing.T) {
	res := Run(testItems(), ParseQueryString("sort=random&group=date"))
	assert.Equal(t, 4, res.Total)
	assert.ElementsMatch(t, []string{"/work/app/", "/work/site/", "/blog/2024/go-tips/", "/archive/old/"}, postPaths(res))
}

func TestRunRandomSampleWithLimit(t *testing.T) {
	picks := make(map[string]bool)
	for range 200 {
		res := Run(testItems(), ParseQueryString("randomize=true&limit=1&group=none"))
		require.Equal(t, 1, res.Total)
		picks[res.Items[0].Path] = true
	}
	assert.Greater(t, len(picks), 1, "a limited random query should not always return the newest post")

	// The sample is still shown newest first.
	for range 20 {
		res := Run(testItems(), ParseQueryString("randomize=true&limit=3&group=none"))
		require.Len(t, res.Items, 3)
		assert.True(t, slices.IsSortedFunc(res.Items, func(a, b *model.Item) int {
			return b.Date.Compare(a.Date)
		}))
	}
}

type fakeBody struct {
	paths   []string
	err     error
	gotOr   bool
	gotText string
	calls   int
}

func (f *fakeBody) MatchPaths(_ context.Context, text string, or bool) ([]string, error) {
	f.calls++
	f.gotOr = or
	f.gotText = text
	return f.paths, f.err
}

func TestSearcherUsesBodyIndex(t *testing.T) {
	body := &fakeBody{paths: []string{"/work/site/", "/notes/x/"}}
	s := NewSearcher(testItems(), body, zaptest.NewLogger(t))

	res, err := s.Search(context.Background(), ParseQueryString("text=kubernetes&textOp=or"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/work/site/"}, postPaths(res))
	assert.True(t, body.gotOr)
}

func TestSearcherKeepsPathTokensOutOfBodyIndex(t *testing.T) {
	body := &fakeBody{paths: []string{"/work/site/", "/blog/2024/go-tips/"}}
	s := NewSearcher(testItems(), body, nil)

	res, err := s.Search(context.Background(), ParseQueryString("text=/blog/+marketing&group=none"))
	require.NoError(t, err)
	assert.Equal(t, "marketing", body.gotText)
	assert.Equal(t, []string{"/blog/2024/go-tips/"}, postPaths(res))

	body.calls = 0
	res, err = s.Search(context.Background(), ParseQueryString("text=/blog/&group=none"))
	require.NoError(t, err)
	assert.Zero(t, body.calls)
	assert.Equal(t, []string{"/blog/2024/go-tips/"}, postPaths(res))
}

func TestSearcherSearchPaths(t *testing.T) {
	s := NewSearcher(testItems(), nil, nil)
	s.SearchPaths = []string{"/notes/"}

	assert.Equal(t, []string{"/notes/"}, s.NewQuery().SearchPaths)
	res, err := s.Search(context.Background(), s.ParseQuery(url.Values{"group": {"none"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"/notes/x/"}, postPaths(res))

	res, err = s.Search(context.Background(), s.ParseQuery(url.Values{"searchPaths": {"/work/"}, "group": {"none"}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"/work/app/", "/work/site/"}, postPaths(res))

	// Without configured paths the defaults apply.
	assert.Equal(t, DefaultSearchPaths, NewSearcher(nil, nil, nil).NewQuery().SearchPaths)
}

func TestSearcherBodyErrorIsSkipped(t *testing.T) {
	s := NewSearcher(testItems(), &fakeBody{err: errors.New("db gone")}, nil)
	res, err := s.Search(context.Background(), ParseQueryString("text=go"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/blog/2024/go-tips/"}, postPaths(res))
}

func TestSearcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSearcher(testItems(), nil, nil).Search(ctx, NewQuery())
	assert.ErrorIs(t, err, context.Canceled)
}
