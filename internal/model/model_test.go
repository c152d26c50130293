package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestMediaSourceDecodes(t *testing.T) {
	var m Media
	require.NoError(t, yaml.Unmarshal([]byte(`
thumbnail: thumb.jpg
featured: big.jpg
video:
  src: https://youtu.be/xyz
  type: youtube
gallery:
  - a.jpg
  - src: b.jpg
    text: B
`), &m))

	assert.Equal(t, "thumb.jpg", m.Thumbnail)
	assert.Equal(t, MediaSource{Src: "big.jpg"}, m.Featured)
	assert.Equal(t, MediaSource{Src: "https://youtu.be/xyz", Type: "youtube"}, m.Video)
	assert.Equal(t, []MediaSource{{Src: "a.jpg"}, {Src: "b.jpg", Text: "B"}}, m.Gallery)

	assert.Equal(t, []MediaSource{{Src: "big.jpg"}}, m.Hero("featured"))
	assert.Len(t, m.Hero("gallery"), 2)
	assert.Nil(t, m.Hero("opengraph"))
	assert.Nil(t, m.Hero("nope"))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status               Status
		published, visible   bool
		visibleInDev, listed bool
	}{
		{StatusNone, true, true, true, true},
		{StatusNew, true, true, true, true},
		{StatusPreview, true, true, true, true},
		{StatusScheduled, false, false, false, true},
		{StatusDraft, false, false, false, true},
		{StatusUnlisted, true, false, true, false},
		{StatusHidden, false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.published, tt.status.IsPublished())
			assert.Equal(t, tt.visible, tt.status.IsVisible(false))
			assert.Equal(t, tt.visibleInDev, tt.status.IsVisible(true))
			assert.Equal(t, tt.listed, tt.status.IsListed(false))
		})
	}
	assert.True(t, StatusPreview.IsPreview())
	assert.False(t, StatusNew.IsPreview())
}

func TestItemJSON(t *testing.T) {
	order := 2
	item := &Item{
		Kind:  KindPost,
		Path:  "/blog/2024/x/",
		Title: "X",
		Date:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Order: &order,
		Tags:  []string{"go"},
	}
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"post","path":"/blog/2024/x/","title":"X","order":2,
		"tags":["go"],"media":{},"date":"2024-05-01T00:00:00Z"}`, string(raw))

	raw, err = json.Marshal(&Item{Kind: KindFolder, Path: "/blog/", Title: "Blog"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "date")
}

func TestItemHelpers(t *testing.T) {
	post := &Item{Path: "/blog/2024/x/", Permalink: "/blog/x/", Title: "Long", ShortTitle: "X",
		Tags: []string{"go"}, Items: []*Item{{Path: "/child/"}}}
	assert.Equal(t, "/blog/x/", post.Link())
	assert.Equal(t, "X", post.DisplayTitle())
	assert.True(t, post.HasTag("go"))
	assert.False(t, post.HasTag("Go"))

	c := post.Clone()
	assert.Nil(t, c.Items)
	assert.Len(t, post.Items, 1)
	c.Title = "changed"
	assert.Equal(t, "Long", post.Title)
}

func TestSiteDataCollect(t *testing.T) {
	var s SiteData
	s.Collect([]*ContentItem{
		{Path: "/", Kind: KindFolder},
		{Path: "/a/", Kind: KindPost},
		{Path: "/b/", Kind: KindPost},
	})
	assert.Len(t, s.Posts, 2)
	assert.Len(t, s.ContentByKind[KindFolder], 1)
}
