package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/folio/internal/model"
)

func TestParseDate(t *testing.T) {
	for _, in := range []string{
		"2024-03-01",
		"2024-03-01 10:30:00",
		"2024-03-01T10:30:00",
		"2024-03-01T10:30:00Z",
		"2024-03-01T10:30:00+02:00",
	} {
		t.Run(in, func(t *testing.T) {
			d, ok := ParseDate(in)
			require.True(t, ok)
			assert.Equal(t, 2024, d.Year())
			assert.Equal(t, time.March, d.Month())
		})
	}

	_, ok := ParseDate("March 1st")
	assert.False(t, ok)
	_, ok = ParseDate("  ")
	assert.False(t, ok)
}

func TestDeriveKind(t *testing.T) {
	assert.Equal(t, model.KindFolder, deriveKind("", "folder", "work/index.md"))
	assert.Equal(t, model.KindFile, deriveKind("", "file", "work/a.md"))
	assert.Equal(t, model.KindCaptions, deriveKind("", "", "work/a/captions.yaml"))
	assert.Equal(t, model.KindPost, deriveKind("", "", "work/a.md"))
	assert.Equal(t, model.KindFolder, deriveKind("folder", "", "work/a.md"))
	assert.Equal(t, model.Kind(""), deriveKind("", "", "work/a.txt"))
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	laterToday := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		layout     string
		visibility string
		date       time.Time
		want       model.Status
	}{
		{"folder has no status", "folder", "", old, model.StatusNone},
		{"hidden wins", "", "hidden", old, model.StatusHidden},
		{"unlisted", "", "unlisted", old, model.StatusUnlisted},
		{"no date is draft", "", "", time.Time{}, model.StatusDraft},
		{"future is scheduled", "", "", future, model.StatusScheduled},
		{"later today is scheduled", "", "", laterToday, model.StatusScheduled},
		{"start of today is new", "", "", today, model.StatusNew},
		{"recent is new", "", "", recent, model.StatusNew},
		{"old has no status", "", "", old, model.StatusNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, date := deriveStatus(tt.layout, tt.visibility, tt.date, now, 90)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.date, date)
		})
	}

	t.Run("preview gets today's date", func(t *testing.T) {
		got, date := deriveStatus("", "preview", time.Time{}, now, 90)
		assert.Equal(t, model.StatusPreview, got)
		assert.Equal(t, today.Add(time.Hour), date)
	})
}

func TestFlatPermalink(t *testing.T) {
	assert.Equal(t, "/blog/my-post/", flatPermalink("/blog/2020/my-post/", model.KindPost))
	assert.Equal(t, "", flatPermalink("/blog/", model.KindFolder))
	assert.Equal(t, "", flatPermalink("/work/thing/", model.KindPost))
}

func TestTitleFromFile(t *testing.T) {
	assert.Equal(t, "My First Post", titleFromFile("my-first_post.md"))
	assert.Equal(t, "Blog", titleFromFile(titleSource("blog/index.md")))
	assert.Equal(t, "Home", titleFromFile(titleSource("index.md")))
}
