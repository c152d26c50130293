package content

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bitlatte/folio/internal/model"
)

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 and the common date-only and local forms.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// deriveKind resolves the item kind from frontmatter and file name.
func deriveKind(fmType, layout, sourcePath string) model.Kind {
	if fmType != "" {
		return model.Kind(fmType)
	}
	switch {
	case layout == "folder":
		return model.KindFolder
	case layout == "file":
		return model.KindFile
	case strings.HasSuffix(filepath.ToSlash(sourcePath), "/captions.yaml"):
		return model.KindCaptions
	case isMarkdownFile(sourcePath):
		return model.KindPost
	}
	return ""
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// deriveStatus computes the visibility status of a page. Only pages without a
// layout (posts) carry a status. A preview page is given today's date at 01:00
// UTC so it sorts with current posts; the possibly adjusted date is returned.
func deriveStatus(layout, visibility string, date time.Time, now time.Time, newWithinDays int) (model.Status, time.Time) {
	if layout != "" {
		return model.StatusNone, date
	}
	today := startOfDay(now)
	switch model.Status(visibility) {
	case model.StatusHidden:
		return model.StatusHidden, date
	case model.StatusUnlisted:
		return model.StatusUnlisted, date
	case model.StatusPreview:
		return model.StatusPreview, today.Add(time.Hour)
	}
	if date.IsZero() {
		return model.StatusDraft, date
	}
	if date.After(today) {
		return model.StatusScheduled, date
	}
	if now.Sub(date) < time.Duration(newWithinDays)*24*time.Hour {
		return model.StatusNew, date
	}
	return model.StatusNone, date
}

// flatPermalink gives blog posts a flat /blog/<slug>/ URL.
func flatPermalink(sitePath string, kind model.Kind) string {
	if kind != model.KindPost || !strings.HasPrefix(sitePath, "/blog/") {
		return ""
	}
	slug := path.Base(strings.TrimSuffix(sitePath, "/"))
	return "/blog/" + slug + "/"
}

// titleFromFile turns "my-first_post.md" into "My First Post".
func titleFromFile(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "index" {
		return ""
	}
	base = strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	// Casers hold state, so each call gets its own.
	return cases.Title(language.English).String(base)
}
