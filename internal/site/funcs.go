package site

import (
	"html/template"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bitlatte/folio/internal/content"
)

type linker interface {
	Link() string
}

// Funcs returns the helpers available to every layout.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"timeAgo":    timeAgo,
		"date":       formatDate,
		"plural":     plural,
		"capitalize": capitalize,
		"slugify":    content.Slugify,
		"isImage":    content.IsImage,
		"isVideo":    content.IsVideo,
		"link":       link,
		"title":      title,
	}
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

func formatDate(layout string, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// plural formats a count with its noun: "1 post", "3 posts".
func plural(n int, noun string) string {
	return english.Plural(n, noun, "")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func link(v linker) string {
	if v == nil {
		return ""
	}
	return v.Link()
}

func title(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
