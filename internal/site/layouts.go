package site

import (
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	baseLayout    = "base.html"
	homeLayout    = "home.html"
	folderLayout  = "folder.html"
	postLayout    = "single-post.html"
	singleLayout  = "single.html"
	searchLayout  = "search.html"
	sitemapLayout = "sitemap.html"
	postsLayout   = "list-posts.html"
)

// parseLayouts parses every .html file under dir. base.html and partials/
// go first so other layouts can use their blocks, then the remaining
// layouts, and home.html last so its block definitions win.
func parseLayouts(dir string, funcs template.FuncMap) (*template.Template, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find layouts in %s: %w", dir, err)
	}

	var base, home string
	var partials, others []string
	partialsDir := filepath.Join(dir, "partials")
	for _, f := range files {
		switch {
		case filepath.Dir(f) == filepath.Clean(dir) && filepath.Base(f) == baseLayout:
			base = f
		case filepath.Dir(f) == filepath.Clean(dir) && filepath.Base(f) == homeLayout:
			home = f
		case strings.HasPrefix(filepath.Dir(f), partialsDir):
			partials = append(partials, f)
		default:
			others = append(others, f)
		}
	}
	if base == "" {
		return nil, fmt.Errorf("%s not found directly in layouts directory %s", baseLayout, dir)
	}

	tmpl, err := template.New(baseLayout).Funcs(funcs).ParseFiles(append([]string{base}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("parse %s and partials: %w", baseLayout, err)
	}
	if len(others) > 0 {
		if tmpl, err = tmpl.ParseFiles(others...); err != nil {
			return nil, fmt.Errorf("parse layouts: %w", err)
		}
	}
	if home != "" {
		if tmpl, err = tmpl.ParseFiles(home); err != nil {
			return nil, fmt.Errorf("parse %s: %w", homeLayout, err)
		}
	}
	return tmpl, nil
}

// lookupLayout finds a layout by name, with or without the .html suffix.
func lookupLayout(tmpl *template.Template, name string) string {
	if name == "" {
		return ""
	}
	for _, candidate := range []string{name, name + ".html"} {
		if tmpl.Lookup(candidate) != nil {
			return candidate
		}
	}
	return ""
}
