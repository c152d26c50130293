package content

import (
	"path/filepath"
	"regexp"
	"strings"
)

// NormalizePath gives path exactly one leading and one trailing slash:
// "blog" -> "/blog/". Empty and all-slash paths become the root.
func NormalizePath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed + "/"
}

// ParentPath drops the last segment of path: "/a/b/" -> "/a/", "/a/" -> "/".
// The root is its own parent.
func ParentPath(path string) string {
	if path == "/" {
		return "/"
	}
	trimmed := strings.TrimSuffix(path, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}

// Segments splits a site path into its non-empty segments.
func Segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Ancestors lists every prefix path of path, including path itself:
// "/a/b/" -> ["/a/", "/a/b/"].
func Ancestors(path string) []string {
	var out []string
	current := "/"
	for _, s := range Segments(path) {
		current += s + "/"
		out = append(out, current)
	}
	return out
}

// SitePath maps a file path relative to the content root onto its site path.
// "blog/foo.md" -> "/blog/foo/", "blog/foo/index.md" -> "/blog/foo/".
func SitePath(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	if rel == "index" {
		return "/"
	}
	rel = strings.TrimSuffix(rel, "/index")
	return "/" + strings.Trim(rel, "/") + "/"
}

var (
	nonWord    = regexp.MustCompile(`[^\w]+`)
	imageExt   = regexp.MustCompile(`\.(ico|gif|bmp|svg|png|jpe?g)$`)
	videoExt   = regexp.MustCompile(`\.(mp4|mpeg|avi)$`)
	videoHosts = regexp.MustCompile(`youtube|youtu\.be|vimeo`)
)

// Slugify lowercases value and collapses runs of non-word characters to dashes.
func Slugify(value string) string {
	slug := nonWord.ReplaceAllString(strings.ToLower(value), "-")
	return strings.Trim(slug, "-")
}

// IsImage reports whether src points at an image file, ignoring any query.
func IsImage(src string) bool {
	src, _, _ = strings.Cut(src, "?")
	return imageExt.MatchString(src)
}

// IsVideo reports whether src is a video file or a known video host.
func IsVideo(src string) bool {
	return videoExt.MatchString(src) || videoHosts.MatchString(src)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func isMarkdownFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}
