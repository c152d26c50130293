// Package feed renders the RSS feed and the XML sitemap.
package feed

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/index"
	"github.com/Bitlatte/folio/internal/model"
)

type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title         string  `xml:"title"`
	Link          string  `xml:"link"`
	Description   string  `xml:"description"`
	LastBuildDate string  `xml:"lastBuildDate,omitempty"`
	Entries       []Entry `xml:"item"`
}

type Entry struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Description string   `xml:"description,omitempty"`
	Categories  []string `xml:"category"`
}

// Posts returns the visible, published posts below any of paths, newest
// first, at most limit of them (limit <= 0 means all). Scheduled posts wait
// for their date.
func Posts(idx *index.Index, paths []string, limit int) []*model.Item {
	var out []*model.Item
	for _, post := range idx.Posts(index.PostOptions{Sort: index.SortDate}) {
		if !post.Status.IsPublished() || !underAny(post.Path, paths) {
			continue
		}
		out = append(out, post)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func underAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, content.NormalizePath(p)) {
			return true
		}
	}
	return false
}

// NewRSS builds an RSS 2.0 document. Links are absolute under siteURL.
func NewRSS(title, siteURL, description string, posts []*model.Item, built time.Time) RSS {
	siteURL = strings.TrimRight(siteURL, "/")
	ch := Channel{
		Title:         title,
		Link:          siteURL + "/",
		Description:   description,
		LastBuildDate: built.UTC().Format(time.RFC1123Z),
		Entries:       make([]Entry, 0, len(posts)),
	}
	for _, post := range posts {
		link := siteURL + post.Link()
		e := Entry{
			Title:       post.Title,
			Link:        link,
			GUID:        link,
			Description: post.Description,
			Categories:  post.Tags,
		}
		if post.HasDate() {
			e.PubDate = post.Date.UTC().Format(time.RFC1123Z)
		}
		ch.Entries = append(ch.Entries, e)
	}
	return RSS{Version: "2.0", Channel: ch}
}

type URL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// NewSitemap lists every item's public URL, dated where the item is.
func NewSitemap(siteURL string, items []*model.Item) URLSet {
	siteURL = strings.TrimRight(siteURL, "/")
	set := URLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]URL, 0, len(items)),
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		loc := siteURL + item.Link()
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		u := URL{Loc: loc}
		if item.HasDate() {
			u.LastMod = item.Date.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	return set
}

// Encode writes v as an indented XML document with the standard header.
func Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
