// Package search filters, sorts and groups index items for the search page,
// the JSON API and the CLI.
package search

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/content"
)

// DefaultSearchPaths are the sections searched when a query names no path.
var DefaultSearchPaths = config.DefaultSearchPaths

type Op string

const (
	OpAnd Op = "and"
	OpOr  Op = "or"
)

type Group string

const (
	GroupPath Group = "path"
	GroupDate Group = "date"
	// GroupNone returns the matching posts as a flat list.
	GroupNone Group = "none"
)

type Sort string

const (
	SortDate   Sort = "date"
	SortPath   Sort = "path"
	SortRandom Sort = "random"
)

type TagsFilter string

const (
	TagsFilterNone   TagsFilter = ""
	TagsFilterList   TagsFilter = "list"
	TagsFilterGroups TagsFilter = "groups"
)

type Format string

const (
	FormatImage Format = "image"
	FormatText  Format = "text"
)

// Query holds the filters a user controls plus the options a page fixes.
type Query struct {
	Path      string   `json:"path,omitempty"`
	Text      string   `json:"text,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	TextOp    Op       `json:"textOp"`
	TagsOp    Op       `json:"tagsOp"`
	Group     Group    `json:"group"`
	Randomize bool     `json:"randomize,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Sort      Sort     `json:"sort"`

	SearchPaths   []string   `json:"searchPaths,omitempty"`
	ExcludeDrafts bool       `json:"excludeDrafts"`
	HasThumbnail  bool       `json:"hasThumbnail,omitempty"`
	TagsFilter    TagsFilter `json:"tagsFilter,omitempty"`
	Format        Format     `json:"format"`
}

// NewQuery returns a query with every default applied.
func NewQuery() Query {
	return Query{
		TextOp:        OpAnd,
		TagsOp:        OpAnd,
		Group:         GroupPath,
		Sort:          SortDate,
		SearchPaths:   slices.Clone(DefaultSearchPaths),
		ExcludeDrafts: true,
		Format:        FormatImage,
	}
}

// Filtered reports whether the query narrows results by text or tags.
func (q Query) Filtered() bool {
	return strings.TrimSpace(q.Text) != "" || len(q.Tags) > 0
}

// CanReset reports whether there is anything for a reset button to clear.
func (q Query) CanReset() bool {
	return q.Filtered()
}

// ParseQueryString parses a query or hash string such as "?text=go&tags=a&tags=b"
// or "#tags=a". A malformed string yields the defaults.
func ParseQueryString(s string) Query {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "#"), "?")
	values, err := url.ParseQuery(s)
	if err != nil {
		return NewQuery()
	}
	return ParseQuery(values)
}

// ParseQuery reads a query from URL values on top of the defaults. Unknown
// enum values and non-positive limits are ignored.
func ParseQuery(values url.Values) Query {
	return parseQuery(values, NewQuery())
}

func parseQuery(values url.Values, q Query) Query {
	q.Text = values.Get("text")
	q.Path = values.Get("path")
	q.Tags = nonEmpty(values["tags"])
	if paths := nonEmpty(values["searchPaths"]); len(paths) > 0 {
		q.SearchPaths = paths
	}

	if op, ok := parseOp(values.Get("textOp")); ok {
		q.TextOp = op
	}
	if op, ok := parseOp(values.Get("tagsOp")); ok {
		q.TagsOp = op
	}
	switch g := Group(values.Get("group")); g {
	case GroupPath, GroupDate, GroupNone:
		q.Group = g
	}
	switch s := Sort(values.Get("sort")); s {
	case SortDate, SortPath, SortRandom:
		q.Sort = s
	}
	switch f := TagsFilter(values.Get("tagsFilter")); f {
	case TagsFilterList, TagsFilterGroups:
		q.TagsFilter = f
	}
	switch f := Format(values.Get("format")); f {
	case FormatImage, FormatText:
		q.Format = f
	}

	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}
	if b, ok := parseBool(values, "randomize"); ok {
		q.Randomize = b
	}
	if b, ok := parseBool(values, "excludeDrafts"); ok {
		q.ExcludeDrafts = b
	}
	if b, ok := parseBool(values, "hasThumbnail"); ok {
		q.HasThumbnail = b
	}
	return q
}

func parseOp(s string) (Op, bool) {
	switch op := Op(strings.ToLower(s)); op {
	case OpAnd, OpOr:
		return op, true
	}
	return "", false
}

// parseBool treats a bare key ("?randomize") as true.
func parseBool(values url.Values, key string) (bool, bool) {
	if !values.Has(key) {
		return false, false
	}
	v := values.Get(key)
	if v == "" {
		return true, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Clean encodes q as URL values, leaving out empty values and values equal
// to their default, so shared links stay short.
func Clean(q Query) url.Values {
	def := NewQuery()
	out := url.Values{}

	set := func(key, value, defValue string) {
		if value != "" && value != defValue {
			out.Set(key, value)
		}
	}
	set("path", q.Path, def.Path)
	set("text", strings.TrimSpace(q.Text), "")
	for _, tag := range q.Tags {
		out.Add("tags", tag)
	}
	set("textOp", string(q.TextOp), string(def.TextOp))
	set("tagsOp", string(q.TagsOp), string(def.TagsOp))
	set("group", string(q.Group), string(def.Group))
	set("sort", string(q.Sort), string(def.Sort))
	set("tagsFilter", string(q.TagsFilter), string(def.TagsFilter))
	set("format", string(q.Format), string(def.Format))

	if q.Limit > 0 {
		out.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Randomize {
		out.Set("randomize", "true")
	}
	if q.ExcludeDrafts != def.ExcludeDrafts {
		out.Set("excludeDrafts", strconv.FormatBool(q.ExcludeDrafts))
	}
	if q.HasThumbnail {
		out.Set("hasThumbnail", "true")
	}
	if len(q.SearchPaths) > 0 && !slices.Equal(q.SearchPaths, def.SearchPaths) {
		out["searchPaths"] = slices.Clone(q.SearchPaths)
	}
	return out
}

// paths returns the normalised prefixes the query searches.
func (q Query) paths() []string {
	if q.Path != "" {
		return []string{content.NormalizePath(q.Path)}
	}
	out := make([]string, 0, len(q.SearchPaths))
	for _, p := range q.SearchPaths {
		out = append(out, content.NormalizePath(p))
	}
	return out
}
