package search

import (
	"context"
	"math/rand/v2"
	"net/url"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/index"
	"github.com/Bitlatte/folio/internal/model"
)

// Result is one page of search output. Total counts the matching posts
// before they are grouped into folders.
type Result struct {
	Total int           `json:"total"`
	Items []*model.Item `json:"items"`
	Tags  []string      `json:"tags"`
	Query Query         `json:"query"`
}

// BodyIndex matches free text against page bodies.
type BodyIndex interface {
	MatchPaths(ctx context.Context, text string, or bool) ([]string, error)
}

// Searcher runs queries over a fixed set of index items, optionally widening
// text matches with a full-text body index. SearchPaths, when set, replace
// DefaultSearchPaths in the queries it builds.
type Searcher struct {
	Items       []*model.Item
	Body        BodyIndex
	SearchPaths []string
	Logger      *zap.Logger
}

func NewSearcher(items []*model.Item, body BodyIndex, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{Items: items, Body: body, Logger: logger}
}

// NewQuery returns the default query for this searcher.
func (s *Searcher) NewQuery() Query {
	q := NewQuery()
	if len(s.SearchPaths) > 0 {
		q.SearchPaths = slices.Clone(s.SearchPaths)
	}
	return q
}

// ParseQuery reads a query from URL values on top of s.NewQuery.
func (s *Searcher) ParseQuery(values url.Values) Query {
	return parseQuery(values, s.NewQuery())
}

// Search runs q. A failing body index is logged and skipped.
func (s *Searcher) Search(ctx context.Context, q Query) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var bodyHits map[string]struct{}
	// Path tokens only ever match the path, so the body index sees words.
	if _, words := splitText(q.Text); s.Body != nil && len(words) > 0 {
		paths, err := s.Body.MatchPaths(ctx, strings.Join(words, " "), q.TextOp == OpOr)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			s.logger().Warn("body search failed", zap.String("text", q.Text), zap.Error(err))
		}
		bodyHits = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			bodyHits[p] = struct{}{}
		}
	}
	return run(s.Items, q, bodyHits), nil
}

func (s *Searcher) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Run applies q to items, which must be in index order.
func Run(items []*model.Item, q Query) Result {
	return run(items, q, nil)
}

func run(items []*model.Item, q Query, bodyHits map[string]struct{}) Result {
	var posts []*model.Item
	for _, item := range items {
		if !item.IsPost() {
			continue
		}
		if q.ExcludeDrafts && item.Status == model.StatusDraft {
			continue
		}
		posts = append(posts, item)
	}

	if prefixes := q.paths(); len(prefixes) > 0 {
		posts = keep(posts, func(item *model.Item) bool {
			for _, p := range prefixes {
				if strings.HasPrefix(item.Path, p) {
					return true
				}
			}
			return false
		})
	}

	if q.HasThumbnail {
		posts = keep(posts, func(item *model.Item) bool { return item.Media.Thumbnail != "" })
	}

	if len(q.Tags) > 0 {
		posts = keep(posts, tagsFilter(q.Tags, q.TagsOp == OpOr, false))
	}

	if pathTokens, words := splitText(q.Text); len(pathTokens)+len(words) > 0 {
		posts = keep(posts, textMatcher(pathTokens, words, q, bodyHits))
	}

	random := q.Randomize || q.Sort == SortRandom
	if random {
		// A random sample: limit the shuffled list, then order the sample.
		rand.Shuffle(len(posts), func(i, j int) { posts[i], posts[j] = posts[j], posts[i] })
		posts = limitPosts(posts, q.Limit)
	}
	if q.Sort == SortDate && q.Group != GroupPath {
		slices.SortStableFunc(posts, func(a, b *model.Item) int {
			return b.Date.Compare(a.Date)
		})
	}
	if !random {
		posts = limitPosts(posts, q.Limit)
	}

	res := Result{
		Total: len(posts),
		Items: posts,
		Tags:  collateTags(posts),
		Query: q,
	}
	switch q.Group {
	case GroupDate:
		res.Items = groupByYear(posts)
	case GroupPath:
		res.Items = groupByPath(items, posts, q.Path)
	}
	if res.Items == nil {
		res.Items = []*model.Item{}
	}
	return res
}

func keep(items []*model.Item, pred func(*model.Item) bool) []*model.Item {
	out := items[:0:0]
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

func limitPosts(posts []*model.Item, n int) []*model.Item {
	if n > 0 && len(posts) > n {
		return posts[:n]
	}
	return posts
}

// splitText lowercases text and splits it into path tokens (those
// containing "/") and words.
func splitText(text string) (paths, words []string) {
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if strings.Contains(token, "/") {
			paths = append(paths, token)
		} else {
			words = append(words, token)
		}
	}
	return paths, words
}

// textMatcher matches path tokens against the path and words against title,
// description, tags and the body index hits. In and mode every path token
// must match and the words must match too; in or mode any match will do.
func textMatcher(pathTokens, words []string, q Query, bodyHits map[string]struct{}) func(*model.Item) bool {
	or := q.TextOp == OpOr
	byText := textFilter(words, or)
	byTag := tagsFilter(words, q.TagsOp == OpOr, true)
	return func(item *model.Item) bool {
		if len(pathTokens) > 0 {
			inPath := matchAll(pathTokens, func(token string) bool {
				return strings.Contains(item.Path, token)
			}, or)
			switch {
			case or && inPath:
				return true
			case !or && !inPath:
				return false
			}
		}
		if len(words) == 0 {
			return !or
		}
		if _, ok := bodyHits[item.Path]; ok {
			return true
		}
		return byText(item) || byTag(item)
	}
}

// textFilter matches words against title and description.
func textFilter(words []string, or bool) func(*model.Item) bool {
	return func(item *model.Item) bool {
		haystack := strings.ToLower(item.Title + " " + item.Description)
		return matchAll(words, func(word string) bool {
			return strings.Contains(haystack, word)
		}, or)
	}
}

func tagsFilter(tags []string, or, fold bool) func(*model.Item) bool {
	return func(item *model.Item) bool {
		has := func(tag string) bool {
			if !fold {
				return item.HasTag(tag)
			}
			for _, t := range item.Tags {
				if strings.EqualFold(t, tag) {
					return true
				}
			}
			return false
		}
		return matchAll(tags, has, or)
	}
}

func matchAll(values []string, pred func(string) bool, or bool) bool {
	if or {
		return slices.ContainsFunc(values, pred)
	}
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func collateTags(posts []*model.Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, post := range posts {
		for _, tag := range post.Tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return out
}

const noDate = "none"

// groupByYear folds posts into one folder per year, newest first, with
// undated posts last.
func groupByYear(posts []*model.Item) []*model.Item {
	groups := make(map[string][]*model.Item)
	for _, post := range posts {
		key := noDate
		if post.HasDate() {
			key = post.Date.Format("2006")
		}
		groups[key] = append(groups[key], post)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == noDate || keys[j] == noDate {
			return keys[j] == noDate && keys[i] != noDate
		}
		return keys[i] > keys[j]
	})

	out := make([]*model.Item, 0, len(keys))
	for _, key := range keys {
		title := key
		if key == noDate {
			title = "No Date"
		}
		out = append(out, &model.Item{
			Kind:  model.KindFolder,
			Title: title,
			Slug:  "year-" + key,
			Items: groups[key],
		})
	}
	return out
}

// groupByPath nests the hits under their ancestor folders, taken from items.
func groupByPath(items, posts []*model.Item, root string) []*model.Item {
	wanted := make(map[string]struct{})
	for _, post := range posts {
		for _, p := range content.Ancestors(post.Path) {
			wanted[p] = struct{}{}
		}
	}
	hits := make(map[*model.Item]struct{}, len(posts))
	for _, post := range posts {
		hits[post] = struct{}{}
	}

	var nested []*model.Item
	for _, item := range items {
		if _, ok := wanted[item.Path]; !ok {
			continue
		}
		if _, hit := hits[item]; hit || item.IsFolder() {
			nested = append(nested, item)
		}
	}
	if root == "" {
		root = "/"
	}
	return index.MakeTree(nested, root)
}
