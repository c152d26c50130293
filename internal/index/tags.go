package index

import (
	"sort"

	"github.com/Bitlatte/folio/internal/model"
)

// Tags returns the distinct tags used by posts, sorted.
func (x *Index) Tags() []string {
	counts := x.tagCounts()
	out := make([]string, 0, len(counts))
	for tag := range counts {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// TagCounts returns every post tag with the number of posts using it, most
// used first and alphabetical among equals.
func (x *Index) TagCounts() []model.Tag {
	counts := x.tagCounts()
	out := make([]model.Tag, 0, len(counts))
	for tag, n := range counts {
		out = append(out, model.Tag{Text: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Text < out[j].Text
	})
	return out
}

func (x *Index) tagCounts() map[string]int {
	counts := make(map[string]int)
	for _, item := range x.items {
		if !item.IsPost() {
			continue
		}
		for _, tag := range item.Tags {
			if tag != "" {
				counts[tag]++
			}
		}
	}
	return counts
}

// TagList flattens tag groups into one sorted, de-duplicated list.
func TagList(groups []model.TagGroup) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range groups {
		for _, tag := range group.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}
