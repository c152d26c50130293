package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/Bitlatte/folio/internal/model"
)

// tagSource implements fuzzy.Source over tag texts.
type tagSource []model.Tag

func (s tagSource) String(i int) string { return s[i].Text }
func (s tagSource) Len() int            { return len(s) }

// SuggestTags returns the tags that fuzzily match input, best match first.
// An empty input returns the tags as given. limit <= 0 means no limit.
func SuggestTags(tags []model.Tag, input string, limit int) []model.Tag {
	input = strings.TrimSpace(input)
	var out []model.Tag
	if input == "" {
		out = append(out, tags...)
	} else {
		for _, match := range fuzzy.FindFrom(input, tagSource(tags)) {
			out = append(out, tags[match.Index])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
