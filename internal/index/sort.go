package index

import (
	"strings"
	"time"

	"github.com/Bitlatte/folio/internal/content"
	"github.com/Bitlatte/folio/internal/model"
)

// hierarchy orders pages so that every level of the path tree is sorted on its own terms.
type hierarchy struct {
	orders   map[string]int
	dates    map[string]time.Time
	sections map[string]int
}

func newHierarchy(pages []*model.ContentItem, sections []string) *hierarchy {
	h := &hierarchy{
		orders:   make(map[string]int),
		dates:    make(map[string]time.Time),
		sections: make(map[string]int, len(sections)),
	}
	for _, page := range pages {
		if page.Order != nil {
			h.orders[page.Path] = *page.Order
		}
		if !page.Date.IsZero() {
			h.dates[page.Path] = page.Date
		}
	}
	for i, s := range sections {
		h.sections[strings.Trim(s, "/")] = i
	}
	return h
}

// compare walks both paths level by level. At the first level where they
// diverge it compares the two nodes at that level: explicit order first (an
// order beats none), then section rank at the top level, then undated before
// dated, then newer date, then the path itself. An ancestor sorts before its
// descendants.
func (h *hierarchy) compare(a, b *model.ContentItem) int {
	aParts := content.Segments(a.Path)
	bParts := content.Segments(b.Path)

	depth := min(len(aParts), len(bParts))
	for i := 0; i < depth; i++ {
		if aParts[i] == bParts[i] {
			continue
		}
		aLevel := "/" + strings.Join(aParts[:i+1], "/") + "/"
		bLevel := "/" + strings.Join(bParts[:i+1], "/") + "/"

		aOrder, aHas := h.orders[aLevel]
		bOrder, bHas := h.orders[bLevel]
		switch {
		case aHas && bHas && aOrder != bOrder:
			return aOrder - bOrder
		case aHas && !bHas:
			return -1
		case bHas && !aHas:
			return 1
		}

		if i == 0 {
			if c := h.compareSections(aParts[0], bParts[0]); c != 0 {
				return c
			}
		}

		// Undated nodes lead their dated siblings.
		aDate, bDate := h.dates[aLevel], h.dates[bLevel]
		switch {
		case aDate.IsZero() && !bDate.IsZero():
			return -1
		case bDate.IsZero() && !aDate.IsZero():
			return 1
		case !aDate.Equal(bDate):
			return bDate.Compare(aDate)
		}
		return strings.Compare(aLevel, bLevel)
	}
	return len(aParts) - len(bParts)
}

// compareSections ranks configured top-level sections first, in configured order.
func (h *hierarchy) compareSections(a, b string) int {
	const unranked = 1 << 20
	rank := func(s string) int {
		if r, ok := h.sections[s]; ok {
			return r
		}
		return unranked
	}
	return rank(a) - rank(b)
}
