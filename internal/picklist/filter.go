package picklist

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// FilterOptions selects the fields matched besides the label.
type FilterOptions struct {
	MatchOnDescription bool
	MatchOnDetail      bool
}

// Match is a filtered item.
type Match struct {
	// Index is the position of the item in the unfiltered list.
	Index int

	Item Item

	// Score ranks the match; higher is better.
	Score int

	// Highlights are byte offsets of matched characters in the label.
	Highlights []int
}

type itemSource struct {
	items []Item
	opts  FilterOptions
}

func (s itemSource) String(i int) string {
	it := s.items[i]
	text := it.Label
	if s.opts.MatchOnDescription && it.Description != "" {
		text += " " + it.Description
	}
	if s.opts.MatchOnDetail && it.Detail != "" {
		text += " " + it.Detail
	}
	return text
}

func (s itemSource) Len() int {
	return len(s.items)
}

// Filter returns the items matching query. With an empty query every item
// is returned in order. Otherwise matches are sorted by score, best first,
// and AlwaysShow items that did not match follow in their original order.
func Filter(items []Item, query string, opts FilterOptions) []Match {
	if strings.TrimSpace(query) == "" {
		out := make([]Match, len(items))
		for i, it := range items {
			out[i] = Match{Index: i, Item: it}
		}
		return out
	}

	src := itemSource{items: items, opts: opts}
	found := fuzzy.FindFrom(query, src)
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Score > found[j].Score
	})

	matched := make(map[int]bool, len(found))
	out := make([]Match, 0, len(found))
	for _, m := range found {
		it := items[m.Index]
		labelLen := len(it.Label)
		var hl []int
		for _, idx := range m.MatchedIndexes {
			if idx < labelLen {
				hl = append(hl, idx)
			}
		}
		matched[m.Index] = true
		out = append(out, Match{Index: m.Index, Item: it, Score: m.Score, Highlights: hl})
	}
	for i, it := range items {
		if it.AlwaysShow && !matched[i] {
			out = append(out, Match{Index: i, Item: it})
		}
	}
	return out
}
