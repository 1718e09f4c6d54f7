// Package search builds the normalized multi-source corpus and answers
// grouped free-text queries against it.
package search

import (
	"strings"

	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/textnorm"
)

// entry is an item plus its display name precomputed in both query forms.
type entry struct {
	item       model.SearchItem
	nameLower  string
	nameFolded string
}

// Index is an immutable, read-only corpus. It is safe for concurrent use.
type Index struct {
	buckets     map[model.Category][]entry
	size        int
	perCategory int
	total       int
}

// Group is the ordered matches of one category.
type Group struct {
	Category model.Category
	Label    string
	Items    []model.SearchItem
}

// Grouped is a category-ordered search result. An empty Groups slice means
// no query or no match.
type Grouped struct {
	Query  string
	Groups []Group
	Total  int
}

// Empty reports whether nothing matched.
func (g Grouped) Empty() bool { return g.Total == 0 }

// Label returns the display heading of a category.
func Label(c model.Category) string {
	switch c {
	case model.CategorySpecies:
		return "魚種"
	case model.CategoryLocation:
		return "釣り場"
	case model.CategoryGuide:
		return "ガイド"
	case model.CategoryArticle:
		return "記事"
	case model.CategoryTool:
		return "ツール"
	default:
		return string(c)
	}
}

// Build flattens the sources and indexes them.
func Build(src Sources, opts ...Option) *Index {
	return NewIndex(Flatten(src), opts...)
}

// NewIndex indexes already-flattened items. Items with an unknown category
// are dropped. If an item's SearchText lacks its own folded display name, the
// name is appended so the item always matches itself.
func NewIndex(items []model.SearchItem, opts ...Option) *Index {
	ix := &Index{
		buckets:     make(map[model.Category][]entry, len(model.Categories)),
		perCategory: DefaultPerCategory,
		total:       DefaultTotal,
	}
	for _, opt := range opts {
		opt(ix)
	}

	for _, it := range items {
		if !it.Category.Valid() {
			continue
		}
		folded := textnorm.Fold(it.DisplayName)
		it.SearchText = textnorm.Fold(it.SearchText)
		if !strings.Contains(it.SearchText, folded) {
			it.SearchText = strings.TrimSpace(it.SearchText + " " + folded)
		}
		ix.buckets[it.Category] = append(ix.buckets[it.Category], entry{
			item:       it,
			nameLower:  textnorm.Lower(it.DisplayName),
			nameFolded: folded,
		})
		ix.size++
	}
	return ix
}

// Len returns the number of indexed items.
func (ix *Index) Len() int { return ix.size }

// CountByCategory returns the number of indexed items per category.
func (ix *Index) CountByCategory() map[model.Category]int {
	out := make(map[model.Category]int, len(ix.buckets))
	for c, b := range ix.buckets {
		out[c] = len(b)
	}
	return out
}

// Search matches query against the corpus. Categories are visited in
// priority order; each contributes at most perCategory items and the scan
// stops once total items were collected.
func (ix *Index) Search(query string) Grouped {
	lowered := textnorm.Lower(query)
	res := Grouped{Query: query}
	if lowered == "" {
		return res
	}
	folded := textnorm.Fold(query)

	for _, c := range model.Categories {
		if res.Total >= ix.total {
			break
		}
		var hits []model.SearchItem
		for i := range ix.buckets[c] {
			e := &ix.buckets[c][i]
			if !matches(e, lowered, folded) {
				continue
			}
			hits = append(hits, e.item)
			if len(hits) >= ix.perCategory || res.Total+len(hits) >= ix.total {
				break
			}
		}
		if len(hits) == 0 {
			continue
		}
		res.Groups = append(res.Groups, Group{Category: c, Label: Label(c), Items: hits})
		res.Total += len(hits)
	}
	return res
}

// matches is bidirectional: the query may be part of the item's text, or
// the item's name may be part of a longer query.
func matches(e *entry, lowered, folded string) bool {
	text := e.item.SearchText
	switch {
	case strings.Contains(text, folded), strings.Contains(text, lowered):
		return true
	case e.nameLower != "" && strings.Contains(lowered, e.nameLower):
		return true
	case e.nameFolded != "" && strings.Contains(folded, e.nameFolded):
		return true
	}
	return false
}
