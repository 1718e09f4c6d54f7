package search

import (
	"strings"

	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/textnorm"
)

// Sources are the heterogeneous catalogs flattened into one corpus.
type Sources struct {
	Fish     []model.FishRecord
	Spots    []model.Spot
	Guides   []model.PageRecord
	Articles []model.PageRecord
	Tools    []model.PageRecord
}

// FromFish maps a species entry. Every reading and alias is searchable.
func FromFish(f *model.FishRecord) model.SearchItem {
	variants := append([]string{f.Name, f.Kana, f.Romaji, f.English}, f.Aliases...)
	return model.SearchItem{
		Category:    model.CategorySpecies,
		DisplayName: f.Name,
		Subtitle:    joinNonEmpty(" / ", f.Kana, f.English),
		SearchText:  textnorm.Join(variants...),
		Target:      "/fish/" + f.Slug,
	}
}

// FromSpot maps a fishing spot; its region and city are searchable too.
func FromSpot(s *model.Spot) model.SearchItem {
	slug := s.Slug
	if slug == "" {
		slug = s.ID
	}
	return model.SearchItem{
		Category:    model.CategoryLocation,
		DisplayName: s.Name,
		Subtitle:    joinNonEmpty(" ", s.Region, s.City),
		SearchText:  textnorm.Join(s.Name, s.Region, s.City),
		Target:      "/spots/" + slug,
	}
}

// FromPage maps guide, article and tool page metadata.
func FromPage(c model.Category, p *model.PageRecord) model.SearchItem {
	variants := append([]string{p.Title, p.Description}, p.Keywords...)
	return model.SearchItem{
		Category:    c,
		DisplayName: p.Title,
		Subtitle:    p.Description,
		SearchText:  textnorm.Join(variants...),
		Target:      p.Path,
	}
}

// Flatten maps every source record into the uniform item shape, in
// category priority order.
func Flatten(src Sources) []model.SearchItem {
	n := len(src.Fish) + len(src.Spots) + len(src.Guides) + len(src.Articles) + len(src.Tools)
	items := make([]model.SearchItem, 0, n)
	for i := range src.Fish {
		items = append(items, FromFish(&src.Fish[i]))
	}
	for i := range src.Spots {
		items = append(items, FromSpot(&src.Spots[i]))
	}
	for i := range src.Guides {
		items = append(items, FromPage(model.CategoryGuide, &src.Guides[i]))
	}
	for i := range src.Articles {
		items = append(items, FromPage(model.CategoryArticle, &src.Articles[i]))
	}
	for i := range src.Tools {
		items = append(items, FromPage(model.CategoryTool, &src.Tools[i]))
	}
	return items
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
