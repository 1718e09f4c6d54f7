package model

// Category is the closed set of search result groups.
type Category string

// Search categories.
const (
	CategorySpecies  Category = "species"
	CategoryLocation Category = "location"
	CategoryGuide    Category = "guide"
	CategoryArticle  Category = "article"
	CategoryTool     Category = "tool"
)

// Categories lists every category in display priority order.
var Categories = []Category{
	CategorySpecies,
	CategoryLocation,
	CategoryGuide,
	CategoryArticle,
	CategoryTool,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SearchItem is one flattened, searchable entry of the corpus.
// SearchText is normalized once when the corpus is built.
type SearchItem struct {
	Category    Category
	DisplayName string
	Subtitle    string
	SearchText  string
	Target      string // navigable path, e.g. "/fish/aji"
}

// FishRecord is a species catalog entry.
type FishRecord struct {
	Name     string // primary (usually kanji or katakana) name
	Kana     string // hiragana reading
	Romaji   string
	English  string
	Aliases  []string
	Slug     string
	Category string // e.g. "saltwater", "freshwater"
}

// PageRecord is the metadata of a static guide, article or tool page.
type PageRecord struct {
	Title       string
	Description string
	Keywords    []string
	Path        string
}
