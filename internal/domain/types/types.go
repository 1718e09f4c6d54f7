// Package types contains the read shapes returned over the API.
package types

// Breakdown is the per-term score of a spot.
type Breakdown struct {
	Quality       float64 `json:"quality"`
	Diversity     float64 `json:"diversity"`
	Facility      float64 `json:"facility"`
	Popularity    float64 `json:"popularity"`
	Accessibility float64 `json:"accessibility"`
}

// RankedSpot is one row of a ranking.
type RankedSpot struct {
	Position    int       `json:"position"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Region      string    `json:"region"`
	City        string    `json:"city,omitempty"`
	SpotType    string    `json:"spot_type,omitempty"`
	Difficulty  string    `json:"difficulty"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Score       float64   `json:"score"`
	Bonus       float64   `json:"bonus"`
	Total       float64   `json:"total"`
	DistanceKm  *float64  `json:"distance_km,omitempty"`
	Breakdown   Breakdown `json:"breakdown"`
}

// RankResponse is the body of GET /rank. Empty marks the "no spots" state.
type RankResponse struct {
	Tab      string       `json:"tab"`
	TabLabel string       `json:"tab_label"`
	Region   string       `json:"region"`
	Mode     string       `json:"mode"`
	Empty    bool         `json:"empty"`
	Spots    []RankedSpot `json:"spots"`
}

// SearchHit is one search result.
type SearchHit struct {
	Name     string `json:"name"`
	Subtitle string `json:"subtitle,omitempty"`
	Target   string `json:"target"`
}

// SearchGroup is the results of one category.
type SearchGroup struct {
	Category string      `json:"category"`
	Label    string      `json:"label"`
	Items    []SearchHit `json:"items"`
}

// SearchResponse is the body of GET /search. Groups keep category priority order.
type SearchResponse struct {
	Query  string        `json:"query"`
	Total  int           `json:"total"`
	Groups []SearchGroup `json:"groups"`
}

// Stats is the body of GET /stats.
type Stats struct {
	Started         bool           `json:"started"`
	CatalogVersion  uint64         `json:"catalog_version"`
	CatalogLoadedAt string         `json:"catalog_loaded_at,omitempty"`
	Catalog         map[string]int `json:"catalog"`
	IndexedItems    int            `json:"indexed_items"`
	RankRequests    uint64         `json:"rank_requests"`
	SearchRequests  uint64         `json:"search_requests"`
}
