// Package repository holds the read-only catalog of spots and searchable
// records and publishes it as immutable snapshots.
package repository

import (
	"context"
	"time"

	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/search"
)

// Catalog is every record the service serves.
type Catalog struct {
	Spots    []model.Spot
	Fish     []model.FishRecord
	Guides   []model.PageRecord
	Articles []model.PageRecord
	Tools    []model.PageRecord
}

// Sources returns the catalog as search corpus sources.
func (c *Catalog) Sources() search.Sources {
	return search.Sources{
		Fish:     c.Fish,
		Spots:    c.Spots,
		Guides:   c.Guides,
		Articles: c.Articles,
		Tools:    c.Tools,
	}
}

// Counts is the record count per catalog kind.
type Counts struct {
	Spots    int `json:"spots"`
	Fish     int `json:"fish"`
	Guides   int `json:"guides"`
	Articles int `json:"articles"`
	Tools    int `json:"tools"`
}

// Counts tallies the catalog.
func (c *Catalog) Counts() Counts {
	return Counts{
		Spots:    len(c.Spots),
		Fish:     len(c.Fish),
		Guides:   len(c.Guides),
		Articles: len(c.Articles),
		Tools:    len(c.Tools),
	}
}

// Snapshot is one published catalog version. It must not be mutated.
type Snapshot struct {
	Catalog  Catalog
	Version  uint64
	LoadedAt time.Time
}

// Store provides read access to the current catalog.
type Store interface {
	// Spots returns the spots of the current snapshot. Callers must not mutate it.
	Spots(ctx context.Context) ([]model.Spot, error)
	// Corpus returns the searchable sources of the current snapshot.
	Corpus(ctx context.Context) (search.Sources, error)
	// Counts returns record counts of the current snapshot.
	Counts(ctx context.Context) Counts
	// Snapshot returns the current snapshot, or nil before the first load.
	Snapshot() *Snapshot
}
