package repository

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/tsuri/internal/domain/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// YAML record shapes. They are decoded through koanf and mapped onto the
// domain model so the model carries no decoding tags.
type catalogFile struct {
	Spots    []spotRecord `koanf:"spots"`
	Fish     []fishRecord `koanf:"fish"`
	Guides   []pageRecord `koanf:"guides"`
	Articles []pageRecord `koanf:"articles"`
	Tools    []pageRecord `koanf:"tools"`
}

type spotRecord struct {
	ID          string           `koanf:"id"`
	Name        string           `koanf:"name"`
	Slug        string           `koanf:"slug"`
	Lat         float64          `koanf:"lat"`
	Lng         float64          `koanf:"lng"`
	Rating      float64          `koanf:"rating"`
	ReviewCount int              `koanf:"review_count"`
	Fish        []string         `koanf:"fish"`
	Parking     bool             `koanf:"parking"`
	Toilet      bool             `koanf:"toilet"`
	RentalRod   bool             `koanf:"rental_rod"`
	Free        bool             `koanf:"free"`
	Difficulty  string           `koanf:"difficulty"`
	BestTimes   []bestTimeRecord `koanf:"best_times"`
	Type        string           `koanf:"type"`
	Region      string           `koanf:"region"`
	City        string           `koanf:"city"`
}

type bestTimeRecord struct {
	Label string `koanf:"label"`
	Tier  string `koanf:"tier"`
}

type fishRecord struct {
	Name     string   `koanf:"name"`
	Kana     string   `koanf:"kana"`
	Romaji   string   `koanf:"romaji"`
	English  string   `koanf:"english"`
	Aliases  []string `koanf:"aliases"`
	Slug     string   `koanf:"slug"`
	Category string   `koanf:"category"`
}

type pageRecord struct {
	Title       string   `koanf:"title"`
	Description string   `koanf:"description"`
	Keywords    []string `koanf:"keywords"`
	Path        string   `koanf:"path"`
}

// bytesProvider feeds an in-memory document to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("bytes provider does not support Read")
}

// DefaultCatalog decodes the catalog embedded in the binary.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(b []byte) (Catalog, error) {
	return decode(bytesProvider(b), "embedded")
}

// LoadCatalogFile decodes and validates a YAML catalog file.
func LoadCatalogFile(path string) (Catalog, error) {
	return decode(file.Provider(path), path)
}

func decode(p koanf.Provider, source string) (Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(p, yaml.Parser()); err != nil {
		return Catalog{}, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, source, err)
	}

	var raw catalogFile
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Catalog{}, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, source, err)
	}

	c := raw.toCatalog()
	if err := Validate(&c); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (f *catalogFile) toCatalog() Catalog {
	c := Catalog{
		Spots:    make([]model.Spot, len(f.Spots)),
		Fish:     make([]model.FishRecord, len(f.Fish)),
		Guides:   toPages(f.Guides),
		Articles: toPages(f.Articles),
		Tools:    toPages(f.Tools),
	}
	for i := range f.Spots {
		c.Spots[i] = f.Spots[i].toSpot()
	}
	for i, r := range f.Fish {
		c.Fish[i] = model.FishRecord{
			Name:     r.Name,
			Kana:     r.Kana,
			Romaji:   r.Romaji,
			English:  r.English,
			Aliases:  r.Aliases,
			Slug:     r.Slug,
			Category: r.Category,
		}
	}
	return c
}

func (r *spotRecord) toSpot() model.Spot {
	bt := make([]model.BestTime, len(r.BestTimes))
	for i, b := range r.BestTimes {
		bt[i] = model.BestTime{Label: b.Label, Tier: model.Tier(b.Tier)}
	}
	return model.Spot{
		ID:           r.ID,
		Name:         r.Name,
		Slug:         r.Slug,
		Location:     model.Coordinate{Latitude: r.Lat, Longitude: r.Lng},
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		FishCount:    species(r.Fish),
		HasParking:   r.Parking,
		HasToilet:    r.Toilet,
		HasRentalRod: r.RentalRod,
		IsFree:       r.Free,
		Difficulty:   model.Difficulty(r.Difficulty),
		BestTimes:    bt,
		SpotType:     r.Type,
		Region:       r.Region,
		City:         r.City,
	}
}

// species counts distinct non-empty fish slugs.
func species(fish []string) int {
	seen := make(map[string]struct{}, len(fish))
	for _, f := range fish {
		if f == "" {
			continue
		}
		seen[f] = struct{}{}
	}
	return len(seen)
}

func toPages(in []pageRecord) []model.PageRecord {
	out := make([]model.PageRecord, len(in))
	for i, r := range in {
		out[i] = model.PageRecord{
			Title:       r.Title,
			Description: r.Description,
			Keywords:    r.Keywords,
			Path:        r.Path,
		}
	}
	return out
}

// Validate checks every record. The first invalid record fails the whole
// catalog; nothing is clamped or skipped.
func Validate(c *Catalog) error {
	seen := make(map[string]struct{}, len(c.Spots))
	for i := range c.Spots {
		s := &c.Spots[i]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: spots[%d]: %w", ErrInvalidCatalog, i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: spots[%d]: duplicate id %q", ErrInvalidCatalog, i, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	for i, f := range c.Fish {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Slug) == "" {
			return fmt.Errorf("%w: fish[%d]: name and slug are required", ErrInvalidCatalog, i)
		}
	}
	pages := []struct {
		kind    string
		records []model.PageRecord
	}{
		{"guides", c.Guides},
		{"articles", c.Articles},
		{"tools", c.Tools},
	}
	for _, p := range pages {
		for i, r := range p.records {
			if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Path) == "" {
				return fmt.Errorf("%w: %s[%d]: title and path are required", ErrInvalidCatalog, p.kind, i)
			}
		}
	}
	return nil
}
