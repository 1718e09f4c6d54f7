package model

import (
	"fmt"
	"math"
	"strings"
)

// Rating bounds accepted at ingestion.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Validate checks the data-integrity rules of a spot. Out-of-range values are
// rejected here; the scoring functions never clamp them.
func (s *Spot) Validate() error {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidSpot)
	case math.IsNaN(s.Rating) || s.Rating < MinRating || s.Rating > MaxRating:
		return fmt.Errorf("%w: %s: rating %v out of range [0,5]", ErrInvalidSpot, s.ID, s.Rating)
	case s.ReviewCount < 0:
		return fmt.Errorf("%w: %s: negative review count %d", ErrInvalidSpot, s.ID, s.ReviewCount)
	case s.FishCount < 0:
		return fmt.Errorf("%w: %s: negative fish count %d", ErrInvalidSpot, s.ID, s.FishCount)
	case !s.Location.Valid():
		return fmt.Errorf("%w: %s: coordinate (%v, %v) out of range", ErrInvalidSpot, s.ID, s.Location.Latitude, s.Location.Longitude)
	case !s.Difficulty.Valid():
		return fmt.Errorf("%w: %s: unknown difficulty %q", ErrInvalidSpot, s.ID, s.Difficulty)
	}
	for _, bt := range s.BestTimes {
		if !bt.Tier.Valid() {
			return fmt.Errorf("%w: %s: unknown tier %q for %q", ErrInvalidSpot, s.ID, bt.Tier, bt.Label)
		}
	}
	return nil
}

// Validate checks that an item can be displayed and can match itself.
func (it *SearchItem) Validate() error {
	switch {
	case !it.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidItem, it.Category)
	case strings.TrimSpace(it.DisplayName) == "":
		return fmt.Errorf("%w: missing display name", ErrInvalidItem)
	case strings.TrimSpace(it.Target) == "":
		return fmt.Errorf("%w: %s: missing target", ErrInvalidItem, it.DisplayName)
	}
	return nil
}
