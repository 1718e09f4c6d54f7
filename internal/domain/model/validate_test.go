package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/tsuri/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func validSpot() model.Spot {
	return model.Spot{
		ID:          "spot-1",
		Name:        "Daikoku Pier",
		Location:    model.Coordinate{Latitude: 35.46, Longitude: 139.68},
		Rating:      4.2,
		ReviewCount: 120,
		FishCount:   6,
		Difficulty:  model.DifficultyBeginner,
		BestTimes:   []model.BestTime{{Label: "night", Tier: model.TierBest}},
		SpotType:    model.SpotTypePier,
		Region:      "Kanagawa Prefecture",
	}
}

func TestSpotValidate(t *testing.T) {
	Convey("Given a spot record", t, func() {
		s := validSpot()

		Convey("When all fields are in range", func() {
			Convey("Then validation should pass", func() {
				So(s.Validate(), ShouldBeNil)
			})
		})

		Convey("When the rating is above 5", func() {
			s.Rating = 5.1

			Convey("Then it should be rejected", func() {
				err := s.Validate()
				So(err, ShouldNotBeNil)
				So(errors.Is(err, model.ErrInvalidSpot), ShouldBeTrue)
			})
		})

		Convey("When the rating is negative or NaN", func() {
			s.Rating = -0.5
			So(s.Validate(), ShouldNotBeNil)
			s.Rating = math.NaN()
			So(s.Validate(), ShouldNotBeNil)
		})

		Convey("When the review count is negative", func() {
			s.ReviewCount = -1

			Convey("Then it should be rejected", func() {
				So(errors.Is(s.Validate(), model.ErrInvalidSpot), ShouldBeTrue)
			})
		})

		Convey("When the coordinate is out of range", func() {
			s.Location.Latitude = 91

			Convey("Then it should be rejected", func() {
				So(s.Validate(), ShouldNotBeNil)
			})
		})

		Convey("When the difficulty is unknown", func() {
			s.Difficulty = "expert"
			So(s.Validate(), ShouldNotBeNil)
		})

		Convey("When a best-time tier is unknown", func() {
			s.BestTimes = []model.BestTime{{Label: "morning", Tier: "great"}}
			So(s.Validate(), ShouldNotBeNil)
		})

		Convey("When the id is blank", func() {
			s.ID = "  "
			So(s.Validate(), ShouldNotBeNil)
		})
	})
}

func TestSearchItemValidate(t *testing.T) {
	Convey("Given a search item", t, func() {
		it := model.SearchItem{Category: model.CategorySpecies, DisplayName: "Aji", Target: "/fish/aji"}

		Convey("Then a complete item is valid", func() {
			So(it.Validate(), ShouldBeNil)
		})

		Convey("Then an unknown category is rejected", func() {
			it.Category = "video"
			So(errors.Is(it.Validate(), model.ErrInvalidItem), ShouldBeTrue)
		})

		Convey("Then a missing target is rejected", func() {
			it.Target = ""
			So(it.Validate(), ShouldNotBeNil)
		})
	})
}

func TestCategories(t *testing.T) {
	Convey("Given the category priority list", t, func() {
		Convey("Then species comes first and tool last", func() {
			So(model.Categories[0], ShouldEqual, model.CategorySpecies)
			So(model.Categories[len(model.Categories)-1], ShouldEqual, model.CategoryTool)
		})
	})
}
