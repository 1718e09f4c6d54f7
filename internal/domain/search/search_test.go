package search_test

import (
	"fmt"
	"testing"

	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleSources() search.Sources {
	return search.Sources{
		Fish: []model.FishRecord{
			{Name: "マダイ", Kana: "まだい", Romaji: "madai", English: "Red Sea Bream", Aliases: []string{"真鯛"}, Slug: "madai"},
			{Name: "アジ", Kana: "あじ", Romaji: "aji", English: "Horse Mackerel", Slug: "aji"},
		},
		Spots: []model.Spot{
			{ID: "s1", Name: "本牧海づり施設", Slug: "honmoku", Region: "神奈川県", City: "横浜市"},
		},
		Guides: []model.PageRecord{
			{Title: "Sea Bream", Description: "How to catch bream", Keywords: []string{"tai"}, Path: "/guides/sea-bream"},
		},
		Articles: []model.PageRecord{
			{Title: "アジング入門", Description: "ライトゲーム", Path: "/articles/ajing"},
		},
		Tools: []model.PageRecord{
			{Title: "潮見表", Description: "Tide table", Keywords: []string{"tide"}, Path: "/tools/tide"},
		},
	}
}

func targets(g search.Grouped) []string {
	var out []string
	for _, grp := range g.Groups {
		for _, it := range grp.Items {
			out = append(out, it.Target)
		}
	}
	return out
}

func TestIndex_Search(t *testing.T) {
	Convey("Given an index built from every source", t, func() {
		ix := search.Build(sampleSources())
		So(ix.Len(), ShouldEqual, 6)

		Convey("Then a blank query returns nothing", func() {
			So(ix.Search("").Empty(), ShouldBeTrue)
			So(ix.Search("   ").Groups, ShouldBeEmpty)
		})

		Convey("Then katakana and hiragana queries find the same species", func() {
			So(targets(ix.Search("まだい")), ShouldContain, "/fish/madai")
			So(targets(ix.Search("マダイ")), ShouldContain, "/fish/madai")
			So(targets(ix.Search("ﾏﾀﾞｲ")), ShouldContain, "/fish/madai")
		})

		Convey("Then romaji, english names and aliases match", func() {
			So(targets(ix.Search("MADAI")), ShouldContain, "/fish/madai")
			So(targets(ix.Search("mackerel")), ShouldContain, "/fish/aji")
			So(targets(ix.Search("真鯛")), ShouldContain, "/fish/madai")
		})

		Convey("Then matching works in both directions", func() {
			So(targets(ix.Search("sea")), ShouldContain, "/guides/sea-bream")
			So(targets(ix.Search("sea bream fishing")), ShouldContain, "/guides/sea-bream")
			So(targets(ix.Search("アジの釣り方")), ShouldContain, "/fish/aji")
		})

		Convey("Then spots match on region and city", func() {
			res := ix.Search("横浜")
			So(res.Total, ShouldEqual, 1)
			So(res.Groups[0].Category, ShouldEqual, model.CategoryLocation)
			So(res.Groups[0].Label, ShouldEqual, "釣り場")
			So(res.Groups[0].Items[0].Subtitle, ShouldEqual, "神奈川県 横浜市")
		})

		Convey("Then groups follow category priority", func() {
			res := ix.Search("bream")
			So(len(res.Groups), ShouldEqual, 2)
			So(res.Groups[0].Category, ShouldEqual, model.CategorySpecies)
			So(res.Groups[1].Category, ShouldEqual, model.CategoryGuide)
		})

		Convey("Then a query with no match is empty", func() {
			So(ix.Search("zzz").Empty(), ShouldBeTrue)
		})
	})
}

func TestIndex_Limits(t *testing.T) {
	Convey("Given many items sharing a keyword", t, func() {
		var items []model.SearchItem
		// Inserted in reverse priority to check ordering does not depend on input.
		for c := len(model.Categories) - 1; c >= 0; c-- {
			for i := 0; i < 7; i++ {
				items = append(items, model.SearchItem{
					Category:    model.Categories[c],
					DisplayName: fmt.Sprintf("%s %d", model.Categories[c], i),
					SearchText:  "common",
					Target:      fmt.Sprintf("/%s/%d", model.Categories[c], i),
				})
			}
		}

		Convey("When searching with default limits", func() {
			res := search.NewIndex(items).Search("common")

			Convey("Then at most 5 per category and 15 overall are returned", func() {
				So(res.Total, ShouldEqual, search.DefaultTotal)
				So(len(res.Groups), ShouldEqual, 3)
				for i, g := range res.Groups {
					So(g.Category, ShouldEqual, model.Categories[i])
					So(len(g.Items), ShouldEqual, search.DefaultPerCategory)
				}
			})

			Convey("Then matches keep corpus order inside a group", func() {
				So(res.Groups[0].Items[0].Target, ShouldEqual, "/species/0")
				So(res.Groups[0].Items[4].Target, ShouldEqual, "/species/4")
			})
		})

		Convey("When the overall cap cuts a category short", func() {
			res := search.NewIndex(items, search.WithLimits(4, 15)).Search("common")

			Convey("Then the last group is truncated", func() {
				So(res.Total, ShouldEqual, 15)
				So(len(res.Groups), ShouldEqual, 4)
				So(len(res.Groups[3].Items), ShouldEqual, 3)
			})
		})
	})
}

func TestNewIndex(t *testing.T) {
	Convey("Given items with unnormalized or missing search text", t, func() {
		ix := search.NewIndex([]model.SearchItem{
			{Category: model.CategoryTool, DisplayName: "タイドグラフ", Target: "/tools/graph"},
			{Category: "unknown", DisplayName: "ghost"},
		})

		Convey("Then unknown categories are dropped", func() {
			So(ix.Len(), ShouldEqual, 1)
			So(ix.CountByCategory()[model.CategoryTool], ShouldEqual, 1)
		})

		Convey("Then the display name is always searchable", func() {
			So(targets(ix.Search("たいど")), ShouldResemble, []string{"/tools/graph"})
		})
	})
}

func TestFlatten(t *testing.T) {
	Convey("Given the sample sources", t, func() {
		items := search.Flatten(sampleSources())

		Convey("Then every record becomes one item in priority order", func() {
			So(len(items), ShouldEqual, 6)
			So(items[0].Category, ShouldEqual, model.CategorySpecies)
			So(items[0].Subtitle, ShouldEqual, "まだい / Red Sea Bream")
			So(items[2].Target, ShouldEqual, "/spots/honmoku")
			So(items[5].Category, ShouldEqual, model.CategoryTool)
		})

		Convey("Then a spot without a slug links by id", func() {
			it := search.FromSpot(&model.Spot{ID: "x9", Name: "堤防"})
			So(it.Target, ShouldEqual, "/spots/x9")
			So(it.Subtitle, ShouldEqual, "")
		})
	})
}
