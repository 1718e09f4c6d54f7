package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	repository "github.com/okian/tsuri/internal/adapters/repository"
	service "github.com/okian/tsuri/internal/app"
	"github.com/okian/tsuri/internal/domain/debounce"
	"github.com/okian/tsuri/internal/domain/filter"
	"github.com/okian/tsuri/internal/domain/geolocate"
	"github.com/okian/tsuri/internal/domain/model"
	"github.com/okian/tsuri/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var yokohama = model.Coordinate{Latitude: 35.4437, Longitude: 139.6380}

func startedService(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	So(svc.Start(ctx), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("Then calls before Start report it", func() {
			_, err := svc.Rank(context.Background(), service.RankRequest{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Search(context.Background(), "aji")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Stats().Started, ShouldBeFalse)
		})

		Convey("When starting and stopping", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			st := svc.Stats()
			svc.Stop()
			svc.Stop()

			Convey("Then stats follow the lifecycle", func() {
				So(st.Started, ShouldBeTrue)
				So(st.Catalog["spots"], ShouldEqual, 14)
				So(st.CatalogVersion, ShouldEqual, 1)
				So(st.IndexedItems, ShouldBeGreaterThan, 14)
				So(svc.Stats().Started, ShouldBeFalse)
			})
		})
	})
}

func TestService_Rank(t *testing.T) {
	Convey("Given a started service on the embedded catalog", t, func() {
		svc := startedService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When ranking nationwide", func() {
			res, err := svc.Rank(ctx, service.RankRequest{Tab: "all", Region: "全国"})
			So(err, ShouldBeNil)

			Convey("Then the top ten are ordered by total", func() {
				So(len(res.Spots), ShouldEqual, 10)
				So(res.Mode, ShouldEqual, "standard")
				So(res.Region, ShouldEqual, filter.Nationwide)
				for i := 1; i < len(res.Spots); i++ {
					So(res.Spots[i].Total, ShouldBeLessThanOrEqualTo, res.Spots[i-1].Total)
					So(res.Spots[i].Position, ShouldEqual, i+1)
					So(res.Spots[i].DistanceKm, ShouldBeNil)
				}
			})
		})

		Convey("When filtering by region and tab", func() {
			res, err := svc.Rank(ctx, service.RankRequest{Tab: "beginner", Region: "神奈川"})
			So(err, ShouldBeNil)

			Convey("Then only matching spots remain", func() {
				So(res.TabLabel, ShouldEqual, filter.TabBeginner.Label())
				So(len(res.Spots), ShouldEqual, 2)
				for _, s := range res.Spots {
					So(s.Region, ShouldEqual, "神奈川県")
					So(s.Difficulty, ShouldEqual, "beginner")
				}
			})
		})

		Convey("When the tab is unknown", func() {
			_, err := svc.Rank(ctx, service.RankRequest{Tab: "deep-sea"})

			Convey("Then the request is rejected", func() {
				So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
				So(errors.Is(err, filter.ErrUnknownTab), ShouldBeTrue)
			})
		})

		Convey("When ranking near Yokohama", func() {
			res, err := svc.Rank(ctx, service.RankRequest{Tab: "all", Region: "北海道", NearMe: true, Origin: &yokohama})
			So(err, ShouldBeNil)

			Convey("Then the region is ignored and far spots are dropped", func() {
				So(res.Mode, ShouldEqual, "near_me")
				So(res.Region, ShouldEqual, filter.Nationwide)
				So(res.Empty, ShouldBeFalse)
				for _, s := range res.Spots {
					So(s.DistanceKm, ShouldNotBeNil)
					So(*s.DistanceKm, ShouldBeLessThanOrEqualTo, 100)
					So(s.ID, ShouldNotEqual, "otaru-port")
					So(s.ID, ShouldNotEqual, "choshi-port")
				}
			})
		})

		Convey("When near-me has no origin", func() {
			res, err := svc.Rank(ctx, service.RankRequest{NearMe: true})
			So(err, ShouldBeNil)
			So(res.Mode, ShouldEqual, "standard")
		})

		Convey("When the origin is invalid", func() {
			_, err := svc.Rank(ctx, service.RankRequest{NearMe: true, Origin: &model.Coordinate{Latitude: 120}})
			So(errors.Is(err, geolocate.ErrInvalidCoordinate), ShouldBeTrue)
		})

		Convey("When no spot passes the filters", func() {
			res, err := svc.Rank(ctx, service.RankRequest{Tab: "night", Region: "沖縄県"})
			So(err, ShouldBeNil)
			So(res.Empty, ShouldBeTrue)
			So(res.Spots, ShouldBeEmpty)
		})
	})
}

func TestService_Search(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startedService(service.WithSearchLimits(2, 4))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When searching in katakana", func() {
			res, err := svc.Search(ctx, "アジ")
			So(err, ShouldBeNil)

			Convey("Then species come first and limits apply", func() {
				So(res.Total, ShouldBeLessThanOrEqualTo, 4)
				So(res.Groups[0].Category, ShouldEqual, "species")
				So(res.Groups[0].Items[0].Target, ShouldEqual, "/fish/aji")
				for _, g := range res.Groups {
					So(len(g.Items), ShouldBeLessThanOrEqualTo, 2)
				}
			})
		})

		Convey("When the query is blank", func() {
			res, err := svc.Search(ctx, "  ")
			So(err, ShouldBeNil)
			So(res.Total, ShouldEqual, 0)
			So(res.Groups, ShouldBeEmpty)
		})

		Convey("Then requests are counted", func() {
			_, _ = svc.Search(ctx, "tide")
			So(svc.Stats().SearchRequests, ShouldEqual, 1)
		})
	})
}

type instantClock struct{ fns []func() }

type instantTimer struct{}

func (instantTimer) Stop() bool { return true }

func (c *instantClock) AfterFunc(_ time.Duration, f func()) debounce.Timer {
	c.fns = append(c.fns, f)
	return instantTimer{}
}

func TestService_SearchSession(t *testing.T) {
	Convey("Given a search session", t, func() {
		svc := startedService()
		defer svc.Stop()
		clock := &instantClock{}
		o := svc.SearchSession(debounce.WithClock(clock))

		Convey("When the user opens it and types", func() {
			o.Open()
			o.Type("潮")
			clock.fns[len(clock.fns)-1]()

			Convey("Then the settled result is shown", func() {
				v := o.View()
				So(v.Searched, ShouldBeTrue)
				So(v.Result.Groups[0].Category, ShouldEqual, model.CategoryTool)
			})

			Convey("Then selecting navigates and clears", func() {
				target := o.Select(o.View().Result.Groups[0].Items[0])
				So(target, ShouldEqual, "/tools/tide")
				So(o.IsOpen(), ShouldBeFalse)
				So(o.View().Input, ShouldEqual, "")
			})
		})
	})
}

func TestService_Locate(t *testing.T) {
	Convey("Given a started service with a short location timeout", t, func() {
		svc := startedService(service.WithGeolocationTimeout(50 * time.Millisecond))
		defer svc.Stop()
		ctx := context.Background()

		Convey("Then a static provider locates", func() {
			out := svc.Locate(ctx, geolocate.StaticProvider{Coordinate: yokohama})
			So(out.OK(), ShouldBeTrue)
			So(out.Coordinate, ShouldResemble, yokohama)
		})

		Convey("Then a refusing provider is denied", func() {
			out := svc.Locate(ctx, geolocate.ProviderFunc(func(context.Context, geolocate.Request) (model.Coordinate, error) {
				return model.Coordinate{}, geolocate.ErrDenied
			}))
			So(out.Status, ShouldEqual, geolocate.StatusDenied)
		})

		Convey("Then a hanging provider times out", func() {
			out := svc.Locate(ctx, geolocate.ProviderFunc(func(ctx context.Context, _ geolocate.Request) (model.Coordinate, error) {
				<-ctx.Done()
				return model.Coordinate{}, ctx.Err()
			}))
			So(out.Status, ShouldEqual, geolocate.StatusTimedOut)
		})

		Convey("Then the near-me controller feeds rankings", func() {
			nm := svc.NearMe(geolocate.StaticProvider{Coordinate: yokohama})
			So(nm.Request(ctx).OK(), ShouldBeTrue)
			st := nm.State()
			res, err := svc.Rank(ctx, service.RankRequest{NearMe: st.Enabled, Origin: st.Origin})
			So(err, ShouldBeNil)
			So(res.Mode, ShouldEqual, "near_me")
		})
	})
}

func TestService_Reload(t *testing.T) {
	Convey("Given a service reading a catalog file", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		write := func(body string) { So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil) }
		write(`
spots:
  - {id: one, name: One, rating: 4, review_count: 20, difficulty: beginner}
fish:
  - {name: アジ, slug: aji}
`)
		svc := startedService(service.WithCatalogPath(path))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When the file changes and is reloaded", func() {
			write(`
spots:
  - {id: one, name: One, rating: 4, review_count: 20, difficulty: beginner}
  - {id: two, name: Two, rating: 3, review_count: 2, difficulty: advanced}
fish:
  - {name: サバ, slug: saba}
`)
			So(svc.Reload(ctx), ShouldBeNil)

			Convey("Then rankings and the index use the new catalog", func() {
				res, _ := svc.Rank(ctx, service.RankRequest{})
				So(len(res.Spots), ShouldEqual, 2)
				found, _ := svc.Search(ctx, "さば")
				So(found.Total, ShouldEqual, 1)
				gone, _ := svc.Search(ctx, "あじ")
				So(gone.Total, ShouldEqual, 0)
				So(svc.Stats().CatalogVersion, ShouldEqual, 2)
			})
		})

		Convey("When the new file is invalid", func() {
			write(`
spots:
  - {id: one, rating: 9, difficulty: beginner}
`)
			err := svc.Reload(ctx)

			Convey("Then the previous catalog keeps serving", func() {
				So(errors.Is(err, repository.ErrInvalidCatalog), ShouldBeTrue)
				res, _ := svc.Rank(ctx, service.RankRequest{})
				So(len(res.Spots), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a service over a fixed store", t, func() {
		store, err := repository.NewCatalogStore(context.Background(), repository.WithCatalog(repository.Catalog{
			Spots: []model.Spot{{ID: "x", Rating: 4, Difficulty: model.DifficultyBeginner}},
		}))
		So(err, ShouldBeNil)
		svc := startedService(service.WithStore(store), service.WithTopN(1))
		defer svc.Stop()

		Convey("Then the store's catalog is served", func() {
			res, err := svc.Rank(context.Background(), service.RankRequest{})
			So(err, ShouldBeNil)
			So(res.Spots[0].ID, ShouldEqual, "x")
		})
	})
}
