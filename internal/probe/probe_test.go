package probe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/tsuri/internal/adapters/http/api"
	service "github.com/okian/tsuri/internal/app"
	"github.com/okian/tsuri/internal/domain/types"
	"github.com/okian/tsuri/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// newTestServer serves the real API over the embedded catalog.
func newTestServer() (*httptest.Server, func()) {
	svc := service.New(service.WithLogger(logger.Nop()))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		Requests:    60,
		Workers:     4,
		Timeout:     5 * time.Second,
		SearchRatio: DefaultSearchRatio,
		Debounce:    20 * time.Millisecond,
		Limits:      DefaultLimits(),
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv, done := newTestServer()
		defer done()
		cfg := testConfig(srv.URL)

		Convey("When the probe runs", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every response holds the invariants", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 60)
				So(stats.Submitted, ShouldEqual, 60)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Violations, ShouldEqual, 0)
				So(stats.Successful+stats.Rejected, ShouldEqual, 60)
				So(stats.RankRequests+stats.SearchRequests, ShouldEqual, 60)
				So(stats.SessionQueries, ShouldEqual, len(SessionPhrases))
			})
		})

		Convey("When the service is unreachable", func() {
			cfg.BaseURL = "http://127.0.0.1:1"
			_, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSessions(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv, done := newTestServer()
		defer done()
		cfg := testConfig(srv.URL)
		client := NewHTTPClient(srv.URL, cfg.Timeout)
		ctx := context.Background()

		Convey("When a phrase is typed into the overlay", func() {
			res := RunSearchSession(ctx, client, cfg, "くろだい")

			Convey("Then only the full phrase is searched and the hit is selected", func() {
				So(res.Violations, ShouldBeEmpty)
				So(res.Queries, ShouldResemble, []string{"くろだい"})
				So(res.Target, ShouldEqual, "/fish/kurodai")
			})
		})

		Convey("When near-me is toggled", func() {
			res := RunNearMeSession(ctx, client, cfg)
			So(res.Violations, ShouldBeEmpty)
			So(res.Origin.Valid(), ShouldBeTrue)
		})
	})
}

func TestVerifyRank(t *testing.T) {
	Convey("Given ranking responses", t, func() {
		far := 140.0
		lim := DefaultLimits()

		Convey("Then a well-formed response passes", func() {
			ok := types.RankResponse{Mode: "standard", Spots: []types.RankedSpot{
				{Position: 1, ID: "a", Score: 80, Total: 80},
				{Position: 2, ID: "b", Score: 80, Total: 80},
				{Position: 3, ID: "c", Score: 70, Total: 70},
			}}
			So(VerifyRank(ok, lim), ShouldBeEmpty)
			So(VerifyRank(types.RankResponse{Empty: true}, lim), ShouldBeEmpty)
		})

		Convey("Then broken responses are reported", func() {
			bad := types.RankResponse{Mode: "near_me", Spots: []types.RankedSpot{
				{Position: 1, ID: "a", Score: 70, Total: 70, DistanceKm: &far},
				{Position: 3, ID: "b", Score: 75, Total: 75},
			}}
			errs := VerifyRank(bad, lim)
			// distance, position, increasing total, missing distance
			So(len(errs), ShouldEqual, 4)
		})

		Convey("Then standard mode must not carry a bonus", func() {
			res := types.RankResponse{Mode: "standard", Spots: []types.RankedSpot{{Position: 1, ID: "a", Score: 50, Bonus: 5, Total: 55}}}
			So(len(VerifyRank(res, lim)), ShouldEqual, 1)
		})
	})
}

func TestVerifySearch(t *testing.T) {
	Convey("Given search responses", t, func() {
		lim := Limits{MaxResults: 3, MaxPerCategory: 2}
		hit := types.SearchHit{Name: "x", Target: "/x"}

		Convey("Then a well-formed response passes", func() {
			ok := types.SearchResponse{Query: "x", Total: 3, Groups: []types.SearchGroup{
				{Category: "species", Items: []types.SearchHit{hit, hit}},
				{Category: "tool", Items: []types.SearchHit{hit}},
			}}
			So(VerifySearch(ok, lim), ShouldBeEmpty)
		})

		Convey("Then caps and ordering are enforced", func() {
			bad := types.SearchResponse{Query: "x", Total: 4, Groups: []types.SearchGroup{
				{Category: "tool", Items: []types.SearchHit{hit}},
				{Category: "species", Items: []types.SearchHit{hit, hit, hit}},
			}}
			errs := VerifySearch(bad, lim)
			// total cap, per-category cap, priority order
			So(len(errs), ShouldEqual, 3)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given request outcomes", t, func() {
		invalid := Request{ID: "1", Kind: KindRank, Tab: "deep-sea"}
		valid := Request{ID: "2", Kind: KindRank, Tab: "all"}
		badRequest := &StatusError{Status: StatusBadRequest, Code: "bad_request"}

		Convey("Then an expected rejection is not a violation", func() {
			out, errs := classify(invalid, badRequest)
			So(out, ShouldEqual, outcomeRejected)
			So(errs, ShouldBeEmpty)
		})

		Convey("Then an accepted unknown tab is a violation", func() {
			_, errs := classify(invalid, nil)
			So(len(errs), ShouldEqual, 1)
		})

		Convey("Then a rejected valid request fails", func() {
			out, errs := classify(valid, badRequest)
			So(out, ShouldEqual, outcomeFailed)
			So(errors.As(errs[0], new(*StatusError)), ShouldBeTrue)
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator", t, func() {
		cfg := &Config{SearchRatio: 0.5}

		Convey("Then requests carry unique ids and valid origins", func() {
			reqs, err := Generate(context.Background(), cfg, 200)
			So(err, ShouldBeNil)
			So(len(reqs), ShouldEqual, 200)
			ids := map[string]bool{}
			for _, r := range reqs {
				So(ids[r.ID], ShouldBeFalse)
				ids[r.ID] = true
				if r.NearMe {
					So(r.Lat, ShouldBeBetweenOrEqual, minLat, maxLat)
					So(r.Lng, ShouldBeBetweenOrEqual, minLng, maxLng)
				}
			}
		})

		Convey("Then a cancelled context stops generation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := Generate(ctx, cfg, 10)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
