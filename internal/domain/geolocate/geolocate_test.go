package geolocate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/tsuri/internal/domain/geolocate"
	"github.com/okian/tsuri/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var yokohama = model.Coordinate{Latitude: 35.4437, Longitude: 139.6380}

func TestAcquire(t *testing.T) {
	Convey("Given a location provider", t, func() {
		ctx := context.Background()

		Convey("When the provider answers with a coordinate", func() {
			var got geolocate.Request
			p := geolocate.ProviderFunc(func(_ context.Context, req geolocate.Request) (model.Coordinate, error) {
				got = req
				return yokohama, nil
			})
			out := geolocate.Acquire(ctx, p, time.Second)

			Convey("Then the outcome is located", func() {
				So(out.OK(), ShouldBeTrue)
				So(out.Status.String(), ShouldEqual, "located")
				So(out.Coordinate, ShouldResemble, yokohama)
			})

			Convey("Then a high-accuracy request with the timeout was sent", func() {
				So(got.HighAccuracy, ShouldBeTrue)
				So(got.Timeout, ShouldEqual, time.Second)
			})
		})

		Convey("When the user denies permission", func() {
			p := geolocate.ProviderFunc(func(context.Context, geolocate.Request) (model.Coordinate, error) {
				return model.Coordinate{}, geolocate.ErrDenied
			})
			out := geolocate.Acquire(ctx, p, time.Second)

			Convey("Then the outcome is denied", func() {
				So(out.Status, ShouldEqual, geolocate.StatusDenied)
				So(errors.Is(out.Err, geolocate.ErrDenied), ShouldBeTrue)
			})
		})

		Convey("When the provider never answers", func() {
			p := geolocate.ProviderFunc(func(ctx context.Context, _ geolocate.Request) (model.Coordinate, error) {
				<-ctx.Done()
				time.Sleep(5 * time.Millisecond)
				return yokohama, nil
			})
			out := geolocate.Acquire(ctx, p, 20*time.Millisecond)

			Convey("Then the outcome is a timeout", func() {
				So(out.Status, ShouldEqual, geolocate.StatusTimedOut)
				So(errors.Is(out.Err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})

		Convey("When the provider returns an impossible coordinate", func() {
			out := geolocate.Acquire(ctx, geolocate.StaticProvider{Coordinate: model.Coordinate{Latitude: 120}}, time.Second)

			Convey("Then the outcome is unavailable", func() {
				So(out.Status, ShouldEqual, geolocate.StatusUnavailable)
				So(errors.Is(out.Err, geolocate.ErrInvalidCoordinate), ShouldBeTrue)
			})
		})

		Convey("When the provider fails for another reason", func() {
			p := geolocate.ProviderFunc(func(context.Context, geolocate.Request) (model.Coordinate, error) {
				return model.Coordinate{}, geolocate.ErrUnavailable
			})
			out := geolocate.Acquire(ctx, p, time.Second)

			Convey("Then the outcome is unavailable", func() {
				So(out.Status, ShouldEqual, geolocate.StatusUnavailable)
			})
		})

		Convey("When the caller cancels", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			p := geolocate.ProviderFunc(func(ctx context.Context, _ geolocate.Request) (model.Coordinate, error) {
				<-ctx.Done()
				return model.Coordinate{}, ctx.Err()
			})
			out := geolocate.Acquire(cctx, p, time.Second)

			Convey("Then the outcome is unavailable, not a timeout", func() {
				So(out.Status, ShouldEqual, geolocate.StatusUnavailable)
			})
		})

		Convey("When no provider is configured", func() {
			out := geolocate.Acquire(ctx, nil, time.Second)

			Convey("Then the outcome is unavailable", func() {
				So(errors.Is(out.Err, geolocate.ErrNoProvider), ShouldBeTrue)
			})
		})
	})
}

func TestNearMe(t *testing.T) {
	Convey("Given a near-me controller", t, func() {
		ctx := context.Background()

		Convey("When a location request succeeds", func() {
			n := geolocate.NewNearMe(geolocate.StaticProvider{Coordinate: yokohama}, time.Second)
			out := n.Request(ctx)

			Convey("Then near-me mode is enabled with the origin", func() {
				So(out.OK(), ShouldBeTrue)
				st := n.State()
				So(st.Enabled, ShouldBeTrue)
				So(st.Locating, ShouldBeFalse)
				So(*st.Origin, ShouldResemble, yokohama)
			})

			Convey("And it is disabled afterwards", func() {
				n.Disable()

				Convey("Then the origin is no longer exposed", func() {
					st := n.State()
					So(st.Enabled, ShouldBeFalse)
					So(st.Origin, ShouldBeNil)
				})
			})
		})

		Convey("When a location request is denied", func() {
			n := geolocate.NewNearMe(geolocate.ProviderFunc(func(context.Context, geolocate.Request) (model.Coordinate, error) {
				return model.Coordinate{}, geolocate.ErrDenied
			}), time.Second)
			out := n.Request(ctx)

			Convey("Then the previous mode is kept", func() {
				So(out.Status, ShouldEqual, geolocate.StatusDenied)
				So(n.State().Enabled, ShouldBeFalse)
				So(n.State().Locating, ShouldBeFalse)
			})
		})

		Convey("When a request fails after near-me mode was already on", func() {
			fail := false
			n := geolocate.NewNearMe(geolocate.ProviderFunc(func(context.Context, geolocate.Request) (model.Coordinate, error) {
				if fail {
					return model.Coordinate{}, geolocate.ErrUnavailable
				}
				return yokohama, nil
			}), time.Second)
			n.Request(ctx)
			fail = true
			n.Request(ctx)

			Convey("Then the earlier origin is kept", func() {
				st := n.State()
				So(st.Enabled, ShouldBeTrue)
				So(*st.Origin, ShouldResemble, yokohama)
			})
		})

		Convey("When near-me is disabled while a request is outstanding", func() {
			started := make(chan struct{})
			release := make(chan struct{})
			n := geolocate.NewNearMe(geolocate.ProviderFunc(func(context.Context, geolocate.Request) (model.Coordinate, error) {
				close(started)
				<-release
				return yokohama, nil
			}), time.Second)

			var wg sync.WaitGroup
			wg.Add(1)
			var out geolocate.Outcome
			go func() {
				defer wg.Done()
				out = n.Request(ctx)
			}()
			<-started
			So(n.State().Locating, ShouldBeTrue)
			n.Disable()
			close(release)
			wg.Wait()

			Convey("Then the late result is not applied", func() {
				So(out.OK(), ShouldBeTrue)
				st := n.State()
				So(st.Enabled, ShouldBeFalse)
				So(st.Locating, ShouldBeFalse)
				So(st.Origin, ShouldBeNil)
			})
		})
	})
}
