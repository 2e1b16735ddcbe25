package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/fbradar/internal/adapters/fetch"
	"github.com/okian/fbradar/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient_Get(t *testing.T) {
	Convey("Given a stats server", t, func() {
		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			switch r.URL.Path {
			case "/ok":
				_, _ = w.Write([]byte("<html><table id=\"t\"></table></html>"))
			case "/big":
				_, _ = w.Write([]byte(strings.Repeat("x", 64)))
			case "/edge":
				_, _ = w.Write([]byte(strings.Repeat("y", 48)))
			case "/slow":
				time.Sleep(200 * time.Millisecond)
			default:
				http.Error(w, "gone", http.StatusNotFound)
			}
		}))
		defer srv.Close()

		c := fetch.NewClient(
			fetch.WithRateLimit(1000, 10),
			fetch.WithUserAgent("fbradar-test"),
			fetch.WithMaxBodyBytes(48),
			fetch.WithTimeout(time.Second),
		)
		ctx := context.Background()

		Convey("When the page exists", func() {
			page, err := c.Get(ctx, srv.URL+"/ok")

			Convey("Then the body is returned", func() {
				So(err, ShouldBeNil)
				So(page.OK(), ShouldBeTrue)
				So(string(page.Body), ShouldContainSubstring, "table")
				So(gotUA, ShouldEqual, "fbradar-test")
			})
		})

		Convey("When the server answers 404", func() {
			page, err := c.Get(ctx, srv.URL+"/missing")

			Convey("Then the status is reported without an error", func() {
				So(err, ShouldBeNil)
				So(page.OK(), ShouldBeFalse)
				So(page.Status, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the body is over the limit", func() {
			_, err := c.Get(ctx, srv.URL+"/big")

			Convey("Then the fetch fails", func() {
				So(errors.Is(err, fetch.ErrBodyTooLarge), ShouldBeTrue)
				So(errors.Is(err, model.ErrFetch), ShouldBeTrue)
			})
		})

		Convey("When the body is exactly at the limit", func() {
			page, err := c.Get(ctx, srv.URL+"/edge")

			Convey("Then the whole body is kept", func() {
				So(err, ShouldBeNil)
				So(len(page.Body), ShouldEqual, 48)
			})
		})

		Convey("When the context expires first", func() {
			short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			_, err := c.Get(short, srv.URL+"/slow")

			Convey("Then a fetch error is returned", func() {
				So(errors.Is(err, model.ErrFetch), ShouldBeTrue)
			})
		})
	})
}
