package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/fbradar/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should be empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording player names", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the name is new", func() {
				seen := d.SeenAndRecord(ctx, "Vitinha")

				Convey("Then it should return false and record the name", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the name was already seen", func() {
				d.SeenAndRecord(ctx, "Vitinha")
				seen := d.SeenAndRecord(ctx, " Vitinha ")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And names differ only by case", func() {
				d.SeenAndRecord(ctx, "Verratti")

				Convey("Then they are distinct by default", func() {
					So(d.SeenAndRecord(ctx, "verratti"), ShouldBeFalse)
				})
			})
		})

		Convey("When case folding is enabled", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithCaseFold())
			d.SeenAndRecord(ctx, "Verratti")

			Convey("Then names differing by case collide", func() {
				So(d.SeenAndRecord(ctx, "VERRATTI"), ShouldBeTrue)
			})
		})

		Convey("When recording concurrently", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, fmt.Sprintf("player-%d", i%10)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			Convey("Then each key is new exactly once", func() {
				So(fresh, ShouldEqual, 10)
				So(d.Size(), ShouldEqual, 10)
			})
		})
	})
}
