package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/stylepulse/internal/adapters/session"
	"github.com/okian/stylepulse/internal/domain/catalog"
	"github.com/okian/stylepulse/internal/domain/ledger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func record(c catalog.Category) func(*ledger.Ledger) error {
	return func(l *ledger.Ledger) error {
		l.Record(c)
		return nil
	}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory session store", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
		s := session.NewMemoryStore(
			session.WithMaxSessions(3),
			session.WithTTL(10*time.Minute),
			session.WithClock(clock.Now),
		)

		Convey("When loading an unknown session", func() {
			l, err := s.Load(ctx, "nobody")

			Convey("Then an empty ledger is returned and nothing is created", func() {
				So(err, ShouldBeNil)
				So(l.Empty(), ShouldBeTrue)
				So(s.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When three uploads are recorded for one session", func() {
			for _, c := range []catalog.Category{"casual", "formal", "casual"} {
				So(s.Update(ctx, "a", record(c)), ShouldBeNil)
			}
			l, err := s.Load(ctx, "a")

			Convey("Then the ledger holds the counts", func() {
				So(err, ShouldBeNil)
				So(l.Snapshot(), ShouldResemble, map[catalog.Category]int{"casual": 2, "formal": 1})
			})
		})

		Convey("When sessions are isolated", func() {
			So(s.Update(ctx, "a", record("casual")), ShouldBeNil)
			So(s.Update(ctx, "b", record("party")), ShouldBeNil)

			Convey("Then each sees only its own counts", func() {
				la, _ := s.Load(ctx, "a")
				lb, _ := s.Load(ctx, "b")
				So(la.Snapshot(), ShouldResemble, map[catalog.Category]int{"casual": 1})
				So(lb.Snapshot(), ShouldResemble, map[catalog.Category]int{"party": 1})
			})
		})

		Convey("When the update function fails", func() {
			So(s.Update(ctx, "a", record("casual")), ShouldBeNil)
			boom := errors.New("boom")
			err := s.Update(ctx, "a", func(l *ledger.Ledger) error {
				l.Record("casual")
				return boom
			})

			Convey("Then the error is returned and the ledger is unchanged", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				l, _ := s.Load(ctx, "a")
				So(l.Count("casual"), ShouldEqual, 1)
			})
		})

		Convey("When a caller mutates a loaded ledger", func() {
			So(s.Update(ctx, "a", record("casual")), ShouldBeNil)
			l, _ := s.Load(ctx, "a")
			l.Record("casual")

			Convey("Then the stored ledger is unaffected", func() {
				again, _ := s.Load(ctx, "a")
				So(again.Count("casual"), ShouldEqual, 1)
			})
		})

		Convey("When the store is full", func() {
			for _, id := range []string{"a", "b", "c"} {
				So(s.Update(ctx, id, record("casual")), ShouldBeNil)
				clock.Advance(time.Second)
			}
			_, _ = s.Load(ctx, "a") // touch a, so b is now the oldest
			So(s.Update(ctx, "d", record("formal")), ShouldBeNil)

			Convey("Then the least recently touched session is evicted", func() {
				So(s.Len(ctx), ShouldEqual, 3)
				lb, _ := s.Load(ctx, "b")
				So(lb.Empty(), ShouldBeTrue)
				la, _ := s.Load(ctx, "a")
				So(la.Count("casual"), ShouldEqual, 1)
			})
		})

		Convey("When a session is idle past its TTL", func() {
			So(s.Update(ctx, "a", record("casual")), ShouldBeNil)
			clock.Advance(11 * time.Minute)

			Convey("Then it reads as empty", func() {
				l, err := s.Load(ctx, "a")
				So(err, ShouldBeNil)
				So(l.Empty(), ShouldBeTrue)
				So(s.Len(ctx), ShouldEqual, 0)
			})

			Convey("Then a new upload starts over", func() {
				So(s.Update(ctx, "a", record("formal")), ShouldBeNil)
				l, _ := s.Load(ctx, "a")
				So(l.Snapshot(), ShouldResemble, map[catalog.Category]int{"formal": 1})
			})
		})

		Convey("When sweeping", func() {
			So(s.Update(ctx, "old", record("casual")), ShouldBeNil)
			clock.Advance(8 * time.Minute)
			So(s.Update(ctx, "new", record("casual")), ShouldBeNil)
			clock.Advance(3 * time.Minute)

			Convey("Then only expired sessions are removed", func() {
				So(s.Sweep(ctx), ShouldEqual, 1)
				So(s.Len(ctx), ShouldEqual, 1)
				l, _ := s.Load(ctx, "new")
				So(l.Count("casual"), ShouldEqual, 1)
			})
		})

		Convey("When a session is deleted", func() {
			So(s.Update(ctx, "a", record("casual")), ShouldBeNil)
			So(s.Delete(ctx, "a"), ShouldBeNil)

			Convey("Then it is gone, and deleting again is harmless", func() {
				So(s.Len(ctx), ShouldEqual, 0)
				So(s.Delete(ctx, "a"), ShouldBeNil)
			})
		})

		Convey("When the id is blank", func() {
			Convey("Then every operation rejects it", func() {
				_, err := s.Load(ctx, " ")
				So(errors.Is(err, session.ErrInvalidID), ShouldBeTrue)
				So(errors.Is(s.Update(ctx, "", record("casual")), session.ErrInvalidID), ShouldBeTrue)
				So(errors.Is(s.Delete(ctx, ""), session.ErrInvalidID), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	Convey("Given an unbounded store shared by concurrent requests", t, func() {
		ctx := context.Background()
		s := session.NewMemoryStore(session.WithMaxSessions(0))

		Convey("When many goroutines record into a few sessions", func() {
			const workers, perWorker = 8, 50
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					id := fmt.Sprintf("s%d", w%2)
					for i := 0; i < perWorker; i++ {
						_ = s.Update(ctx, id, record("casual"))
					}
				}(w)
			}
			wg.Wait()

			Convey("Then no increment is lost", func() {
				l0, _ := s.Load(ctx, "s0")
				l1, _ := s.Load(ctx, "s1")
				So(l0.Total()+l1.Total(), ShouldEqual, workers*perWorker)
				So(s.Len(ctx), ShouldEqual, 2)
			})
		})
	})
}

func TestMemoryStoreUnbounded(t *testing.T) {
	Convey("Given a store without a session bound", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
		s := session.NewMemoryStore(
			session.WithMaxSessions(0),
			session.WithTTL(time.Minute),
			session.WithClock(clock.Now),
		)

		Convey("When many sessions are created", func() {
			for i := 0; i < 25; i++ {
				So(s.Update(ctx, fmt.Sprintf("u%d", i), record("casual")), ShouldBeNil)
			}

			Convey("Then none is evicted", func() {
				So(s.Len(ctx), ShouldEqual, 25)
				l, err := s.Load(ctx, "u0")
				So(err, ShouldBeNil)
				So(l.Count("casual"), ShouldEqual, 1)
			})

			Convey("Then idle sessions still expire through the TTL", func() {
				clock.Advance(2 * time.Minute)
				So(s.Sweep(ctx), ShouldEqual, 25)
				So(s.Len(ctx), ShouldEqual, 0)
			})
		})
	})
}
