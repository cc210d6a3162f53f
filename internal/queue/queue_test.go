package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	waits  []time.Duration
	onWait func(d time.Duration)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
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

// After advances the fake time by d and fires immediately.
func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	if c.onWait != nil {
		c.onWait(d)
	}
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	c.mu.Unlock()
	return ch
}

func TestProcessContinuesAfterFailure(t *testing.T) {
	q := New[int](Config{}, WithClock(newFakeClock()))
	ran := 0
	q.Add(func(ctx context.Context) (int, error) { ran++; return 1, nil })
	q.Add(func(ctx context.Context) (int, error) { ran++; return 0, errors.New("x") })
	q.Add(func(ctx context.Context) (int, error) { ran++; return 3, nil })

	got := q.Process(context.Background())
	if ran != 3 {
		t.Fatalf("expected all 3 tasks to run, ran %d", ran)
	}
	want := []Outcome[int]{
		{Status: OutcomeSuccess, Result: 1},
		{Status: OutcomeError, Error: "x"},
		{Status: OutcomeSuccess, Result: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d outcomes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("outcome[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("queue should be drained, Len = %d", q.Len())
	}
}

func TestProcessWaitsExactlyAtLimit(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	q := New[int](Config{RateLimit: 2, RateLimitWindow: time.Minute}, WithClock(clock))

	var countsAtWait []int
	clock.onWait = func(time.Duration) {
		countsAtWait = append(countsAtWait, q.Window().RequestCount)
	}

	var issuedAt []time.Duration
	for i := range 5 {
		q.Add(func(ctx context.Context) (int, error) {
			issuedAt = append(issuedAt, clock.Now().Sub(start))
			return i, nil
		})
	}

	outcomes := q.Process(context.Background())
	for i, o := range outcomes {
		if o.Status != OutcomeSuccess || o.Result != i {
			t.Errorf("outcome[%d] = %+v", i, o)
		}
	}

	wantWaits := []time.Duration{time.Minute, time.Minute}
	if len(clock.waits) != len(wantWaits) {
		t.Fatalf("waits = %v, want %v", clock.waits, wantWaits)
	}
	for i := range wantWaits {
		if clock.waits[i] != wantWaits[i] {
			t.Errorf("wait[%d] = %v, want %v", i, clock.waits[i], wantWaits[i])
		}
	}
	for i, c := range countsAtWait {
		if c != 2 {
			t.Errorf("wait %d happened with request count %d, want 2", i, c)
		}
	}

	wantIssued := []time.Duration{0, 0, time.Minute, time.Minute, 2 * time.Minute}
	for i := range wantIssued {
		if issuedAt[i] != wantIssued[i] {
			t.Errorf("task %d issued at %v, want %v", i, issuedAt[i], wantIssued[i])
		}
	}
}

func TestProcessNeverExceedsLimitInAnyWindow(t *testing.T) {
	clock := newFakeClock()
	const limit = 3
	window := time.Minute
	q := New[struct{}](Config{RateLimit: limit, RateLimitWindow: window}, WithClock(clock))

	var issued []time.Time
	for range 20 {
		q.Add(func(ctx context.Context) (struct{}, error) {
			issued = append(issued, clock.Now())
			clock.Advance(7 * time.Second)
			return struct{}{}, nil
		})
	}
	q.Process(context.Background())

	if len(issued) != 20 {
		t.Fatalf("expected 20 issued tasks, got %d", len(issued))
	}
	for i, from := range issued {
		n := 0
		for _, at := range issued[i:] {
			if at.Sub(from) < window {
				n++
			}
		}
		if n > limit {
			t.Fatalf("%d tasks issued within %v starting at task %d", n, window, i)
		}
	}
}

func TestProcessNoWaitOnceWindowElapsed(t *testing.T) {
	clock := newFakeClock()
	q := New[int](Config{RateLimit: 2, RateLimitWindow: time.Minute}, WithClock(clock))
	for range 4 {
		q.Add(func(ctx context.Context) (int, error) {
			clock.Advance(30 * time.Second)
			return 0, nil
		})
	}
	q.Process(context.Background())
	if len(clock.waits) != 0 {
		t.Errorf("expected no waits, got %v", clock.waits)
	}
}

func TestProcessCancelledMarksRemainingAsErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := New[int](Config{RateLimit: 1, RateLimitWindow: time.Hour}, WithClock(newFakeClock()))
	ran := 0
	q.Add(func(ctx context.Context) (int, error) { ran++; cancel(); return 1, nil })
	q.Add(func(ctx context.Context) (int, error) { ran++; return 2, nil })
	q.Add(func(ctx context.Context) (int, error) { ran++; return 3, nil })

	got := q.Process(ctx)
	if ran != 1 {
		t.Fatalf("expected only the first task to run, ran %d", ran)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(got))
	}
	if got[0].Status != OutcomeSuccess {
		t.Errorf("outcome[0] = %+v", got[0])
	}
	for _, o := range got[1:] {
		if o.Status != OutcomeError || o.Error != context.Canceled.Error() {
			t.Errorf("expected cancelled outcome, got %+v", o)
		}
	}
}

func TestProcessRecoversPanics(t *testing.T) {
	q := New[int](Config{}, WithClock(newFakeClock()))
	q.Add(func(ctx context.Context) (int, error) { panic("boom") })
	q.Add(func(ctx context.Context) (int, error) { return 2, nil })

	got := q.Process(context.Background())
	if got[0].Status != OutcomeError || got[0].Error != "boom" {
		t.Errorf("outcome[0] = %+v", got[0])
	}
	if got[1].Status != OutcomeSuccess || got[1].Result != 2 {
		t.Errorf("outcome[1] = %+v", got[1])
	}
}

func TestDefaults(t *testing.T) {
	w := New[int](Config{}).Window()
	if w.RateLimit != DefaultRateLimit || w.RateLimitWindow != DefaultRateLimitWindow {
		t.Errorf("unexpected defaults: %+v", w)
	}
	if w.RequestCount != 0 || !w.WindowStart.IsZero() {
		t.Errorf("fresh queue should have an empty window: %+v", w)
	}
}
