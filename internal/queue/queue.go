// Package queue runs deferred tasks one at a time while capping how many
// are issued within a rolling time window.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultRateLimit       = 30
	DefaultRateLimitWindow = 60 * time.Second
)

type Config struct {
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

func (c Config) withDefaults() Config {
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = DefaultRateLimitWindow
	}
	return c
}

// Task is a zero-argument unit of work.
type Task[T any] func(ctx context.Context) (T, error)

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
)

type Outcome[T any] struct {
	Status OutcomeStatus `json:"status"`
	Result T             `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Window is a snapshot of the rate-limit state.
type Window struct {
	RequestCount    int           `json:"requestCount"`
	WindowStart     time.Time     `json:"windowStart"`
	RateLimit       int           `json:"rateLimit"`
	RateLimitWindow time.Duration `json:"rateLimitWindow"`
}

type Option func(*options)

type options struct {
	clock Clock
	log   *zerolog.Logger
}

func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}

type Queue[T any] struct {
	cfg   Config
	clock Clock
	log   *zerolog.Logger

	mu     sync.Mutex
	tasks  []Task[T]
	issued []time.Time // issue times inside the current window, oldest first
}

func New[T any](cfg Config, opts ...Option) *Queue[T] {
	o := options{clock: RealClock}
	for _, opt := range opts {
		opt(&o)
	}
	return &Queue[T]{
		cfg:   cfg.withDefaults(),
		clock: o.clock,
		log:   o.log,
	}
}

// Add enqueues a task. Tasks run in the order they were added.
func (q *Queue[T]) Add(task Task[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *Queue[T]) Window() Window {
	q.mu.Lock()
	defer q.mu.Unlock()
	w := Window{
		RequestCount:    len(q.issued),
		RateLimit:       q.cfg.RateLimit,
		RateLimitWindow: q.cfg.RateLimitWindow,
	}
	if len(q.issued) > 0 {
		w.WindowStart = q.issued[0]
	}
	return w
}

// Process drains the queue and returns one outcome per task, in the order
// the tasks were added. A failing task does not stop the ones after it. If
// ctx ends while waiting for the window, every remaining task is recorded
// as an error.
func (q *Queue[T]) Process(ctx context.Context) []Outcome[T] {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	log := q.logger(ctx)
	outcomes := make([]Outcome[T], 0, len(tasks))
	for i, task := range tasks {
		if err := q.acquire(ctx); err != nil {
			log.Warn().Err(err).Int("remaining", len(tasks)-i).Msg("queue aborted while waiting for rate limit window")
			for range tasks[i:] {
				outcomes = append(outcomes, Outcome[T]{Status: OutcomeError, Error: err.Error()})
			}
			break
		}
		outcomes = append(outcomes, q.run(ctx, task))
	}
	return outcomes
}

// acquire blocks until one more task may be issued, then records the issue.
func (q *Queue[T]) acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		q.mu.Lock()
		now := q.clock.Now()
		q.evict(now)
		if len(q.issued) < q.cfg.RateLimit {
			q.issued = append(q.issued, now)
			q.mu.Unlock()
			return nil
		}
		wait := q.issued[0].Add(q.cfg.RateLimitWindow).Sub(now)
		q.mu.Unlock()

		q.logger(ctx).Debug().
			Int("request_count", q.cfg.RateLimit).
			Dur("wait", wait).
			Msg("rate limit reached, waiting for window")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.clock.After(wait):
		}
	}
}

func (q *Queue[T]) evict(now time.Time) {
	n := 0
	for n < len(q.issued) && now.Sub(q.issued[n]) >= q.cfg.RateLimitWindow {
		n++
	}
	q.issued = q.issued[n:]
}

func (q *Queue[T]) run(ctx context.Context, task Task[T]) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome[T]{Status: OutcomeError, Error: fmt.Sprint(r)}
		}
	}()
	res, err := task(ctx)
	if err != nil {
		return Outcome[T]{Status: OutcomeError, Error: err.Error()}
	}
	return Outcome[T]{Status: OutcomeSuccess, Result: res}
}

func (q *Queue[T]) logger(ctx context.Context) *zerolog.Logger {
	if q.log != nil {
		return q.log
	}
	return zerolog.Ctx(ctx)
}
