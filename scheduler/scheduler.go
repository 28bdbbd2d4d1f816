// Package scheduler decodes batches of lazily compressed items in parallel
// under a soft time budget.
//
// Every pending payload field of every item is one job. Jobs run on a bounded
// worker group; before a job starts the scheduler checks the budget and the
// context, and once either is exhausted the remaining jobs are deferred to the
// next Run instead of blocking. Decoding never performs I/O.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/lodsnap/internal/options"
	"github.com/arloliu/lodsnap/lazy"
)

// DefaultBudget is one frame at 65 frames per second.
const DefaultBudget = time.Second / 65

// Decodable is an item with independently decodable payload fields.
//
// The jobs returned by Pending must be safe to run concurrently with each
// other and with jobs of other items.
type Decodable interface {
	comparable
	Pending() []lazy.Field
}

type config struct {
	workers int
	budget  time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Scheduler.
type Option = options.Option[*config]

// WithWorkers sets the maximum number of jobs running at once. The default is
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		c.workers = n

		return nil
	})
}

// WithBudget sets the soft wall-clock budget of one Run. A zero budget defers
// every job.
func WithBudget(d time.Duration) Option {
	return options.New(func(c *config) error {
		if d < 0 {
			return fmt.Errorf("budget must not be negative, got %s", d)
		}
		c.budget = d

		return nil
	})
}

// WithLogger sets the logger used for decode failures.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithMetrics records job outcomes in m. Several schedulers may share one
// Metrics.
func WithMetrics(m *Metrics) Option {
	return options.NoError(func(c *config) {
		c.metrics = m
	})
}

// Failure is one field that failed to decode.
type Failure[T any] struct {
	Item  T
	Field string
	Err   error
}

func (f Failure[T]) Error() string {
	return fmt.Sprintf("%s: %v", f.Field, f.Err)
}

func (f Failure[T]) Unwrap() error {
	return f.Err
}

// Report summarizes one Run.
type Report[T any] struct {
	// Decoded is the number of fields decoded.
	Decoded int
	// Deferred is the number of fields left for a later Run.
	Deferred int
	// Skipped is the number of items excluded because they failed before.
	Skipped int
	// Completed lists the items that have no pending field left.
	Completed []T
	// Failures lists the fields that failed to decode.
	Failures []Failure[T]
	Elapsed  time.Duration
}

// Done reports whether nothing was deferred.
func (r *Report[T]) Done() bool {
	return r.Deferred == 0
}

// Err joins all failures, or returns nil.
func (r *Report[T]) Err() error {
	errList := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errList[i] = f
	}

	return errors.Join(errList...)
}

// Scheduler decodes batches of items. It is safe for concurrent use, but
// concurrent runs must not share items.
type Scheduler[T Decodable] struct {
	cfg config

	mu     sync.Mutex
	failed map[T]struct{}
}

// New creates a Scheduler.
func New[T Decodable](opts ...Option) (*Scheduler[T], error) {
	cfg := config{
		workers: runtime.GOMAXPROCS(0),
		budget:  DefaultBudget,
		logger:  slog.Default(),
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Scheduler[T]{cfg: cfg, failed: make(map[T]struct{})}, nil
}

// Failed reports whether item failed in an earlier Run and is being skipped.
func (s *Scheduler[T]) Failed(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.failed[item]

	return ok
}

// Forget lets a previously failed item be scheduled again.
func (s *Scheduler[T]) Forget(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.failed, item)
}

type runState[T any] struct {
	mu         sync.Mutex
	report     Report[T]
	unfinished map[int]struct{}
}

func (r *runState[T]) deferred(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report.Deferred++
	r.unfinished[index] = struct{}{}
}

func (r *runState[T]) decoded() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report.Decoded++
}

func (r *runState[T]) failed(index int, f Failure[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.report.Failures = append(r.report.Failures, f)
	r.unfinished[index] = struct{}{}
}

// Run decodes the pending fields of items until they are done, the budget is
// spent or ctx is canceled.
//
// Items that failed in an earlier Run are skipped until Forget is called. A
// canceled context defers the jobs that have not started; it is not an error.
func (s *Scheduler[T]) Run(ctx context.Context, items []T) Report[T] {
	start := time.Now()
	state := &runState[T]{unfinished: make(map[int]struct{})}

	var stopped atomic.Bool
	expired := func() bool {
		if stopped.Load() {
			return true
		}
		if ctx.Err() != nil || time.Since(start) >= s.cfg.budget {
			stopped.Store(true)
			return true
		}

		return false
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.workers)

	scheduled := make([]bool, len(items))
	for i, item := range items {
		if s.Failed(item) {
			state.report.Skipped++
			continue
		}
		scheduled[i] = true

		for _, field := range item.Pending() {
			g.Go(func() error {
				if expired() {
					state.deferred(i)
					return nil
				}

				jobStart := time.Now()
				err := field.Decompress()
				s.observe(time.Since(jobStart))

				if err != nil {
					s.cfg.logger.Error("failed to decode field", "field", field.Name, "error", err)
					state.failed(i, Failure[T]{Item: item, Field: field.Name, Err: err})

					return nil
				}
				state.decoded()

				return nil
			})
		}
	}
	_ = g.Wait()

	report := state.report
	report.Elapsed = time.Since(start)

	for i, item := range items {
		if _, ok := state.unfinished[i]; scheduled[i] && !ok {
			report.Completed = append(report.Completed, item)
		}
	}

	if len(report.Failures) > 0 {
		s.mu.Lock()
		for _, f := range report.Failures {
			s.failed[f.Item] = struct{}{}
		}
		s.mu.Unlock()
	}

	s.record(&report)

	if report.Deferred > 0 {
		s.cfg.logger.Debug("decode budget exhausted",
			"decoded", report.Decoded, "deferred", report.Deferred, "elapsed", report.Elapsed)
	}

	return report
}

func (s *Scheduler[T]) observe(d time.Duration) {
	if s.cfg.metrics != nil {
		s.cfg.metrics.DecodeDuration.Observe(d.Seconds())
	}
}

func (s *Scheduler[T]) record(r *Report[T]) {
	m := s.cfg.metrics
	if m == nil {
		return
	}

	m.Decoded.Add(float64(r.Decoded))
	m.Failed.Add(float64(len(r.Failures)))
	m.Deferred.Add(float64(r.Deferred))
}
