// Package pace spaces out requests to the crawled sites and detects when a
// site starts blocking them.
package pace

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxRate is the default request-rate ceiling, in requests per second.
const DefaultMaxRate = 1.0

// Range is an inclusive interval of delays.
type Range struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Seconds builds a Range from whole seconds.
func Seconds(min, max int) Range {
	return Range{Min: time.Duration(min) * time.Second, Max: time.Duration(max) * time.Second}
}

// Validate rejects negative or inverted ranges.
func (r Range) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("negative delay in range %s-%s", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("range min %s exceeds max %s", r.Min, r.Max)
	}
	return nil
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Min, r.Max)
}

// Sleeper waits for a duration or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pacer inserts a random delay before each request, on top of a request-rate
// ceiling.
type Pacer struct {
	limiter *rate.Limiter
	sleeper Sleeper

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Pacer.
type Option func(*Pacer)

// WithMaxRate sets the request-rate ceiling. Zero or less disables it.
func WithMaxRate(perSecond float64) Option {
	return func(p *Pacer) {
		if perSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithSleeper replaces the real timer (for tests).
func WithSleeper(s Sleeper) Option {
	return func(p *Pacer) {
		p.sleeper = s
	}
}

// WithSeed makes the random delays reproducible.
func WithSeed(seed uint64) Option {
	return func(p *Pacer) {
		p.rnd = rand.New(rand.NewPCG(seed, seed))
	}
}

// NewPacer creates a Pacer.
func NewPacer(opts ...Option) *Pacer {
	p := &Pacer{
		limiter: rate.NewLimiter(rate.Limit(DefaultMaxRate), 1),
		sleeper: timerSleeper{},
		rnd:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait takes a rate-limiter token, then sleeps a uniformly random duration
// in r. It returns early with ctx's error when ctx is done.
func (p *Pacer) Wait(ctx context.Context, r Range) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return p.Sleep(ctx, r)
}

// Sleep sleeps a random duration in r without touching the rate limiter.
func (p *Pacer) Sleep(ctx context.Context, r Range) error {
	return p.sleeper.Sleep(ctx, p.Pick(r))
}

// Pick draws a duration uniformly from r.
func (p *Pacer) Pick(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return r.Min + time.Duration(p.rnd.Int64N(int64(r.Max-r.Min)+1))
}
