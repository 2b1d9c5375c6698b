package maintain

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/tiercache/cache"
	"github.com/jonwraymond/tiercache/observe"
)

// Config configures the sweeper.
type Config struct {
	// Interval between sweeps.
	// Default: 1 minute
	Interval time.Duration

	// Logger receives sweep logs. nil disables logging.
	Logger observe.Logger
}

// Sweeper periodically evicts expired entries and re-enforces the
// cache's budgets. Each sweep is a stop-the-world pass on the cache;
// running it here keeps that cost off the request path.
type Sweeper struct {
	cache    *cache.Cache
	interval time.Duration
	log      observe.Logger

	group singleflight.Group // collapses overlapping sweeps

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
}

// New creates a sweeper for c.
func New(c *cache.Cache, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	log := cfg.Logger
	if log == nil {
		log = observe.NewNopLogger()
	}
	return &Sweeper{
		cache:    c,
		interval: cfg.Interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop. It returns immediately;
// the loop runs until Stop is called or ctx is cancelled. Start is
// idempotent, and a sweeper that was stopped stays stopped.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

// Stop halts the sweep loop and waits for an in-progress sweep to
// finish. Stop is idempotent; before Start it marks the sweeper
// stopped without starting anything.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	running := s.started && !s.stopped
	s.stopped = true
	s.mu.Unlock()

	if !running {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepNow(ctx); err != nil {
				s.log.Error(ctx, "sweep failed", observe.F("error", err.Error()))
			}
		}
	}
}

// SweepNow runs one maintenance pass: expired entries are evicted,
// then both budgets re-enforced. Concurrent calls collapse to a
// single run and share its result.
func (s *Sweeper) SweepNow(ctx context.Context) error {
	_, err, _ := s.group.Do("sweep", func() (any, error) {
		start := time.Now()
		removed := s.cache.EvictExpired(ctx)
		err := s.cache.EnforceBudgets(ctx)

		s.log.Debug(ctx, "sweep complete",
			observe.F("expired", removed),
			observe.F("duration", time.Since(start).String()),
		)
		return nil, err
	})
	return err
}
