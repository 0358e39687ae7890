package sync

import (
	"context"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds configuration for the periodic sync driver.
type SchedulerConfig struct {
	// Interval is how often a push/pull cycle runs. Default: 10 seconds.
	Interval time.Duration

	// CycleTimeout bounds a single cycle. Default: 2 minutes.
	CycleTimeout time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     10 * time.Second,
		CycleTimeout: 2 * time.Minute,
	}
}

// Scheduler drives the sync engine on a fixed interval. After every cycle
// it invokes the refresh hook so derived data (snapshot, low-stock alerts)
// stays consistent with whatever the pull brought in. Overlap is handled
// by the engine itself, which skips a cycle while one is in flight.
type Scheduler struct {
	engine  *Engine
	after   func(context.Context)
	config  SchedulerConfig
	ticker  *time.Ticker
	stopCh  chan struct{}
	running bool
	mu      sync.Mutex
}

// NewScheduler creates a periodic sync driver. after may be nil.
func NewScheduler(engine *Engine, after func(context.Context), config SchedulerConfig) *Scheduler {
	if config.Interval == 0 {
		config.Interval = 10 * time.Second
	}
	if config.CycleTimeout == 0 {
		config.CycleTimeout = 2 * time.Minute
	}

	return &Scheduler{
		engine: engine,
		after:  after,
		config: config,
	}
}

// Start begins the periodic cycles. A stopped scheduler can be started
// again: each Start gets a fresh ticker and stop channel so the previous
// run loop cannot consume them.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.stopCh = make(chan struct{})
	ticker, stopCh := s.ticker, s.stopCh
	s.mu.Unlock()

	log.Printf("[SyncScheduler] Started - Interval: %v", s.config.Interval)

	go s.run(ticker, stopCh)
}

func (s *Scheduler) run(ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-ticker.C:
			s.runCycle()
		case <-stopCh:
			log.Printf("[SyncScheduler] Stopped")
			return
		}
	}
}

func (s *Scheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.CycleTimeout)
	defer cancel()

	if err := s.engine.RunCycle(ctx); err != nil {
		log.Printf("[SyncScheduler] Cycle error: %v", err)
	}

	if s.after != nil {
		s.after(ctx)
	}
}

// RunNow triggers an immediate cycle, e.g. on a reconnect event or an
// explicit sync request from the UI. The cycle runs off the caller's
// goroutine; callers observe the outcome through the status broker.
func (s *Scheduler) RunNow() {
	go s.runCycle()
}

// Stop halts the periodic cycles. Calling Stop on a stopped scheduler is
// a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.ticker.Stop()
	close(s.stopCh)
}
