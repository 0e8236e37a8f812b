package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/warpdl/iback/pkg/logger"
	"github.com/warpdl/iback/pkg/speedtest"
)

var (
	// ErrAlreadyRunning is returned by Run when the loop is already running.
	ErrAlreadyRunning = errors.New("scheduler: already running")
	// ErrEmptyResult is reported as a probe error when a prober returns
	// neither a result nor an error.
	ErrEmptyResult = errors.New("scheduler: prober returned no result")
)

// Prober performs one connectivity measurement bounded by timeout.
type Prober interface {
	Probe(ctx context.Context, timeout time.Duration) (*speedtest.Result, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, timeout time.Duration) (*speedtest.Result, error)

func (f ProberFunc) Probe(ctx context.Context, timeout time.Duration) (*speedtest.Result, error) {
	return f(ctx, timeout)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock driving retry countdowns.
func WithClock(c clockwork.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger used for phase transitions.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

type outcome struct {
	result *speedtest.Result
	err    error
}

type subscription struct {
	id int
	fn Listener
}

// Scheduler runs probes and retries them according to Config.
// Create it with New and drive it with Run.
type Scheduler struct {
	cfg    Config
	prober Prober
	clock  clockwork.Clock
	log    logger.Logger

	startChan chan struct{}
	doneChan  chan outcome
	running   atomic.Bool

	mu        sync.Mutex
	listeners []subscription
	nextID    int

	// Owned by the Run goroutine.
	ctx       context.Context
	wg        sync.WaitGroup
	remaining int
	ticker    clockwork.Ticker

	// phase is written by the Run goroutine only.
	phase atomic.Int32
}

// New creates a Scheduler. The configuration is normalized once here and
// never changes afterwards.
func New(cfg Config, prober Prober, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:       cfg.normalize(),
		prober:    prober,
		clock:     clockwork.NewRealClock(),
		log:       logger.NewNopLogger(),
		startChan: make(chan struct{}, 1),
		doneChan:  make(chan outcome, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the normalized configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Phase returns a snapshot of the current phase.
func (s *Scheduler) Phase() Phase {
	return Phase(s.phase.Load())
}

// Start requests a probe. It never blocks. Requests made while a probe is
// in flight are ignored; a request made during a countdown cancels it.
func (s *Scheduler) Start() {
	select {
	case s.startChan <- struct{}{}:
	default:
	}
}

// Subscribe registers l and returns a function removing it again.
func (s *Scheduler) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: l})
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Run is the scheduler loop. It blocks until ctx is done, waits for an
// in-flight probe to return and then returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	s.ctx = ctx
	defer s.stopTicker()
	defer s.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.startChan:
			s.start()
		case o := <-s.doneChan:
			s.finish(o)
		case <-s.tickChan():
			s.tick()
		}
	}
}

func (s *Scheduler) tickChan() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.Chan()
}

func (s *Scheduler) setPhase(p Phase) {
	if old := s.Phase(); old != p {
		s.log.Info("scheduler: %s -> %s", old, p)
	}
	s.phase.Store(int32(p))
}

func (s *Scheduler) start() {
	if s.Phase() == PhaseTesting {
		return
	}
	s.stopTicker()
	s.setPhase(PhaseTesting)
	s.emit(Event{Type: EventTesting})
	s.wg.Add(1)
	go s.probe()
}

func (s *Scheduler) probe() {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.ProbeTimeout)
	defer cancel()
	res, err := s.prober.Probe(ctx, s.cfg.ProbeTimeout)
	s.doneChan <- outcome{result: res, err: err}
}

func (s *Scheduler) finish(o outcome) {
	if o.err == nil && o.result == nil {
		o.err = ErrEmptyResult
	}
	s.setPhase(PhaseIdle)
	if o.err != nil {
		s.log.Warning("scheduler: probe failed: %v", o.err)
		s.emit(Event{Type: EventError, Err: o.err})
		s.retryIfWanted(s.cfg.ErrorRetry)
		return
	}
	res := *o.result
	s.emit(Event{Type: EventResult, Result: &res})
	if s.cfg.Passes(res) {
		s.log.Info("scheduler: thresholds met: %s", res)
		s.emit(Event{Type: EventBack, Result: &res})
		return
	}
	s.log.Warning("scheduler: below thresholds: %s", res)
	s.emit(Event{Type: EventFailure, Result: &res})
	s.retryIfWanted(s.cfg.FailureRetry)
}

func (s *Scheduler) retryIfWanted(d RetryDelay) {
	if s.Phase() == PhaseTesting || s.ticker != nil {
		return
	}
	if d.Disabled {
		s.setPhase(PhaseHalted)
		return
	}
	if d.Seconds <= 0 {
		s.retry()
		return
	}
	s.remaining = d.Seconds
	s.setPhase(PhaseAwaitingRetry)
	s.ticker = s.clock.NewTicker(time.Second)
}

func (s *Scheduler) retry() {
	if s.Phase() == PhaseTesting {
		return
	}
	s.emit(Event{Type: EventRetrying})
	s.start()
}

func (s *Scheduler) tick() {
	if s.Phase() == PhaseTesting || s.remaining == 0 {
		s.stopTicker()
		s.retry()
		return
	}
	s.emit(Event{Type: EventRetryingAfter, SecondsRemaining: s.remaining})
	s.remaining--
}

func (s *Scheduler) stopTicker() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
	s.remaining = 0
}

func (s *Scheduler) emit(ev Event) {
	ev.At = s.clock.Now()
	s.mu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(ev)
	}
}
