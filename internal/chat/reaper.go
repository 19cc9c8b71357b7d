package chat

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultReapInterval = time.Minute

// Sweeper is in-memory state that can drop its expired entries.
type Sweeper interface {
	Name() string
	Sweep(now time.Time) int
}

// Reaper periodically sweeps the rate limiter and cache so idle users do not
// accumulate. It only touches local maps and never performs I/O.
type Reaper struct {
	interval time.Duration
	sweepers []Sweeper
	log      logrus.FieldLogger
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewReaper creates a reaper; call Start to begin sweeping.
func NewReaper(interval time.Duration, log logrus.FieldLogger, sweepers ...Sweeper) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{
		interval: interval,
		sweepers: sweepers,
		log:      log.WithField("component", "chat_reaper"),
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start launches the background goroutine.
func (r *Reaper) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop signals the background goroutine to exit and waits for it.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
	r.wg.Wait()
}

func (r *Reaper) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick runs one sweep over every sweeper. A panicking sweeper is logged and
// skipped so later sweepers and later ticks still run.
func (r *Reaper) Tick() {
	now := r.now()
	for _, s := range r.sweepers {
		r.sweep(s, now)
	}
}

func (r *Reaper) sweep(s Sweeper, now time.Time) {
	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{"sweeper": s.Name(), "panic": p}).Error("sweep failed")
		}
	}()

	if removed := s.Sweep(now); removed > 0 {
		r.log.WithFields(logrus.Fields{"sweeper": s.Name(), "removed": removed}).Debug("swept expired entries")
	}
}
