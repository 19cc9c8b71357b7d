package chat

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type panicSweeper struct{}

func (panicSweeper) Name() string { return "broken" }

func (panicSweeper) Sweep(time.Time) int { panic("boom") }

type countingSweeper struct{ calls atomic.Int32 }

func (s *countingSweeper) Name() string { return "counting" }
func (s *countingSweeper) Sweep(time.Time) int {
	s.calls.Add(1)
	return 0
}

func TestReaper_TickEvictsExpiredState(t *testing.T) {
	clock := newFakeClock()
	limiter := newTestLimiter(clock)
	cache := newTestCache(clock)
	limiter.Allow("alice")
	cache.Put("alice", "balance", "answer")

	logger, _ := logtest.NewNullLogger()
	r := NewReaper(time.Minute, logger, limiter, cache)
	r.now = clock.Now

	r.Tick()
	assert.Equal(t, 1, limiter.Len())
	assert.Equal(t, 1, cache.Len())

	clock.Advance(5 * time.Minute)
	r.Tick()
	assert.Equal(t, 0, limiter.Len())
	assert.Equal(t, 0, cache.Len())
}

func TestReaper_PanicDoesNotStopOtherSweepers(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	counter := &countingSweeper{}
	r := NewReaper(time.Minute, logger, panicSweeper{}, counter)

	assert.NotPanics(t, r.Tick)
	assert.NotPanics(t, r.Tick)
	assert.Equal(t, int32(2), counter.calls.Load())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestReaper_RunsOnIntervalUntilStopped(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	counter := &countingSweeper{}
	r := NewReaper(5*time.Millisecond, logger, counter)

	r.Start()
	assert.Eventually(t, func() bool { return counter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	r.Stop()
	r.Stop() // idempotent

	after := counter.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, counter.calls.Load())
}
