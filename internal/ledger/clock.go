package ledger

import (
	"sync"
	"time"
)

// Clock supplies wall-clock time in unix seconds and a monotonically
// non-decreasing block height counter.
type Clock interface {
	Now() uint64
	Height() uint64
}

// SystemClock derives time from the host clock and height from elapsed
// seconds since a fixed genesis instant.
type SystemClock struct {
	Genesis time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{Genesis: time.Now().UTC()}
}

func (c *SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

func (c *SystemClock) Height() uint64 {
	elapsed := time.Since(c.Genesis)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / time.Second)
}

// FakeClock is a settable clock for tests and replays.
type FakeClock struct {
	mu     sync.Mutex
	now    uint64
	height uint64
}

func NewFakeClock(now, height uint64) *FakeClock {
	return &FakeClock{now: now, height: height}
}

func (c *FakeClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Advance moves time forward by secs and height by blocks.
func (c *FakeClock) Advance(secs, blocks uint64) {
	c.mu.Lock()
	c.now += secs
	c.height += blocks
	c.mu.Unlock()
}

// Set pins time and height to absolute values.
func (c *FakeClock) Set(now, height uint64) {
	c.mu.Lock()
	c.now = now
	c.height = height
	c.mu.Unlock()
}
