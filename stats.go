package enet

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/enet-go/enet/proto"
)

// latencyStats maintains min/mean/max round-trip duration for one
// request kind.
type latencyStats struct {
	mu    sync.RWMutex
	name  string
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

func newLatencyStats(name string) *latencyStats {
	return &latencyStats{name: name}
}

func (l *latencyStats) sample(t time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	l.total += t
	if l.min == 0 || l.min > t {
		l.min = t
	}
	if t > l.max {
		l.max = t
	}
}

func (l *latencyStats) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var mean time.Duration
	if l.count > 0 {
		mean = time.Duration(l.total.Nanoseconds() / l.count)
	}
	return fmt.Sprintf("%s: samples=%d min=%v mean=%v max=%v", l.name, l.count, l.min, mean, l.max)
}

// commandStats tracks latencyStats per request kind, keyed by the
// expected response kind the Command Task correlated against.
type commandStats struct {
	mu    sync.Mutex
	stats map[proto.ResponseKind]*latencyStats
}

func newCommandStats() *commandStats {
	return &commandStats{stats: make(map[proto.ResponseKind]*latencyStats)}
}

func (c *commandStats) sample(kind proto.ResponseKind, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.stats[kind]
	if !ok {
		ls = newLatencyStats(string(kind))
		c.stats[kind] = ls
	}
	ls.sample(d)
}

// String reports the min/mean/max round-trip time for every request
// kind seen so far, for human consumption (e.g. a periodic status dump).
func (c *commandStats) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]string, 0, len(c.stats))
	for _, v := range c.stats {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}
