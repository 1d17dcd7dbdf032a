package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/beancount-binance/output"
)

// TimingCollector records a forest of timers, one tree per top-level
// operation. It is safe for concurrent use.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*timerNode
	// running is the innermost timer started through Start that has not
	// ended yet.
	running *timerNode
	now     func() time.Time
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *timerNode
	children []*timerNode
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}

// NewTimingCollector creates an empty TimingCollector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start begins a timer. While another timer started by Start is running, the
// new timer becomes its child; otherwise it starts a new tree.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now(), parent: c.running}
	if c.running == nil {
		c.roots = append(c.roots, node)
	} else {
		c.running.children = append(c.running.children, node)
	}
	c.running = node

	return &timingTimer{collector: c, node: node, tracked: true}
}

// Report writes every tree in the order it was started.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		writeTree(w, root, styles)
	}
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
	// tracked is set for timers started through Start, which move the
	// collector's running timer.
	tracked bool
}

func (t *timingTimer) End() {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	if !t.node.end.IsZero() {
		return
	}
	t.node.end = c.now()

	if t.tracked && c.running == t.node {
		c.running = t.node.parent
	}
}

func (t *timingTimer) Child(name string) Timer {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now(), parent: t.node}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: c, node: node}
}
