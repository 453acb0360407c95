// Package collector manages the lifecycle of coverage measurements.
//
// A Collector owns everything one measurement needs: the scope predicate,
// the accumulating line set, and the tracer wired between them. Collectors
// nest: starting one while another is running pauses the outer measurement
// until the inner one stops. That mirrors how measured programs launch
// measured subprocesses or test fixtures that measure themselves.
package collector

import (
	"fmt"
	"sync"

	"covtrace/internal/covdata"
	"covtrace/internal/tracer"
)

// The stack of running collectors. The top one is collecting; the rest are
// paused and resume in LIFO order.
var (
	mu      sync.Mutex
	running []*Collector
)

// Collector is one coverage measurement over one host runtime.
type Collector struct {
	host tracer.Host
	pred tracer.Predicate
	opts []tracer.Option
	data *covdata.LineSet
	tr   *tracer.Tracer

	started bool
}

// New creates a Collector measuring host with the given predicate. opts are
// passed through to the underlying tracer.
func New(host tracer.Host, pred tracer.Predicate, opts ...tracer.Option) (*Collector, error) {
	if host == nil {
		return nil, fmt.Errorf("collector: nil host")
	}
	if pred == nil {
		return nil, fmt.Errorf("collector: nil predicate")
	}
	return &Collector{
		host: host,
		pred: pred,
		opts: opts,
		data: covdata.NewLineSet(),
	}, nil
}

// Data returns the accumulated line set. Read it only while the collector
// is stopped; the tracer writes into it unsynchronized.
func (c *Collector) Data() *covdata.LineSet {
	return c.data
}

// Start begins collecting. A collector already running on the same host is
// paused and resumes when this one stops.
func (c *Collector) Start() error {
	mu.Lock()
	defer mu.Unlock()

	if c.started {
		return fmt.Errorf("collector: already started")
	}
	if c.tr == nil {
		tr, err := tracer.New(c.pred, c.data, c.opts...)
		if err != nil {
			return err
		}
		c.tr = tr
	}

	if len(running) > 0 {
		running[len(running)-1].tr.Stop()
	}
	if err := c.tr.Start(c.host); err != nil {
		// Put the paused collector back before reporting.
		if len(running) > 0 {
			top := running[len(running)-1]
			_ = top.tr.Start(top.host)
		}
		return err
	}
	running = append(running, c)
	c.started = true
	return nil
}

// Stop ends collecting. Only the innermost running collector may stop; the
// one it paused resumes.
func (c *Collector) Stop() error {
	mu.Lock()
	defer mu.Unlock()

	if !c.started {
		return fmt.Errorf("collector: not started")
	}
	if running[len(running)-1] != c {
		return fmt.Errorf("collector: stopped out of order")
	}

	c.tr.Stop()
	running = running[:len(running)-1]
	c.started = false

	if len(running) > 0 {
		top := running[len(running)-1]
		if err := top.tr.Start(top.host); err != nil {
			return fmt.Errorf("collector: resuming outer measurement: %w", err)
		}
	}
	return nil
}

// Reset clears collected data and forgets cached trace decisions, preparing
// the collector for a fresh measurement. The collector must be stopped.
func (c *Collector) Reset() error {
	mu.Lock()
	defer mu.Unlock()

	if c.started {
		return fmt.Errorf("collector: reset while started")
	}
	c.data.Erase()
	if c.tr != nil {
		c.tr.Close()
		c.tr = nil
	}
	return nil
}

// Close stops the collector if it is running and releases tracer state.
// The accumulated data stays readable.
func (c *Collector) Close() {
	if c.started {
		_ = c.Stop()
	}
	mu.Lock()
	defer mu.Unlock()
	if c.tr != nil {
		c.tr.Close()
		c.tr = nil
	}
}
