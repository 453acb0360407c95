// Package tracer implements the event-driven core of the coverage
// collector.
//
// A host runtime (an interpreter or VM with a trace slot) delivers one
// event per call, executed line, return, and propagating exception. The
// tracer keeps a per-call-depth record of which trace tag, if any, is in
// effect, and writes (tag, line) pairs into a caller-supplied sink for
// every line executed in a traced frame.
//
// This code runs once per evaluated statement of the host program, so the
// hot path is a switch, a slice index, and a map lookup. The decision of
// whether a unit is traced at all is delegated to a caller-supplied
// predicate and memoized per unit identifier.
//
// The tracer assumes serialized event delivery on a single logical control
// flow and does no internal locking.
package tracer

import (
	"fmt"
	"strings"

	"covtrace/internal/covlog"
)

// Option configures a Tracer at construction.
type Option func(*Tracer)

// WithMaxDepth bounds the depth stack at n frames. A call event past the
// bound fails with ErrDepthLimit instead of growing the stack. Zero (the
// default) means unlimited.
func WithMaxDepth(n int) Option {
	return func(t *Tracer) { t.maxDepth = n }
}

// WithReturnlessUnit registers a unit-identifier substring identifying a
// host component known to deliver exception events without the matching
// return. For exceptions raised in such units the tracer synthesizes the
// missing return to keep the depth stack balanced. May be given multiple
// times. Applying this to a well-behaved component corrupts the stack, so
// name only components with the documented bug.
func WithReturnlessUnit(substr string) Option {
	return func(t *Tracer) { t.returnless = append(t.returnless, substr) }
}

// WithLog attaches a bookkeeping log. Defaults to covlog.Nop.
func WithLog(log covlog.Log) Option {
	return func(t *Tracer) {
		if log != nil {
			t.log = log
		}
	}
}

// Tracer is one coverage measurement instance. Construct with New, install
// into a host with Start, and release with Close.
type Tracer struct {
	shouldTrace Predicate
	sink        Sink
	cache       *decisionCache
	stack       *tagStack
	returnless  []string
	log         covlog.Log
	maxDepth    int

	host   Host
	active bool
}

// New creates a Tracer recording into sink the lines of units that
// shouldTrace accepts. Both are fixed for the instance's lifetime.
func New(shouldTrace Predicate, sink Sink, opts ...Option) (*Tracer, error) {
	if shouldTrace == nil {
		return nil, fmt.Errorf("tracer: nil predicate")
	}
	if sink == nil {
		return nil, fmt.Errorf("tracer: nil sink")
	}
	t := &Tracer{
		shouldTrace: shouldTrace,
		sink:        sink,
		log:         covlog.Nop,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.cache = newDecisionCache()
	t.stack = newTagStack(t.maxDepth)
	return t, nil
}

// HandleEvent is the single entry point the host runtime invokes for every
// trace event. It runs to completion synchronously. A non-nil error means
// the event was aborted with the depth stack unchanged and that collected
// data is unreliable from this point on.
func (t *Tracer) HandleEvent(ev Event) error {
	if t.log.Enabled(covlog.LevelEvents) {
		t.log.Eventf(ev.Kind.String(), ev.Frame.Unit, ev.Frame.Line)
	}

	switch ev.Kind {
	case KindCall:
		if err := t.enterCall(ev.Frame); err != nil {
			return err
		}
	case KindLine:
		t.recordLine(ev.Frame)
	case KindReturn:
		t.leaveCall(ev.Frame)
	case KindException:
		// Exceptions need no bookkeeping of their own: the host follows
		// them with return events as frames unwind. Except for components
		// registered as returnless, whose missing return is synthesized
		// here. Each occurrence is compensated independently, so a
		// returnless component nesting recursively stays balanced.
		if t.missingReturn(ev.Frame.Unit) {
			if t.log.Enabled(covlog.LevelState) {
				t.log.Statef(t.stack.depth, ev.Frame.Line, ev.Frame.Unit, "returnless exception")
			}
			return t.HandleEvent(Event{Kind: KindReturn, Frame: ev.Frame})
		}
	}
	return nil
}

// enterCall pushes a depth-stack entry for the newly entered frame,
// resolving its tag through the decision cache. On any failure nothing has
// been pushed and nothing cached.
func (t *Tracer) enterCall(f Frame) error {
	if err := t.stack.ensure(); err != nil {
		return err
	}
	tag, ok := t.cache.lookup(f.Unit)
	if !ok {
		var err error
		tag, err = t.shouldTrace(f.Unit, f)
		if err != nil {
			return fmt.Errorf("trace predicate for %q: %w", f.Unit, err)
		}
		t.cache.store(f.Unit, tag)
	}
	t.stack.push(tag)
	if t.log.Enabled(covlog.LevelState) {
		if tag != NoTag {
			t.log.Statef(t.stack.depth, f.Line, f.Unit, "traced")
		} else {
			t.log.Statef(t.stack.depth, f.Line, f.Unit, "skipped")
		}
	}
	return nil
}

// recordLine inserts (tag, line) for the innermost frame, if it is traced.
// With no tracked frame, or an untraced one, the event is ignored.
func (t *Tracer) recordLine(f Frame) {
	tag, ok := t.stack.current()
	if !ok {
		return
	}
	if t.log.Enabled(covlog.LevelState) {
		t.log.Statef(t.stack.depth, f.Line, f.Unit, "line")
	}
	t.sink.Insert(tag, f.Line)
}

// leaveCall pops the innermost frame. Underflow is tolerated (see
// tagStack.pop).
func (t *Tracer) leaveCall(f Frame) {
	if t.log.Enabled(covlog.LevelState) && t.stack.depth >= 0 {
		t.log.Statef(t.stack.depth, f.Line, f.Unit, "return")
	}
	t.stack.pop()
}

// missingReturn reports whether unit belongs to a component registered as
// raising exception events without the matching return. This is the single
// shim point for that workaround: delete it, and WithReturnlessUnit, once
// the offending hosts are fixed.
func (t *Tracer) missingReturn(unit string) bool {
	for _, s := range t.returnless {
		if strings.Contains(unit, s) {
			return true
		}
	}
	return false
}

// Start installs the tracer into the host's trace slot and marks it active.
// The slot must be free: one active tracer per host at a time is the
// caller's precondition.
func (t *Tracer) Start(host Host) error {
	if host == nil {
		return fmt.Errorf("tracer: nil host")
	}
	if t.active {
		return fmt.Errorf("tracer: already started")
	}
	host.SetTraceHook(t.HandleEvent)
	t.host = host
	t.active = true
	return nil
}

// Stop clears the host's trace slot. Idempotent; safe without a matching
// Start. An event already in flight completes normally.
func (t *Tracer) Stop() {
	if !t.active {
		return
	}
	t.host.SetTraceHook(nil)
	t.host = nil
	t.active = false
}

// Close stops the tracer if needed and releases all bookkeeping state:
// every frame still tracked on the depth stack and every cached decision.
// The tracer must not receive events afterwards.
func (t *Tracer) Close() {
	t.Stop()
	t.stack.drain()
	t.cache.reset()
}

// Active reports whether the tracer is installed in a host.
func (t *Tracer) Active() bool {
	return t.active
}

// Depth returns the number of call frames currently tracked.
func (t *Tracer) Depth() int {
	return t.stack.size()
}

// CachedDecisions returns the number of source units with a memoized
// trace decision. Intended for introspection and tests.
func (t *Tracer) CachedDecisions() int {
	return t.cache.size()
}
