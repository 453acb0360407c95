package tracer

import "testing"

func TestTagStackGrowsByChunks(t *testing.T) {
	s := newTagStack(0)
	const frames = tagChunk*2 + 50

	for i := 0; i < frames; i++ {
		if err := s.ensure(); err != nil {
			t.Fatalf("ensure at depth %d: %v", i, err)
		}
		s.push(Tag("t"))
	}
	if got := s.size(); got != frames {
		t.Fatalf("size = %d, want %d", got, frames)
	}
	if got := len(s.tags); got != tagChunk*3 {
		t.Fatalf("capacity = %d, want %d (fixed-chunk growth)", got, tagChunk*3)
	}

	for i := 0; i < frames; i++ {
		s.pop()
	}
	if got := s.size(); got != 0 {
		t.Fatalf("size after draining pops = %d, want 0", got)
	}
	// Backing storage never shrinks.
	if got := len(s.tags); got != tagChunk*3 {
		t.Fatalf("capacity shrank to %d", got)
	}
}

func TestTagStackPopUnderflow(t *testing.T) {
	s := newTagStack(0)
	s.pop()
	s.pop()
	if got := s.size(); got != 0 {
		t.Fatalf("size after underflow = %d, want 0", got)
	}
	if _, ok := s.current(); ok {
		t.Fatalf("current reported a frame on an empty stack")
	}
}

func TestTagStackCurrent(t *testing.T) {
	s := newTagStack(0)
	if err := s.ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	s.push(NoTag)
	if _, ok := s.current(); ok {
		t.Fatalf("untraced frame reported as traced")
	}
	if err := s.ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	s.push(Tag("x"))
	tag, ok := s.current()
	if !ok || tag != Tag("x") {
		t.Fatalf("current = (%q, %v), want (x, true)", tag, ok)
	}
	s.pop()
	if _, ok := s.current(); ok {
		t.Fatalf("current did not fall back to the untraced frame")
	}
}

func TestTagStackLimit(t *testing.T) {
	s := newTagStack(2)
	for i := 0; i < 2; i++ {
		if err := s.ensure(); err != nil {
			t.Fatalf("ensure at depth %d: %v", i, err)
		}
		s.push(Tag("t"))
	}
	if err := s.ensure(); err != ErrDepthLimit {
		t.Fatalf("ensure past limit = %v, want ErrDepthLimit", err)
	}
	if got := s.size(); got != 2 {
		t.Fatalf("size after rejected ensure = %d, want 2", got)
	}
}

func TestTagStackDrain(t *testing.T) {
	s := newTagStack(0)
	for i := 0; i < 5; i++ {
		if err := s.ensure(); err != nil {
			t.Fatalf("ensure: %v", err)
		}
		s.push(Tag("t"))
	}
	s.drain()
	if got := s.size(); got != 0 {
		t.Fatalf("size after drain = %d, want 0", got)
	}
	for i := range s.tags {
		if s.tags[i] != NoTag {
			t.Fatalf("slot %d still holds %q after drain", i, s.tags[i])
		}
	}
}
