package tracer

import "errors"

// tagChunk is the fixed growth increment for the depth stack. The backing
// array grows one chunk at a time and never shrinks, so deep recursion does
// not cause reallocation churn on every call boundary.
const tagChunk = 100

// ErrDepthLimit is returned when a call event would push the depth stack
// past its configured limit. The event is aborted with the stack unchanged.
var ErrDepthLimit = errors.New("tracer: call depth limit exceeded")

// tagStack tracks, for each live call frame, the tag its lines are recorded
// under (NoTag for untraced frames). depth indexes the innermost frame and
// is -1 when no frame is tracked.
type tagStack struct {
	tags  []Tag
	depth int
	limit int // maximum tracked depth, 0 = unlimited
}

func newTagStack(limit int) *tagStack {
	return &tagStack{
		tags:  make([]Tag, tagChunk),
		depth: -1,
		limit: limit,
	}
}

// ensure makes room for one more frame, so the subsequent push cannot fail
// mid-event. It is the only fallible part of a call transition.
func (s *tagStack) ensure() error {
	next := s.depth + 1
	if s.limit > 0 && next >= s.limit {
		return ErrDepthLimit
	}
	if next >= len(s.tags) {
		bigger := make([]Tag, len(s.tags)+tagChunk)
		copy(bigger, s.tags)
		s.tags = bigger
	}
	return nil
}

// push records tag for the newly entered frame. ensure must have succeeded
// for the same event.
func (s *tagStack) push(tag Tag) {
	s.depth++
	s.tags[s.depth] = tag
}

// pop releases the innermost frame. Popping with no tracked frame is a
// benign no-op: a trace started mid-stack sees returns for calls it never
// observed.
func (s *tagStack) pop() {
	if s.depth < 0 {
		return
	}
	s.tags[s.depth] = NoTag
	s.depth--
}

// current returns the tag in effect for the innermost frame. ok is false
// when no frame is tracked or the frame is untraced.
func (s *tagStack) current() (Tag, bool) {
	if s.depth < 0 {
		return NoTag, false
	}
	tag := s.tags[s.depth]
	return tag, tag != NoTag
}

// size returns the number of tracked frames.
func (s *tagStack) size() int {
	return s.depth + 1
}

// drain releases every tracked frame, innermost first.
func (s *tagStack) drain() {
	for s.depth >= 0 {
		s.pop()
	}
}
