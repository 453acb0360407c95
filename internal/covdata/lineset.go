// Package covdata holds collected coverage data: the in-memory accumulator
// the tracer writes into, and its on-disk representation.
package covdata

import (
	"sort"

	"covtrace/internal/tracer"
)

// LineSet accumulates covered (tag, line) pairs. Duplicates collapse, order
// is irrelevant. It implements tracer.Sink; insertion is the only operation
// performed on the event hot path.
//
// A LineSet is not synchronized: the host delivers events serially, and
// readers are expected to look only after collection stops.
type LineSet struct {
	units map[tracer.Tag]map[int]struct{}
}

// NewLineSet creates an empty LineSet.
func NewLineSet() *LineSet {
	return &LineSet{units: make(map[tracer.Tag]map[int]struct{})}
}

// Insert records that line of the unit tagged tag was executed.
func (s *LineSet) Insert(tag tracer.Tag, line int) {
	lines, ok := s.units[tag]
	if !ok {
		lines = make(map[int]struct{})
		s.units[tag] = lines
	}
	lines[line] = struct{}{}
}

// Has reports whether the (tag, line) pair was recorded.
func (s *LineSet) Has(tag tracer.Tag, line int) bool {
	_, ok := s.units[tag][line]
	return ok
}

// Units returns every recorded tag, sorted.
func (s *LineSet) Units() []tracer.Tag {
	units := make([]tracer.Tag, 0, len(s.units))
	for tag := range s.units {
		units = append(units, tag)
	}
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })
	return units
}

// Lines returns the recorded lines for tag, sorted ascending.
func (s *LineSet) Lines(tag tracer.Tag) []int {
	set := s.units[tag]
	lines := make([]int, 0, len(set))
	for line := range set {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// LineCounts returns the number of recorded lines per tag.
func (s *LineSet) LineCounts() map[tracer.Tag]int {
	counts := make(map[tracer.Tag]int, len(s.units))
	for tag, lines := range s.units {
		counts[tag] = len(lines)
	}
	return counts
}

// Merge adds every pair of other into s.
func (s *LineSet) Merge(other *LineSet) {
	if other == nil {
		return
	}
	for tag, lines := range other.units {
		for line := range lines {
			s.Insert(tag, line)
		}
	}
}

// Empty reports whether no pair has been recorded.
func (s *LineSet) Empty() bool {
	return len(s.units) == 0
}

// Erase drops all recorded pairs, keeping the LineSet usable.
func (s *LineSet) Erase() {
	s.units = make(map[tracer.Tag]map[int]struct{})
}
