package covdata

import (
	"reflect"
	"testing"

	"covtrace/internal/tracer"
)

func TestLineSetInsertIdempotent(t *testing.T) {
	set := NewLineSet()
	set.Insert("C", 5)
	set.Insert("C", 5)
	set.Insert("C", 5)

	if got := set.Lines("C"); !reflect.DeepEqual(got, []int{5}) {
		t.Fatalf("Lines(C) = %v, want [5]", got)
	}
	if got := set.LineCounts()["C"]; got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
}

func TestLineSetSortedViews(t *testing.T) {
	set := NewLineSet()
	set.Insert("b", 9)
	set.Insert("b", 3)
	set.Insert("b", 7)
	set.Insert("a", 1)

	if got := set.Units(); !reflect.DeepEqual(got, []tracer.Tag{"a", "b"}) {
		t.Fatalf("Units = %v", got)
	}
	if got := set.Lines("b"); !reflect.DeepEqual(got, []int{3, 7, 9}) {
		t.Fatalf("Lines(b) = %v", got)
	}
}

func TestLineSetMerge(t *testing.T) {
	a := NewLineSet()
	a.Insert("x", 1)
	a.Insert("x", 2)

	b := NewLineSet()
	b.Insert("x", 2)
	b.Insert("y", 5)

	a.Merge(b)
	a.Merge(nil)

	if got := a.Lines("x"); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("Lines(x) = %v", got)
	}
	if !a.Has("y", 5) {
		t.Fatalf("merged pair (y, 5) missing")
	}
}

func TestLineSetErase(t *testing.T) {
	set := NewLineSet()
	set.Insert("x", 1)
	set.Erase()
	if !set.Empty() {
		t.Fatalf("set not empty after Erase")
	}
	set.Insert("x", 2)
	if !set.Has("x", 2) {
		t.Fatalf("set unusable after Erase")
	}
}
