package covdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"covtrace/internal/tracer"
)

func TestDataFileRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".covtrace")

	set := NewLineSet()
	set.Insert("src/a", 1)
	set.Insert("src/a", 12)
	set.Insert("src/b", 40)

	if err := WriteFile(path, set); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(got.Lines("src/a"), []int{1, 12}) {
		t.Fatalf("Lines(src/a) = %v", got.Lines("src/a"))
	}
	if !got.Has("src/b", 40) {
		t.Fatalf("pair (src/b, 40) lost on roundtrip")
	}
}

func TestReadFileRejectsWrongSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".covtrace")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stale := payload{Schema: dataSchemaVersion + 1}
	if err := msgpack.NewEncoder(f).Encode(&stale); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestListSuffixed(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".covtrace")

	empty := NewLineSet()
	for _, path := range []string{base, SuffixedPath(base, "73"), SuffixedPath(base, "12")} {
		if err := WriteFile(path, empty); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
	}
	// An unrelated file must not be picked up.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := ListSuffixed(base)
	if err != nil {
		t.Fatalf("ListSuffixed: %v", err)
	}
	want := []string{SuffixedPath(base, "12"), SuffixedPath(base, "73")}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("ListSuffixed = %v, want %v", files, want)
	}
}

func TestCombineMergesAndRemoves(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".covtrace")

	baseSet := NewLineSet()
	baseSet.Insert("src/a", 1)
	if err := WriteFile(base, baseSet); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	worker1 := NewLineSet()
	worker1.Insert("src/a", 2)
	worker2 := NewLineSet()
	worker2.Insert("src/b", 7)
	if err := WriteFile(SuffixedPath(base, "w1"), worker1); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(SuffixedPath(base, "w2"), worker2); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var events []ProgressEvent
	ch := make(chan ProgressEvent, 16)
	combined, err := Combine(context.Background(), base, 2, true, func(ev ProgressEvent) {
		ch <- ev
	})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	close(ch)
	for ev := range ch {
		events = append(events, ev)
	}

	for _, pairCheck := range []struct {
		tag  string
		line int
	}{{"src/a", 1}, {"src/a", 2}, {"src/b", 7}} {
		if !combined.Has(tracer.Tag(pairCheck.tag), pairCheck.line) {
			t.Fatalf("combined set missing (%s, %d)", pairCheck.tag, pairCheck.line)
		}
	}

	// Suffixed files are consumed, the base file is kept.
	if _, err := os.Stat(SuffixedPath(base, "w1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("worker file w1 not removed: %v", err)
	}
	if _, err := os.Stat(base); err != nil {
		t.Fatalf("base file removed: %v", err)
	}

	merged := 0
	for _, ev := range events {
		if ev.Status == StatusMerged {
			merged++
		}
	}
	if merged != 2 {
		t.Fatalf("merged events = %d, want 2", merged)
	}
}

func TestCombineWithoutBaseFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".covtrace")

	worker := NewLineSet()
	worker.Insert("src/a", 3)
	if err := WriteFile(SuffixedPath(base, "w1"), worker); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	combined, err := Combine(context.Background(), base, 1, false, nil)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if !combined.Has("src/a", 3) {
		t.Fatalf("combined set missing worker data")
	}
}

func TestErase(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".covtrace")

	empty := NewLineSet()
	if err := WriteFile(base, empty); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(SuffixedPath(base, "w1"), empty); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := Erase(base); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if _, err := os.Stat(base); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("base file survives Erase")
	}
	// Erasing again is fine.
	if err := Erase(base); err != nil {
		t.Fatalf("second Erase: %v", err)
	}
}
