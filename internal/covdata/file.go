package covdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"covtrace/internal/tracer"
)

// Current schema version - increment when the payload format changes.
const dataSchemaVersion uint16 = 1

// payload is the on-disk form of a LineSet.
type payload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	// Covered lines keyed by trace tag.
	Lines map[string][]uint32
}

// WriteFile serializes set to path. The write is atomic: data lands in a
// temp file in the same directory and is renamed over path.
func WriteFile(path string, set *LineSet) error {
	p := payload{
		Schema: dataSchemaVersion,
		Lines:  make(map[string][]uint32, len(set.units)),
	}
	for tag := range set.units {
		lines := set.Lines(tag)
		encoded := make([]uint32, len(lines))
		for i, line := range lines {
			v, err := safecast.Conv[uint32](line)
			if err != nil {
				return fmt.Errorf("line number overflow for %q: %w", tag, err)
			}
			encoded[i] = v
		}
		p.Lines[string(tag)] = encoded
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// Leftover temp file means the rename never happened.
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&p); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile deserializes a LineSet from path.
func ReadFile(path string) (*LineSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	dec := msgpack.NewDecoder(f)
	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%s: not a coverage data file: %w", path, err)
	}
	if p.Schema != dataSchemaVersion {
		return nil, fmt.Errorf("%s: data file schema %d, expected %d", path, p.Schema, dataSchemaVersion)
	}

	set := NewLineSet()
	for tag, lines := range p.Lines {
		for _, line := range lines {
			v, err := safecast.Conv[int](line)
			if err != nil {
				return nil, fmt.Errorf("%s: line number overflow for %q: %w", path, tag, err)
			}
			set.Insert(tracer.Tag(tag), v)
		}
	}
	return set, nil
}

// SuffixedPath returns the path of a parallel data file: base plus a
// distinguishing suffix, typically a process id or worker name.
func SuffixedPath(base, suffix string) string {
	return base + "." + suffix
}

// ListSuffixed returns every parallel sibling of base, sorted. base itself
// is not included.
func ListSuffixed(base string) ([]string, error) {
	dir := filepath.Dir(base)
	prefix := filepath.Base(base) + "."
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	// Deterministic merge order.
	sort.Strings(files)
	return files, nil
}

// Erase removes the base data file and every suffixed sibling. A missing
// base file is not an error.
func Erase(base string) error {
	files, err := ListSuffixed(base)
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	if err := os.Remove(base); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
