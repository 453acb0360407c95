package covdata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status reports combine progress for one data file.
type Status uint8

const (
	StatusQueued Status = iota + 1
	StatusReading
	StatusMerged
	StatusError
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusReading:
		return "reading"
	case StatusMerged:
		return "merged"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ProgressEvent describes the state of one data file during a combine.
type ProgressEvent struct {
	Path   string
	Status Status
	Err    error
}

// Combine merges base (if present) and every suffixed sibling of base into
// one LineSet. Files are read in parallel with at most jobs workers
// (jobs <= 0 means GOMAXPROCS); merging is serialized. When remove is set,
// each suffixed file is deleted after a successful merge, as parallel data
// files are one-shot contributions. progress, if non-nil, is called for
// every per-file state change; calls may arrive from worker goroutines.
func Combine(ctx context.Context, base string, jobs int, remove bool, progress func(ProgressEvent)) (*LineSet, error) {
	notify := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	files, err := ListSuffixed(base)
	if err != nil {
		return nil, err
	}

	combined := NewLineSet()
	if existing, err := ReadFile(base); err == nil {
		combined.Merge(existing)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	for _, path := range files {
		notify(ProgressEvent{Path: path, Status: StatusQueued})
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(files), 1)))
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notify(ProgressEvent{Path: path, Status: StatusReading})
			set, err := ReadFile(path)
			if err != nil {
				notify(ProgressEvent{Path: path, Status: StatusError, Err: err})
				return fmt.Errorf("combine %s: %w", path, err)
			}
			mu.Lock()
			combined.Merge(set)
			mu.Unlock()
			if remove {
				if err := os.Remove(path); err != nil {
					notify(ProgressEvent{Path: path, Status: StatusError, Err: err})
					return fmt.Errorf("combine %s: %w", path, err)
				}
			}
			notify(ProgressEvent{Path: path, Status: StatusMerged})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return combined, nil
}
