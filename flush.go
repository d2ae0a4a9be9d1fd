package props

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-props/pkg/activity"
)

// FlushFunc writes one dirty entry somewhere durable.
type FlushFunc[K comparable, V Holder] func(ctx context.Context, key K, value V) error

// Flush runs a persistence pass: fn is called for every dirty entry, and each
// entry it writes successfully gets a fresh baseline and loses its forced
// mark. Entries whose write fails stay dirty and their errors are joined.
// Cancelling ctx stops the pass before the next write.
//
// The baseline recorded for a written entry is the state observed before fn
// ran, so changes made by fn itself still show up as dirty afterwards. fn may
// Remove or Put entries: removed entries are not written, and an entry that
// was replaced or cleaned during the pass keeps its newer baseline.
func (m *DirtyMap[K, V]) Flush(ctx context.Context, fn FlushFunc[K, V]) (int, error) {
	if fn == nil {
		return 0, ErrFlushFuncRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	entries, err := m.scan(false)
	if err != nil {
		m.log(TrackerLogEvent{Op: OpFlush, Entries: len(m.values), Duration: time.Since(start), Err: err})
		return 0, err
	}

	var (
		errs    []error
		flushed int
		skipped int
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		// an earlier write may have removed or replaced this entry
		if !m.tracks(entry) {
			skipped++
			continue
		}
		if err := fn(ctx, entry.key, m.values[entry.key]); err != nil {
			errs = append(errs, fmt.Errorf("props: flush key %v: %w", entry.key, err))
			continue
		}
		flushed++
		if m.tracks(entry) {
			m.baselines[entry.key] = &baseline{snapshot: entry.current}
		}
	}

	err = errors.Join(errs...)
	m.log(TrackerLogEvent{Op: OpFlush, Entries: len(m.values), Dirty: len(entries), Duration: time.Since(start), Err: err})
	if flushed > 0 {
		m.emit(activity.BuildFlushedEvent(activity.TrackerEventInput{
			CheckpointID: m.last.ID,
			Flushed:      flushed,
			Failed:       len(entries) - flushed - skipped,
			OccurredAt:   m.cfg.clock(),
		}))
	}
	return flushed, err
}

// tracks reports whether entry still describes the live baseline for its
// key. Put, Remove and Clean all swap the baseline pointer.
func (m *DirtyMap[K, V]) tracks(entry dirtyEntry[K]) bool {
	b, ok := m.baselines[entry.key]
	return ok && b == entry.baseline
}
