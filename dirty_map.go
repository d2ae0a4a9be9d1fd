package props

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/goliatone/go-props/pkg/activity"
	"github.com/google/uuid"
)

// Checkpoint records a completed Clean.
type Checkpoint struct {
	ID      string
	At      time.Time
	Entries int
}

type baseline struct {
	snapshot Snapshot
	forced   bool
}

// DirtyMap is a keyed collection of holders that remembers, per key, the
// snapshot taken at the last checkpoint and reports which entries differ from
// it. Dirty state is recomputed on every query by re-reading the holders;
// nothing is hooked into holder mutation.
//
// An entry is dirty when its current snapshot differs from its baseline or
// when it was marked with SetDirty. Put establishes the baseline, Clean
// resets every baseline.
//
// DirtyMap is not safe for concurrent use. Holders are only read, never
// modified, and may be shared with other code.
type DirtyMap[K comparable, V Holder] struct {
	values    map[K]V
	baselines map[K]*baseline
	cfg       mapConfig
	emitter   *activity.Emitter
	last      Checkpoint
	evaluator Evaluator
}

// NewDirtyMap returns an empty map.
func NewDirtyMap[K comparable, V Holder](opts ...Option) *DirtyMap[K, V] {
	cfg := applyOptions(opts)
	return &DirtyMap[K, V]{
		values:    map[K]V{},
		baselines: map[K]*baseline{},
		cfg:       cfg,
		emitter:   activity.NewEmitter(cfg.hooks, cfg.activity),
	}
}

// DirtyMapFrom copies base into a new map and baselines every entry. The
// caller's map is not retained.
func DirtyMapFrom[K comparable, V Holder](base map[K]V, opts ...Option) (*DirtyMap[K, V], error) {
	m := NewDirtyMap[K, V](opts...)
	for key, value := range base {
		if err := m.Put(key, value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Put inserts or replaces the holder for key and takes its baseline from the
// holder's current state. Replacing clears any forced dirty mark. On error the
// map is left unchanged.
func (m *DirtyMap[K, V]) Put(key K, value V) error {
	start := time.Now()
	var err error
	defer func() {
		m.log(TrackerLogEvent{Op: OpPut, Key: formatKey(key), Duration: time.Since(start), Err: err})
	}()

	if isNilHolder(value) {
		err = fmt.Errorf("%w: key %v", ErrNilHolder, key)
		return err
	}
	var snapshot Snapshot
	snapshot, err = SnapshotOf(value)
	if err != nil {
		return err
	}
	m.values[key] = value
	m.baselines[key] = &baseline{snapshot: snapshot}
	return nil
}

// Get returns the holder stored under key.
func (m *DirtyMap[K, V]) Get(key K) (V, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Contains reports whether key is present.
func (m *DirtyMap[K, V]) Contains(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Remove drops key together with its baseline and forced mark. Removing an
// absent key does nothing.
func (m *DirtyMap[K, V]) Remove(key K) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	delete(m.baselines, key)
	m.log(TrackerLogEvent{Op: OpRemove, Key: formatKey(key)})
}

// Len returns the number of entries.
func (m *DirtyMap[K, V]) Len() int {
	return len(m.values)
}

// Keys returns the keys in no particular order.
func (m *DirtyMap[K, V]) Keys() []K {
	keys := make([]K, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	return keys
}

// All yields every entry in no particular order.
func (m *DirtyMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for key, value := range m.values {
			if !yield(key, value) {
				return
			}
		}
	}
}

// Clean takes a new baseline for every entry and clears every forced mark.
// All snapshots are computed before any baseline is replaced, so a holder
// failure leaves the previous baselines untouched.
func (m *DirtyMap[K, V]) Clean() error {
	start := time.Now()
	next := make(map[K]Snapshot, len(m.values))
	for key, value := range m.values {
		snapshot, err := SnapshotOf(value)
		if err != nil {
			m.log(TrackerLogEvent{Op: OpClean, Key: formatKey(key), Entries: len(m.values), Duration: time.Since(start), Err: err})
			return err
		}
		next[key] = snapshot
	}
	for key, snapshot := range next {
		m.baselines[key] = &baseline{snapshot: snapshot}
	}

	m.last = Checkpoint{ID: uuid.NewString(), At: m.cfg.clock(), Entries: len(next)}
	m.log(TrackerLogEvent{Op: OpClean, Entries: len(next), Duration: time.Since(start)})
	m.emit(activity.BuildCheckpointEvent(activity.TrackerEventInput{
		CheckpointID: m.last.ID,
		Entries:      m.last.Entries,
		OccurredAt:   m.last.At,
	}))
	return nil
}

// LastCheckpoint returns the most recent Clean, if any.
func (m *DirtyMap[K, V]) LastCheckpoint() (Checkpoint, bool) {
	return m.last, m.last.ID != ""
}

// Dirty returns the holders of every dirty entry in no particular order.
// Any holder failure aborts the call and is returned as is.
func (m *DirtyMap[K, V]) Dirty() ([]V, error) {
	keys, err := m.DirtyKeys()
	if err != nil {
		return nil, err
	}
	values := make([]V, len(keys))
	for i, key := range keys {
		values[i] = m.values[key]
	}
	return values, nil
}

// DirtyKeys is Dirty returning keys instead of holders.
func (m *DirtyMap[K, V]) DirtyKeys() ([]K, error) {
	start := time.Now()
	entries, err := m.scan(false)
	if err != nil {
		m.log(TrackerLogEvent{Op: OpDirty, Entries: len(m.values), Duration: time.Since(start), Err: err})
		return nil, err
	}
	keys := make([]K, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.key)
	}
	m.log(TrackerLogEvent{Op: OpDirty, Entries: len(m.values), Dirty: len(keys), Duration: time.Since(start)})
	return keys, nil
}

// IsDirty reports whether key is dirty. An absent key is an error wrapping
// ErrKeyNotFound.
func (m *DirtyMap[K, V]) IsDirty(key K) (bool, error) {
	start := time.Now()
	b, ok := m.baselines[key]
	if !ok {
		err := keyNotFound(key)
		m.log(TrackerLogEvent{Op: OpIsDirty, Key: formatKey(key), Err: err})
		return false, err
	}
	current, err := SnapshotOf(m.values[key])
	if err != nil {
		m.log(TrackerLogEvent{Op: OpIsDirty, Key: formatKey(key), Duration: time.Since(start), Err: err})
		return false, err
	}
	dirty := b.forced || !current.Equal(b.snapshot)
	event := TrackerLogEvent{Op: OpIsDirty, Key: formatKey(key), Duration: time.Since(start)}
	if dirty {
		event.Dirty = 1
	}
	m.log(event)
	return dirty, nil
}

// SetDirty marks key dirty without touching its baseline or value. The mark
// lasts until the next Clean, a successful Flush of the entry, or a Put for
// the same key. An absent key is an error wrapping ErrKeyNotFound.
func (m *DirtyMap[K, V]) SetDirty(key K) error {
	b, ok := m.baselines[key]
	if !ok {
		err := keyNotFound(key)
		m.log(TrackerLogEvent{Op: OpSetDirty, Key: formatKey(key), Err: err})
		return err
	}
	b.forced = true
	m.log(TrackerLogEvent{Op: OpSetDirty, Key: formatKey(key), Dirty: 1})
	m.emit(activity.BuildForcedDirtyEvent(activity.TrackerEventInput{
		Key:          formatKey(key),
		CheckpointID: m.last.ID,
		OccurredAt:   m.cfg.clock(),
	}))
	return nil
}

// Changes lists the compound names that differ between key's baseline and
// its current state. A forced entry with no value change has no changes.
func (m *DirtyMap[K, V]) Changes(key K) ([]Change, error) {
	b, ok := m.baselines[key]
	if !ok {
		return nil, keyNotFound(key)
	}
	current, err := SnapshotOf(m.values[key])
	if err != nil {
		return nil, err
	}
	return b.snapshot.Diff(current), nil
}

type dirtyEntry[K comparable] struct {
	key      K
	forced   bool
	current  Snapshot
	changes  []Change
	baseline *baseline
}

// scan snapshots every entry and returns the dirty ones. Changes are only
// computed when withChanges is set.
func (m *DirtyMap[K, V]) scan(withChanges bool) ([]dirtyEntry[K], error) {
	var entries []dirtyEntry[K]
	for key, value := range m.values {
		current, err := SnapshotOf(value)
		if err != nil {
			return nil, err
		}
		b := m.baselines[key]
		if !b.forced && current.Equal(b.snapshot) {
			continue
		}
		entry := dirtyEntry[K]{key: key, forced: b.forced, current: current, baseline: b}
		if withChanges {
			entry.changes = b.snapshot.Diff(current)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *DirtyMap[K, V]) log(event TrackerLogEvent) {
	m.cfg.logger.LogTracker(event)
}

// emit forwards an activity event. Hook failures are logged and never
// change the outcome of the tracking operation.
func (m *DirtyMap[K, V]) emit(event activity.Event) {
	if !m.emitter.Enabled() {
		return
	}
	if err := m.emitter.Emit(context.Background(), event); err != nil {
		m.log(TrackerLogEvent{Op: OpActivity, Key: event.ObjectID, Err: err})
	}
}

func keyNotFound(key any) error {
	return fmt.Errorf("%w: %v", ErrKeyNotFound, key)
}

func formatKey(key any) string {
	return fmt.Sprint(key)
}
