package props

import (
	"encoding/binary"
	"iter"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is the flattened, immutable state of a holder at one point in
// time, keyed by compound name. The zero value is an empty snapshot.
type Snapshot struct {
	leaves map[string]Property
}

// NewSnapshot flattens properties into a snapshot. Leaves keep their own
// name; composites expand as described on Property.Flatten.
func NewSnapshot(properties ...Property) (Snapshot, error) {
	leaves := make(map[string]Property, len(properties))
	for _, property := range properties {
		if err := flattenInto(leaves, "", property); err != nil {
			return Snapshot{}, err
		}
	}
	return Snapshot{leaves: leaves}, nil
}

// SnapshotOf asks holder for its properties once and flattens them. Errors
// returned by the holder, or by any nested holder, are returned as is.
func SnapshotOf(holder Holder) (Snapshot, error) {
	if isNilHolder(holder) {
		return Snapshot{}, ErrNilHolder
	}
	properties, err := holder.Properties()
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(properties...)
}

// Len returns the number of leaves.
func (s Snapshot) Len() int {
	return len(s.leaves)
}

// Get returns the leaf stored under a compound name.
func (s Snapshot) Get(name string) (Property, bool) {
	leaf, ok := s.leaves[name]
	return leaf, ok
}

// Names returns the compound names in lexical order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.leaves))
	for name := range s.leaves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All yields compound name and leaf pairs in no particular order.
func (s Snapshot) All() iter.Seq2[string, Property] {
	return func(yield func(string, Property) bool) {
		for name, leaf := range s.leaves {
			if !yield(name, leaf) {
				return
			}
		}
	}
}

// Equal reports whether both snapshots hold the same compound names with
// equal leaves. Only fingerprints are compared; see Fingerprint.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.leaves) != len(other.leaves) {
		return false
	}
	for name, leaf := range s.leaves {
		theirs, ok := other.leaves[name]
		if !ok || !leaf.Equal(theirs) {
			return false
		}
	}
	return true
}

// Hash returns a digest consistent with Equal. Per-leaf hashes are summed so
// the result does not depend on construction order.
func (s Snapshot) Hash() uint64 {
	var (
		acc uint64
		buf [8]byte
	)
	for name, leaf := range s.leaves {
		digest := xxhash.New()
		_, _ = digest.WriteString(name)
		_, _ = digest.Write([]byte{0})
		_, _ = digest.WriteString(leaf.name)
		binary.LittleEndian.PutUint64(buf[:], uint64(leaf.fingerprint))
		_, _ = digest.Write(buf[:])
		acc += digest.Sum64()
	}
	return acc
}
