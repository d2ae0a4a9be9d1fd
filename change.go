package props

import (
	"fmt"
	"sort"
)

// ChangeKind classifies a difference between two snapshots.
type ChangeKind uint8

const (
	ChangeAdded ChangeKind = iota + 1
	ChangeRemoved
	ChangeModified
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name.
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Change describes one compound name that differs between a baseline and a
// later snapshot.
type Change struct {
	Name   string      `json:"name"`
	Kind   ChangeKind  `json:"kind"`
	Before Fingerprint `json:"before,omitempty"`
	After  Fingerprint `json:"after,omitempty"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s", c.Kind, c.Name)
}

// Diff lists the changes needed to go from s to next, sorted by name.
func (s Snapshot) Diff(next Snapshot) []Change {
	var changes []Change
	for name, before := range s.leaves {
		after, ok := next.leaves[name]
		if !ok {
			changes = append(changes, Change{Name: name, Kind: ChangeRemoved, Before: before.fingerprint})
			continue
		}
		if !before.Equal(after) {
			changes = append(changes, Change{
				Name:   name,
				Kind:   ChangeModified,
				Before: before.fingerprint,
				After:  after.fingerprint,
			})
		}
	}
	for name, after := range next.leaves {
		if _, ok := s.leaves[name]; !ok {
			changes = append(changes, Change{Name: name, Kind: ChangeAdded, After: after.fingerprint})
		}
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Name < changes[j].Name
	})
	return changes
}

func changedNames(changes []Change) []string {
	names := make([]string, len(changes))
	for i, change := range changes {
		names[i] = change.Name
	}
	return names
}
