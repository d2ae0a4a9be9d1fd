package props

import (
	"fmt"
	"reflect"
)

// Kind tags the variant held by a Property.
type Kind uint8

const (
	// KindLeaf is a named value fingerprint.
	KindLeaf Kind = iota
	// KindNested wraps a single, possibly absent, Holder.
	KindNested
	// KindCollection wraps an ordered list of holders addressed by position.
	KindCollection
	// KindKeyedMap wraps holders addressed by string key.
	KindKeyedMap
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindNested:
		return "nested"
	case KindCollection:
		return "collection"
	case KindKeyedMap:
		return "keyed_map"
	default:
		return "unknown"
	}
}

// Holder is implemented by anything whose state should be tracked. Each call
// must return a fresh set of properties describing the current state.
type Holder interface {
	Properties() ([]Property, error)
}

// HolderFunc adapts a function to Holder.
type HolderFunc func() ([]Property, error)

// Properties implements Holder.
func (f HolderFunc) Properties() ([]Property, error) {
	if f == nil {
		return nil, nil
	}
	return f()
}

// Property is a named unit of declared state. Leaves carry a fingerprint;
// the composite kinds carry holders that are expanded when flattened.
type Property struct {
	name        string
	kind        Kind
	fingerprint Fingerprint
	holder      Holder
	holders     []Holder
	keyed       map[string]Holder
}

// Leaf builds a leaf property from value's fingerprint. The value itself is
// not retained. A nil value produces the NoValue fingerprint.
func Leaf(name string, value any) Property {
	return Property{name: name, kind: KindLeaf, fingerprint: FingerprintOf(value)}
}

// LeafFingerprint builds a leaf from a precomputed fingerprint.
func LeafFingerprint(name string, fingerprint Fingerprint) Property {
	return Property{name: name, kind: KindLeaf, fingerprint: fingerprint}
}

// Nested builds a property around a single holder. A nil holder, including a
// typed nil pointer, is legal and flattens to nothing.
func Nested(name string, holder Holder) Property {
	if isNilHolder(holder) {
		holder = nil
	}
	return Property{name: name, kind: KindNested, holder: holder}
}

// Collection builds a property around an ordered list of holders. The slice
// is copied; later changes to the caller's slice are not observed, although
// the holders themselves are still read live when flattened.
func Collection[H Holder](name string, holders []H) Property {
	copied := make([]Holder, len(holders))
	for i, holder := range holders {
		if isNilHolder(holder) {
			continue
		}
		copied[i] = holder
	}
	return Property{name: name, kind: KindCollection, holders: copied}
}

// KeyedMap builds a property around keyed holders. Keys are rendered with
// fmt.Sprint to form path segments, and the map is copied.
func KeyedMap[K comparable, H Holder](name string, holders map[K]H) Property {
	copied := make(map[string]Holder, len(holders))
	for key, holder := range holders {
		if isNilHolder(holder) {
			continue
		}
		copied[fmt.Sprint(key)] = holder
	}
	return Property{name: name, kind: KindKeyedMap, keyed: copied}
}

// Name returns the property name.
func (p Property) Name() string {
	return p.name
}

// Kind returns the variant tag.
func (p Property) Kind() Kind {
	return p.kind
}

// Fingerprint returns the leaf fingerprint, or NoValue for composites.
func (p Property) Fingerprint() Fingerprint {
	return p.fingerprint
}

// IsLeaf reports whether p is a leaf.
func (p Property) IsLeaf() bool {
	return p.kind == KindLeaf
}

// Equal reports whether p and other are leaves with the same name and
// fingerprint. Composite properties are compared through their flattened
// form, never directly.
func (p Property) Equal(other Property) bool {
	return p.kind == KindLeaf && other.kind == KindLeaf &&
		p.name == other.name && p.fingerprint == other.fingerprint
}

func (p Property) String() string {
	if p.kind == KindLeaf {
		return fmt.Sprintf("%s=%016x", p.name, uint64(p.fingerprint))
	}
	return fmt.Sprintf("%s(%s)", p.name, p.kind)
}

func isNilHolder(holder any) bool {
	if holder == nil {
		return true
	}
	rv := reflect.ValueOf(holder)
	return nilable(rv.Kind()) && rv.IsNil()
}
