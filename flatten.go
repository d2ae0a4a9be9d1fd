package props

import (
	"fmt"
	"strconv"
)

// Separator joins path segments of a compound name.
const Separator = ":"

// Flatten expands p into leaves keyed by compound name. The names start with
// p's own name: a leaf "count" nested under "inner" becomes "inner:count",
// collection elements contribute their index and keyed maps their key.
//
// Holders are read while flattening, so the result reflects their state at
// call time. Flatten terminates only on acyclic holder graphs; a holder that
// nests itself recurses until the stack is exhausted.
func (p Property) Flatten() (map[string]Property, error) {
	out := map[string]Property{}
	if err := flattenInto(out, "", p); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(dst map[string]Property, prefix string, p Property) error {
	if p.name == "" {
		if prefix == "" {
			return ErrNameRequired
		}
		return fmt.Errorf("%w under %q", ErrNameRequired, prefix)
	}
	path := joinName(prefix, p.name)

	switch p.kind {
	case KindLeaf:
		if _, exists := dst[path]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateName, path)
		}
		dst[path] = p
	case KindNested:
		if p.holder == nil {
			return nil
		}
		return flattenHolder(dst, path, p.holder)
	case KindCollection:
		for i, holder := range p.holders {
			if holder == nil {
				continue
			}
			if err := flattenHolder(dst, joinName(path, strconv.Itoa(i)), holder); err != nil {
				return err
			}
		}
	case KindKeyedMap:
		for key, holder := range p.keyed {
			if err := flattenHolder(dst, joinName(path, key), holder); err != nil {
				return err
			}
		}
	}
	return nil
}

func flattenHolder(dst map[string]Property, prefix string, holder Holder) error {
	properties, err := holder.Properties()
	if err != nil {
		return err
	}
	for _, child := range properties {
		if err := flattenInto(dst, prefix, child); err != nil {
			return err
		}
	}
	return nil
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + Separator + name
}
