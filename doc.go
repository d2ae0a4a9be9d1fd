// Package props detects which tracked objects changed since the last
// checkpoint.
//
// A Holder declares its observable state as a list of Property values:
// leaves (a name plus a fingerprint of the value) and composites that point
// at further holders (Nested, Collection, KeyedMap). A Snapshot flattens
// those declarations into leaves keyed by compound name, with path segments
// joined by ":":
//
//	word
//	inner:count
//	items:0:count
//	slots:helmet:durability
//
// DirtyMap keeps a baseline snapshot per key and, on demand, re-reads every
// holder to find the entries whose snapshot no longer matches, plus the ones
// marked with SetDirty. Typical use is a game or simulation loop that mutates
// state freely and asks for the dirty set right before a periodic save:
//
//	players := props.NewDirtyMap[string, *Player]()
//	_ = players.Put(p.ID, p)
//	// ... ticks mutate p ...
//	_, err := players.Flush(ctx, save)
//
// Equality is fingerprint based. Two different values with the same
// fingerprint look identical, so a change between them is not reported.
// Holder graphs must be acyclic.
package props
