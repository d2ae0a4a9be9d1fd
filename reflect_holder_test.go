package props

import (
	"errors"
	"testing"
)

type item struct {
	Kind  string
	Count int
}

func (i *item) Properties() ([]Property, error) {
	return PropertiesOf(i)
}

type player struct {
	Name      string `props:"name"`
	Health    int    `props:"hp"`
	Session   string `props:"-"`
	Position  [2]float64
	Weapon    *item            `props:"weapon"`
	Inventory []*item          `props:"inventory"`
	Equipment map[string]*item `props:"equipment"`
	Belt      [2]item          `props:"belt"`
	secret    string
}

func newPlayer() *player {
	return &player{
		Name:      "ana",
		Health:    100,
		Session:   "s-1",
		Weapon:    &item{Kind: "sword", Count: 1},
		Inventory: []*item{{Kind: "potion", Count: 3}},
		Equipment: map[string]*item{"helmet": {Kind: "iron", Count: 1}},
		secret:    "hidden",
	}
}

func TestPropertiesOfMapsFields(t *testing.T) {
	snapshot, err := SnapshotOf(Struct(newPlayer()))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []string{
		"Position",
		"belt:0:Count", "belt:0:Kind", "belt:1:Count", "belt:1:Kind",
		"equipment:helmet:Count", "equipment:helmet:Kind",
		"hp",
		"inventory:0:Count", "inventory:0:Kind",
		"name",
		"weapon:Count", "weapon:Kind",
	}
	names := snapshot.Names()
	if len(names) != len(want) {
		t.Fatalf("expected names %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected names %v, got %v", want, names)
		}
	}
}

func TestStructHolderTracksMutation(t *testing.T) {
	p := newPlayer()
	m := NewDirtyMap[string, Holder]()
	if err := m.Put("ana", Struct(p)); err != nil {
		t.Fatalf("put: %v", err)
	}

	p.Session = "s-2"
	p.secret = "other"
	if dirty, _ := m.IsDirty("ana"); dirty {
		t.Fatalf("skipped and unexported fields must not make the entry dirty")
	}

	p.Inventory[0].Count = 2
	changes, err := m.Changes("ana")
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if len(changes) != 1 || changes[0].Name != "inventory:0:Count" {
		t.Fatalf("unexpected changes: %+v", changes)
	}

	p.Weapon = nil
	changes, _ = m.Changes("ana")
	removed := 0
	for _, change := range changes {
		if change.Kind == ChangeRemoved {
			removed++
		}
	}
	if removed != 2 {
		t.Fatalf("expected weapon leaves removed, got %+v", changes)
	}
}

func TestPropertiesOfRejectsNonStruct(t *testing.T) {
	if _, err := PropertiesOf(42); !errors.Is(err, ErrNotStruct) {
		t.Fatalf("expected ErrNotStruct, got %v", err)
	}
	var missing *player
	if _, err := PropertiesOf(missing); !errors.Is(err, ErrNotStruct) {
		t.Fatalf("expected ErrNotStruct for nil pointer, got %v", err)
	}
	if _, err := SnapshotOf(Struct("text")); !errors.Is(err, ErrNotStruct) {
		t.Fatalf("expected Struct holder to surface ErrNotStruct, got %v", err)
	}
}
