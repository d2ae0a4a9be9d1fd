package props

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type simpleHolder struct {
	number int
	word   string
}

func (h *simpleHolder) Properties() ([]Property, error) {
	return []Property{
		Leaf("number", h.number),
		Leaf("word", h.word),
	}, nil
}

type complexHolder struct {
	number     int
	someHolder *simpleHolder
}

func (h *complexHolder) Properties() ([]Property, error) {
	return []Property{
		Leaf("number", h.number),
		Nested("someHolder", h.someHolder),
	}, nil
}

// switchHolder fails while err is set.
type switchHolder struct {
	value int
	err   error
}

func (h *switchHolder) Properties() ([]Property, error) {
	if h.err != nil {
		return nil, h.err
	}
	return []Property{Leaf("value", h.value)}, nil
}

// fixtureHolder is a holder described by JSON test fixtures.
type fixtureHolder struct {
	Leaves      map[string]any                       `json:"leaves"`
	Nested      map[string]*fixtureHolder            `json:"nested"`
	Collections map[string][]*fixtureHolder          `json:"collections"`
	Maps        map[string]map[string]*fixtureHolder `json:"maps"`
}

func (h *fixtureHolder) Properties() ([]Property, error) {
	var properties []Property
	for name, value := range h.Leaves {
		properties = append(properties, Leaf(name, value))
	}
	for name, holder := range h.Nested {
		properties = append(properties, Nested(name, holder))
	}
	for name, holders := range h.Collections {
		properties = append(properties, Collection(name, holders))
	}
	for name, holders := range h.Maps {
		properties = append(properties, KeyedMap(name, holders))
	}
	return properties, nil
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("failed to locate fixture directory")
	}
	path := filepath.Join(filepath.Dir(filename), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}

func assertSameHolders[V comparable](t *testing.T, got []V, want ...V) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d holders, got %d: %v", len(want), len(got), got)
	}
	remaining := make(map[V]int, len(want))
	for _, w := range want {
		remaining[w]++
	}
	for _, g := range got {
		if remaining[g] == 0 {
			t.Fatalf("unexpected holder %v in %v", g, got)
		}
		remaining[g]--
	}
}
