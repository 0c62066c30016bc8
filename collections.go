package webstore

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
)

// MapEntry is one key/value association of a Map.
type MapEntry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered association list whose keys need not be
// strings. It is stored tagged so that Get returns a Map again instead of
// a plain JSON object.
//
// A native Go map is stored as a plain JSON object and comes back from Get
// as map[string]any with its keys stringified. Convert it with MapOf when
// the entries and key types must survive the round trip.
type Map []MapEntry

// MapOf converts a Go map. Entry order follows map iteration order.
func MapOf[K comparable, V any](m map[K]V) Map {
	out := make(Map, 0, len(m))
	for k, v := range m {
		out = append(out, MapEntry{Key: k, Value: v})
	}
	return out
}

// Len returns the number of entries.
func (m Map) Len() int { return len(m) }

// Get returns the value associated with key. Keys are compared with
// reflect.DeepEqual; keys read back from a store are in their JSON form
// (numbers are float64).
func (m Map) Get(key any) (any, bool) {
	for _, e := range m {
		if reflect.DeepEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m Map) Has(key any) bool {
	_, ok := m.Get(key)
	return ok
}

// Put sets key to value, keeping the original position of an existing key.
func (m *Map) Put(key, value any) {
	for i, e := range *m {
		if reflect.DeepEqual(e.Key, key) {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MapEntry{Key: key, Value: value})
}

// MarshalJSON encodes the entries as an array of [key, value] pairs.
func (m Map) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, len(m))
	for i, e := range m {
		pairs[i] = [2]any{e.Key, e.Value}
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes an array of [key, value] pairs.
func (m *Map) UnmarshalJSON(data []byte) error {
	var pairs [][]any
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	out := make(Map, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return fmt.Errorf("map entry %d has %d elements, want 2", i, len(p))
		}
		out = append(out, MapEntry{Key: p[0], Value: p[1]})
	}
	*m = out
	return nil
}

// Set is a collection of distinct members. Member order carries no meaning.
type Set []any

// SetOf builds a Set from items, dropping duplicates.
func SetOf[T comparable](items ...T) Set {
	seen := make(map[T]struct{}, len(items))
	out := make(Set, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Contains reports whether v is a member, compared with reflect.DeepEqual.
func (s Set) Contains(v any) bool {
	for _, m := range s {
		if reflect.DeepEqual(m, v) {
			return true
		}
	}
	return false
}

// Add inserts v unless it is already a member.
func (s *Set) Add(v any) {
	if !s.Contains(v) {
		*s = append(*s, v)
	}
}
