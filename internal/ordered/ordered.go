// Package ordered provides copy-on-write helpers for ordered collections of
// keyed elements. Every function returns a freshly allocated slice and never
// modifies its input, so callers can treat slices as immutable values.
package ordered

// Keyed is implemented by elements addressable by a stable key.
type Keyed interface {
	Key() string
}

// Index returns the position of the element with the given key, or -1.
func Index[T Keyed](items []T, key string) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// Contains reports whether an element with the given key is present.
func Contains[T Keyed](items []T, key string) bool {
	return Index(items, key) >= 0
}

// Clamp limits index to the closed range [0, n].
func Clamp(index, n int) int {
	if index < 0 {
		return 0
	}
	if index > n {
		return n
	}
	return index
}

// Insert returns a copy of items with block inserted at index, clamped to
// [0, len(items)]. The relative order of block is preserved.
func Insert[T any](items []T, index int, block ...T) []T {
	index = Clamp(index, len(items))
	out := make([]T, 0, len(items)+len(block))
	out = append(out, items[:index]...)
	out = append(out, block...)
	out = append(out, items[index:]...)
	return out
}

// Remove returns a copy of items without the element with the given key,
// together with the removed element. ok is false when the key is absent, in
// which case the returned slice is still a copy.
func Remove[T Keyed](items []T, key string) (rest []T, removed T, ok bool) {
	rest = make([]T, 0, len(items))
	for _, item := range items {
		if !ok && item.Key() == key {
			removed = item
			ok = true
			continue
		}
		rest = append(rest, item)
	}
	return rest, removed, ok
}

// RemoveAll returns a copy of items without any element whose key is in keys.
func RemoveAll[T Keyed](items []T, keys map[string]struct{}) []T {
	rest := make([]T, 0, len(items))
	for _, item := range items {
		if _, drop := keys[item.Key()]; drop {
			continue
		}
		rest = append(rest, item)
	}
	return rest
}

// Move removes the element keyed fromKey and reinserts it at the former
// position of toKey. When moving right the insertion index is shifted left by
// one to account for the removal, so the moved element lands immediately
// before the target; when moving left it takes the target's index.
//
// ok is false, and a plain copy is returned, when either key is missing or
// both keys are equal.
func Move[T Keyed](items []T, fromKey, toKey string) (out []T, ok bool) {
	from := Index(items, fromKey)
	to := Index(items, toKey)
	if from < 0 || to < 0 || from == to {
		return append([]T(nil), items...), false
	}

	rest, moved, _ := Remove(items, fromKey)
	at := to
	if from < to {
		at = to - 1
	}
	return Insert(rest, at, moved), true
}

// Set builds a lookup set from a list of keys.
func Set(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
