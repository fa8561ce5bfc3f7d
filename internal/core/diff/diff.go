package diff

import (
	"sort"
	"strings"

	"github.com/zeusync/replica/internal/core/variant"
)

// Changes maps dotted field paths to their new values. A null value is a
// deletion marker: applying it removes the leaf at that path. Only leaves ever
// appear as entries; a nested mapping shows up as one entry per changed leaf
// under the dotted prefix, never as a whole sub-object, except when a path is
// freshly introduced with a non-map value.
type Changes map[string]variant.Value

// IsEmpty reports whether the change set contains no entries. An empty diff is
// represented as "no changes", never transmitted as an empty set.
func (c Changes) IsEmpty() bool {
	return len(c) == 0
}

// SortedPaths returns the change paths in lexicographic order. The change set
// itself is order-independent; sorting is for deterministic iteration in logs
// and tests.
func (c Changes) SortedPaths() []string {
	paths := make([]string, 0, len(c))
	for path := range c {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Compute walks two field mappings and returns the minimal leaf-level change
// set that transforms oldFields into newFields. Keys present only in oldFields
// are recorded as deletion markers. When both sides hold a nested mapping the
// walk recurses and prefixes nested paths with the parent key; any other
// changed value, lists included, is replaced wholesale as a single leaf.
func Compute(oldFields, newFields map[string]variant.Value) Changes {
	changes := make(Changes)
	computeInto(changes, "", oldFields, newFields)
	return changes
}

func computeInto(changes Changes, prefix string, oldFields, newFields map[string]variant.Value) {
	for key, newVal := range newFields {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		oldVal, existed := oldFields[key]
		if !existed {
			changes[path] = newVal
			continue
		}
		if oldVal.Kind() == variant.KindMap && newVal.Kind() == variant.KindMap {
			computeInto(changes, path, oldVal.AsMap(), newVal.AsMap())
			continue
		}
		if !variant.Equal(oldVal, newVal) {
			changes[path] = newVal
		}
	}
	for key := range oldFields {
		if _, kept := newFields[key]; kept {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		changes[path] = variant.Null()
	}
}

// Apply mutates fields in place according to the change set. Missing
// intermediate mappings are created on the way down, so a receiver that is
// reconstructing state incrementally can apply changes to a partial tree.
// A null value removes the leaf; removing an absent leaf is a no-op.
func Apply(fields map[string]variant.Value, changes Changes) {
	for path, value := range changes {
		applyOne(fields, path, value)
	}
}

func applyOne(fields map[string]variant.Value, path string, value variant.Value) {
	parts := strings.Split(path, ".")
	current := fields
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok || next.Kind() != variant.KindMap {
			// Intermediate node is missing or holds a leaf; replace it with
			// a fresh mapping so the rest of the path can be materialized.
			child := map[string]variant.Value{}
			current[part] = variant.Map(child)
			current = child
			continue
		}
		current = next.AsMap()
	}
	leaf := parts[len(parts)-1]
	if value.IsNull() {
		delete(current, leaf)
		return
	}
	current[leaf] = value
}
