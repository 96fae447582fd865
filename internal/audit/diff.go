package audit

import (
	"github.com/noah-isme/almacen-api/pkg/numfmt"
)

// Change is one field-level difference.
type Change struct {
	Field string
	Old   interface{}
	New   interface{}
}

// ChangeSet is an ordered list of changes. It is never persisted.
type ChangeSet []Change

// Keys lists the changed field names in order.
func (c ChangeSet) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, ch := range c {
		keys = append(keys, ch.Field)
	}
	return keys
}

// Get returns the change for a field.
func (c ChangeSet) Get(field string) (Change, bool) {
	for _, ch := range c {
		if ch.Field == field {
			return ch, true
		}
	}
	return Change{}, false
}

// Diff compares a before-image with the current state, walking the snapshot's
// fields in schema order. Values that parse as the same number ("5.0" and
// "5") are equal; everything else is compared by its string rendering.
func Diff(snapshot Snapshot, current Fields, schema EntitySchema) ChangeSet {
	changes := ChangeSet{}
	for _, key := range schema.OrderedKeys(snapshot.Fields) {
		if schema.ignored(key) {
			continue
		}

		before := snapshot.Fields[key]
		after := current[key]
		if absent(before) && absent(after) {
			continue
		}
		if equivalent(before, after) {
			continue
		}

		changes = append(changes, Change{Field: key, Old: before, New: after})
	}
	return changes
}

func equivalent(a, b interface{}) bool {
	da, okA := numfmt.Parse(a)
	db, okB := numfmt.Parse(b)
	if okA && okB {
		return da.Equal(db)
	}
	return stringify(a) == stringify(b)
}
