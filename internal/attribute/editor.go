// Package attribute implements the variable-length attribute lists of a
// product (optional add-ons, removable items and specification rows) and
// their canonical string encoding.
//
// Rows are edited freely and never validated one by one. Commit filters out
// every row with a blank required field, renders the rest as fragments and
// joins them with ", ". An empty result encodes to nil, which the backend
// reads as "not provided", as opposed to "" meaning "explicitly empty".
package attribute

import "strings"

// Separator joins fragments in a canonical encoding.
const Separator = ", "

// Row is a value-typed list entry addressed by fields of type F.
// With returns a copy of the row with one field replaced; ok is false when
// the field does not exist for this row's shape. Fragment renders the row
// and reports whether every required field is filled.
type Row[F any, R any] interface {
	With(field F, value string) (R, bool)
	Fragment() (string, bool)
	Values() map[string]string
}

// Editor owns an ordered list of rows. Identity is position only: duplicates
// are allowed and removing a row shifts the ones after it.
//
// An Editor is not safe for concurrent use; callers serialize access.
type Editor[F any, R Row[F, R]] struct {
	rows   []R
	newRow func() R
}

// NewEditor creates an empty editor. newRow builds the blank row appended by
// Add; it runs once per Add, so context it reads is captured at that moment.
func NewEditor[F any, R Row[F, R]](newRow func() R) *Editor[F, R] {
	return &Editor[F, R]{newRow: newRow}
}

// Add appends one empty row and returns its index.
func (e *Editor[F, R]) Add() int {
	e.rows = append(e.rows, e.newRow())
	return len(e.rows) - 1
}

// Remove deletes the row at index. Out-of-range indexes are ignored.
func (e *Editor[F, R]) Remove(index int) bool {
	if index < 0 || index >= len(e.rows) {
		return false
	}
	e.rows = append(e.rows[:index], e.rows[index+1:]...)
	return true
}

// Set writes one field of the row at index. It reports false, and changes
// nothing, when the index is out of range or the row's shape has no such field.
func (e *Editor[F, R]) Set(index int, field F, value string) bool {
	if index < 0 || index >= len(e.rows) {
		return false
	}
	updated, ok := e.rows[index].With(field, value)
	if !ok {
		return false
	}
	e.rows[index] = updated
	return true
}

// Commit encodes the complete rows. Rows are left in place.
func (e *Editor[F, R]) Commit() *string {
	return Encode(e.rows)
}

// Rows returns a copy of the current rows.
func (e *Editor[F, R]) Rows() []R {
	out := make([]R, len(e.rows))
	copy(out, e.rows)
	return out
}

// Len returns the number of rows.
func (e *Editor[F, R]) Len() int {
	return len(e.rows)
}

// Reset drops every row.
func (e *Editor[F, R]) Reset() {
	e.rows = nil
}

// Fragmenter is anything that renders to a single encoding fragment.
type Fragmenter interface {
	Fragment() (string, bool)
}

// Encode renders rows into their canonical encoding, or nil when no row is complete.
func Encode[R Fragmenter](rows []R) *string {
	fragments := make([]string, 0, len(rows))
	for _, r := range rows {
		if f, ok := r.Fragment(); ok {
			fragments = append(fragments, f)
		}
	}
	if len(fragments) == 0 {
		return nil
	}
	encoded := strings.Join(fragments, Separator)
	return &encoded
}

// pair renders "label = value" when both sides are non-blank.
func pair(label, value string) (string, bool) {
	label, value = strings.TrimSpace(label), strings.TrimSpace(value)
	if label == "" || value == "" {
		return "", false
	}
	return label + " = " + value, true
}
