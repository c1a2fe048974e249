package form

import (
	"fmt"

	"github.com/vitrinelab/vitrine/internal/attribute"
	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/errors"
)

// RowView is one editor row as rendered by the UI.
type RowView struct {
	Index  int               `json:"index"`
	Shape  string            `json:"shape,omitempty"`
	Fields map[string]string `json:"fields"`
}

// ListView is an editor's rows plus the encoding last merged into the draft.
// Committed can lag behind Rows until the list is committed again.
type ListView struct {
	Kind      domain.ListKind `json:"kind"`
	Rows      []RowView       `json:"rows"`
	Pending   *string         `json:"pending"`
	Committed *string         `json:"committed"`
}

// List returns the rows of one editor.
func (s *Session) List(kind domain.ListKind) (ListView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(kind)
}

func (s *Session) list(kind domain.ListKind) (ListView, error) {
	view := ListView{Kind: kind, Committed: s.draft.Encoding(kind)}
	switch kind {
	case domain.ListInclude:
		view.Rows = rowViews(s.include.Rows(), func(attribute.AddOn) string { return "" })
		view.Pending = s.include.Commit()
	case domain.ListRemove:
		view.Rows = rowViews(s.remove.Rows(), func(attribute.Removal) string { return "" })
		view.Pending = s.remove.Commit()
	case domain.ListDatasheet:
		view.Rows = rowViews(s.datasheet.Rows(), func(r attribute.Spec) string { return string(r.Shape()) })
		view.Pending = s.datasheet.Commit()
	default:
		return ListView{}, unknownList(kind)
	}
	return view, nil
}

type valuer interface {
	Values() map[string]string
}

func rowViews[R valuer](rows []R, shape func(R) string) []RowView {
	out := make([]RowView, len(rows))
	for i, r := range rows {
		out[i] = RowView{Index: i, Shape: shape(r), Fields: r.Values()}
	}
	return out
}

// AddRow appends a blank row to the kind editor and returns its index.
// Datasheet rows take their shape from the product type at this moment.
func (s *Session) AddRow(kind domain.ListKind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.ListInclude:
		return s.include.Add(), nil
	case domain.ListRemove:
		return s.remove.Add(), nil
	case domain.ListDatasheet:
		return s.datasheet.Add(), nil
	}
	return -1, unknownList(kind)
}

// RemoveRow deletes a row. Out-of-range indexes are ignored.
func (s *Session) RemoveRow(kind domain.ListKind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case domain.ListInclude:
		s.include.Remove(index)
	case domain.ListRemove:
		s.remove.Remove(index)
	case domain.ListDatasheet:
		s.datasheet.Remove(index)
	default:
		return unknownList(kind)
	}
	return nil
}

// SetRowField writes one field of one row, addressed by its wire name.
// Out-of-range indexes are ignored. A field name the editor does not know, or
// one that does not apply to the row's shape, is a validation error.
func (s *Session) SetRowField(kind domain.ListKind, index int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		inRange bool
		applied bool
	)
	switch kind {
	case domain.ListInclude:
		f, err := attribute.ParseAddOnField(field)
		if err != nil {
			return fieldError(field, err)
		}
		inRange = index >= 0 && index < s.include.Len()
		applied = s.include.Set(index, f, value)
	case domain.ListRemove:
		f, err := attribute.ParseRemovalField(field)
		if err != nil {
			return fieldError(field, err)
		}
		inRange = index >= 0 && index < s.remove.Len()
		applied = s.remove.Set(index, f, value)
	case domain.ListDatasheet:
		f, err := attribute.ParseSpecField(field)
		if err != nil {
			return fieldError(field, err)
		}
		inRange = index >= 0 && index < s.datasheet.Len()
		applied = s.datasheet.Set(index, f, value)
	default:
		return unknownList(kind)
	}

	if inRange && !applied {
		return fieldError(field, fmt.Errorf("field %q does not apply to row %d", field, index))
	}
	return nil
}

// CommitList encodes the kind editor and merges the result into the draft.
// The rows stay as they are.
func (s *Session) CommitList(kind domain.ListKind) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var enc *string
	switch kind {
	case domain.ListInclude:
		enc = s.include.Commit()
	case domain.ListRemove:
		enc = s.remove.Commit()
	case domain.ListDatasheet:
		enc = s.datasheet.Commit()
	default:
		return nil, unknownList(kind)
	}
	if err := s.merge(kind, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

func fieldError(field string, err error) error {
	return errors.ValidationWithDetails(err.Error(), map[string]string{"field": field})
}
