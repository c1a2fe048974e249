package domain

// Option is one entry of a select list rendered by the UI.
// ID is the backend identifier when the option maps to a stored record.
type Option struct {
	ID    int    `json:"id,omitempty"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// ListKind names one of the three attribute lists a draft carries.
type ListKind string

const (
	ListInclude   ListKind = "include"   // optional add-ons
	ListRemove    ListKind = "remove"    // removable items
	ListDatasheet ListKind = "datasheet" // specification rows
)

// ListKinds returns every list kind in display order.
func ListKinds() []ListKind {
	return []ListKind{ListInclude, ListRemove, ListDatasheet}
}

// Valid reports whether k is a known list kind.
func (k ListKind) Valid() bool {
	switch k {
	case ListInclude, ListRemove, ListDatasheet:
		return true
	}
	return false
}
