package attribute

import "strings"

// SpecField addresses a field of a specification row.
type SpecField int

// Specification fields. Kind, Quantity and Unit belong to menu rows;
// Variant and StockLevel belong to stock rows.
const (
	SpecKind SpecField = iota
	SpecQuantity
	SpecUnit
	SpecVariant
	SpecStockLevel
)

var specFieldNames = []string{"kind", "quantity", "unit", "variant", "stockLevel"}

func (f SpecField) String() string { return fieldName(specFieldNames, int(f)) }

// ParseSpecField maps a field name to a SpecField.
func ParseSpecField(name string) (SpecField, error) {
	i, err := parseField(specFieldNames, name)
	return SpecField(i), err
}

// SpecShape tells which set of fields a specification row carries.
type SpecShape string

// Specification shapes.
const (
	ShapeMenu  SpecShape = "menu"
	ShapeStock SpecShape = "stock"
)

// Spec is a specification row. Its shape is fixed when the row is created
// and never changes, even if the product type changes afterwards.
type Spec interface {
	With(field SpecField, value string) (Spec, bool)
	Fragment() (string, bool)
	Values() map[string]string
	Shape() SpecShape
	isSpec()
}

// MenuSpec describes an ingredient quantity of a prepared item,
// encoded as "kind = quantity unit".
type MenuSpec struct {
	Kind     string `json:"kind"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// StockSpec describes a product variant and its stock level,
// encoded as "variant = stockLevel".
type StockSpec struct {
	Variant    string `json:"variant"`
	StockLevel string `json:"stockLevel"`
}

func (MenuSpec) isSpec()  {}
func (StockSpec) isSpec() {}

// Shape implements Spec.
func (MenuSpec) Shape() SpecShape { return ShapeMenu }

// Shape implements Spec.
func (StockSpec) Shape() SpecShape { return ShapeStock }

// With implements Row.
func (r MenuSpec) With(field SpecField, value string) (Spec, bool) {
	switch field {
	case SpecKind:
		r.Kind = value
	case SpecQuantity:
		r.Quantity = value
	case SpecUnit:
		r.Unit = value
	default:
		return r, false
	}
	return r, true
}

// Fragment implements Row.
func (r MenuSpec) Fragment() (string, bool) {
	quantity, unit := strings.TrimSpace(r.Quantity), strings.TrimSpace(r.Unit)
	if quantity == "" || unit == "" {
		return "", false
	}
	return pair(r.Kind, quantity+" "+unit)
}

// Values implements Row.
func (r MenuSpec) Values() map[string]string {
	return map[string]string{"kind": r.Kind, "quantity": r.Quantity, "unit": r.Unit}
}

// With implements Row.
func (r StockSpec) With(field SpecField, value string) (Spec, bool) {
	switch field {
	case SpecVariant:
		r.Variant = value
	case SpecStockLevel:
		r.StockLevel = value
	default:
		return r, false
	}
	return r, true
}

// Fragment implements Row.
func (r StockSpec) Fragment() (string, bool) {
	return pair(r.Variant, r.StockLevel)
}

// Values implements Row.
func (r StockSpec) Values() map[string]string {
	return map[string]string{"variant": r.Variant, "stockLevel": r.StockLevel}
}

// Editors for the three product lists.
type (
	AddOnEditor   = Editor[AddOnField, AddOn]
	RemovalEditor = Editor[RemovalField, Removal]
	SpecEditor    = Editor[SpecField, Spec]
)

// NewAddOnEditor creates an editor for optional add-ons.
func NewAddOnEditor() *AddOnEditor {
	return NewEditor[AddOnField](func() AddOn { return AddOn{} })
}

// NewRemovalEditor creates an editor for removable items.
func NewRemovalEditor() *RemovalEditor {
	return NewEditor[RemovalField](func() Removal { return Removal{} })
}

// NewSpecEditor creates an editor for specification rows. isMenu is consulted
// on every Add to choose the shape of the new row.
func NewSpecEditor(isMenu func() bool) *SpecEditor {
	return NewEditor[SpecField](func() Spec {
		if isMenu != nil && isMenu() {
			return MenuSpec{}
		}
		return StockSpec{}
	})
}
