package attribute

import (
	"fmt"
	"strings"
)

// AddOnField addresses a field of an AddOn row.
type AddOnField int

// AddOn fields.
const (
	AddOnIngredient AddOnField = iota
	AddOnValue
)

var addOnFieldNames = []string{"ingredient", "value"}

func (f AddOnField) String() string { return fieldName(addOnFieldNames, int(f)) }

// ParseAddOnField maps a field name to an AddOnField.
func ParseAddOnField(name string) (AddOnField, error) {
	i, err := parseField(addOnFieldNames, name)
	return AddOnField(i), err
}

// AddOn is an optional extra and its price, encoded as "ingredient = value".
type AddOn struct {
	Ingredient string `json:"ingredient"`
	Value      string `json:"value"`
}

// With implements Row.
func (r AddOn) With(field AddOnField, value string) (AddOn, bool) {
	switch field {
	case AddOnIngredient:
		r.Ingredient = value
	case AddOnValue:
		r.Value = value
	default:
		return r, false
	}
	return r, true
}

// Fragment implements Row.
func (r AddOn) Fragment() (string, bool) {
	return pair(r.Ingredient, r.Value)
}

// Values implements Row.
func (r AddOn) Values() map[string]string {
	return map[string]string{"ingredient": r.Ingredient, "value": r.Value}
}

// RemovalField addresses a field of a Removal row.
type RemovalField int

// Removal fields.
const (
	RemovalIngredient RemovalField = iota
)

var removalFieldNames = []string{"ingredient"}

func (f RemovalField) String() string { return fieldName(removalFieldNames, int(f)) }

// ParseRemovalField maps a field name to a RemovalField.
func ParseRemovalField(name string) (RemovalField, error) {
	i, err := parseField(removalFieldNames, name)
	return RemovalField(i), err
}

// Removal is an item the customer can ask to leave out, encoded bare.
type Removal struct {
	Ingredient string `json:"ingredient"`
}

// With implements Row.
func (r Removal) With(field RemovalField, value string) (Removal, bool) {
	if field != RemovalIngredient {
		return r, false
	}
	r.Ingredient = value
	return r, true
}

// Fragment implements Row.
func (r Removal) Fragment() (string, bool) {
	s := strings.TrimSpace(r.Ingredient)
	return s, s != ""
}

// Values implements Row.
func (r Removal) Values() map[string]string {
	return map[string]string{"ingredient": r.Ingredient}
}

func fieldName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("field(%d)", i)
	}
	return names[i]
}

func parseField(names []string, name string) (int, error) {
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown field %q (want one of %s)", name, strings.Join(names, ", "))
}
