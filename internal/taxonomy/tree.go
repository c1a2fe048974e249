// Package taxonomy resolves the three-level product taxonomy
// (type → classification → category) and the flat option lists that sit
// next to it on the product form.
package taxonomy

import (
	"fmt"

	"github.com/vitrinelab/vitrine/internal/domain"
)

// Level identifies a depth in the taxonomy.
type Level int

// Taxonomy levels, root first.
const (
	LevelType Level = iota
	LevelClassification
	LevelCategory
)

func (l Level) String() string {
	switch l {
	case LevelType:
		return "type"
	case LevelClassification:
		return "classification"
	case LevelCategory:
		return "category"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name back to a Level.
func ParseLevel(s string) (Level, bool) {
	for _, l := range []Level{LevelType, LevelClassification, LevelCategory} {
		if l.String() == s {
			return l, true
		}
	}
	return 0, false
}

// Node is one entry of the taxonomy. ID is the backend identifier
// (idcl for classifications, idca for categories).
type Node struct {
	ID       int      `json:"id" yaml:"id"`
	Value    string   `json:"value" yaml:"value"`
	Label    string   `json:"label" yaml:"label"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Children []Node   `json:"children,omitempty" yaml:"children,omitempty"`
}

// Option converts the node to a select option.
func (n Node) Option() domain.Option {
	return domain.Option{ID: n.ID, Value: n.Value, Label: n.Label}
}

// Seed is the source form of a taxonomy: the type hierarchy plus the
// independent option lists shown on the product form.
type Seed struct {
	Types        []Node          `json:"types" yaml:"types"`
	Partners     []domain.Option `json:"partners" yaml:"partners"`
	Printers     []domain.Option `json:"printers" yaml:"printers"`
	MeasureUnits []domain.Option `json:"measureUnits" yaml:"measureUnits"`
	Statuses     []domain.Option `json:"statuses" yaml:"statuses"`
}

// Tree is an immutable, indexed snapshot of a Seed.
type Tree struct {
	types    []domain.Option
	children [2]map[string][]domain.Option // [0] type→classifications, [1] classification→categories
	nodes    [3]map[string]Node            // value → node, per level
	parent   [3]map[string]string          // value → parent value, per level
	aliases  [3]map[string]string          // folded alias → value, per level

	partners []domain.Option
	printers []domain.Option
	measures []domain.Option
	statuses []domain.Option
}

// NewTree indexes seed. Values must be unique within a level and IDs must
// be positive and unique within a level.
func NewTree(seed *Seed) (*Tree, error) {
	t := &Tree{
		partners: cloneOptions(seed.Partners),
		printers: cloneOptions(seed.Printers),
		measures: cloneOptions(seed.MeasureUnits),
		statuses: cloneOptions(seed.Statuses),
	}
	for i := range t.nodes {
		t.nodes[i] = make(map[string]Node)
		t.parent[i] = make(map[string]string)
		t.aliases[i] = make(map[string]string)
	}
	for i := range t.children {
		t.children[i] = make(map[string][]domain.Option)
	}

	ids := [3]map[int]string{{}, {}, {}}

	var add func(level Level, parent string, n Node) error
	add = func(level Level, parent string, n Node) error {
		if level > LevelCategory {
			return fmt.Errorf("%q: taxonomy is limited to three levels", n.Value)
		}
		if n.Value == "" {
			n.Value = Fold(n.Label)
		}
		if n.Value == "" || n.Label == "" {
			return fmt.Errorf("%s under %q: value and label are required", level, parent)
		}
		if n.ID <= 0 {
			return fmt.Errorf("%s %q: id must be positive", level, n.Value)
		}
		if _, dup := t.nodes[level][n.Value]; dup {
			return fmt.Errorf("%s %q: duplicate value", level, n.Value)
		}
		if other, dup := ids[level][n.ID]; dup {
			return fmt.Errorf("%s %q: id %d already used by %q", level, n.Value, n.ID, other)
		}
		ids[level][n.ID] = n.Value

		stored := n
		stored.Children = nil
		t.nodes[level][n.Value] = stored
		t.parent[level][n.Value] = parent

		for _, key := range append([]string{n.Value, n.Label}, n.Aliases...) {
			if f := Fold(key); f != "" {
				if _, taken := t.aliases[level][f]; !taken {
					t.aliases[level][f] = n.Value
				}
			}
		}

		if level == LevelType {
			t.types = append(t.types, stored.Option())
		} else {
			idx := int(level) - 1
			t.children[idx][parent] = append(t.children[idx][parent], stored.Option())
		}

		for _, child := range n.Children {
			if err := add(level+1, n.Value, child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, n := range seed.Types {
		if err := add(LevelType, "", n); err != nil {
			return nil, err
		}
	}
	if len(t.types) == 0 {
		return nil, fmt.Errorf("taxonomy has no types")
	}

	return t, nil
}

// Types returns the root options.
func (t *Tree) Types() []domain.Option {
	return cloneOptions(t.types)
}

// ClassificationsFor returns the classifications under typeValue, or an empty list.
func (t *Tree) ClassificationsFor(typeValue string) []domain.Option {
	return cloneOptions(t.children[0][typeValue])
}

// CategoriesFor returns the categories under classificationValue, or an empty list.
func (t *Tree) CategoriesFor(classificationValue string) []domain.Option {
	return cloneOptions(t.children[1][classificationValue])
}

// Node looks up a node by level and value.
func (t *Tree) Node(level Level, value string) (Node, bool) {
	if level < LevelType || level > LevelCategory {
		return Node{}, false
	}
	n, ok := t.nodes[level][value]
	return n, ok
}

// Parent returns the parent value of a classification or category.
func (t *Tree) Parent(level Level, value string) (string, bool) {
	if level <= LevelType || level > LevelCategory {
		return "", false
	}
	p, ok := t.parent[level][value]
	return p, ok
}

// IsChild reports whether value sits directly under parent at level.
func (t *Tree) IsChild(level Level, parent, value string) bool {
	p, ok := t.Parent(level, value)
	return ok && p == parent
}

// Match finds the node at level whose value, label or alias folds to the
// same key as text. When parent is non-empty the match must sit under it.
func (t *Tree) Match(level Level, parent, text string) (Node, bool) {
	if level < LevelType || level > LevelCategory {
		return Node{}, false
	}
	folded := Fold(text)
	if folded == "" {
		return Node{}, false
	}
	value, ok := t.aliases[level][folded]
	if !ok {
		value, ok = builtinAlias(level, folded)
	}
	if !ok {
		return Node{}, false
	}
	n, ok := t.nodes[level][value]
	if !ok {
		return Node{}, false
	}
	if parent != "" && level > LevelType && t.parent[level][value] != parent {
		return Node{}, false
	}
	return n, true
}

// Partners returns the partner options.
func (t *Tree) Partners() []domain.Option { return cloneOptions(t.partners) }

// Printers returns the printer options.
func (t *Tree) Printers() []domain.Option { return cloneOptions(t.printers) }

// MeasureUnits returns the measure unit options.
func (t *Tree) MeasureUnits() []domain.Option { return cloneOptions(t.measures) }

// Statuses returns the product status options.
func (t *Tree) Statuses() []domain.Option { return cloneOptions(t.statuses) }

// HasOption reports whether value is present in opts.
func HasOption(opts []domain.Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func (t *Tree) all(level Level) []Node {
	out := make([]Node, 0, len(t.nodes[level]))
	for _, n := range t.nodes[level] {
		out = append(out, n)
	}
	return out
}

// cloneOptions never returns nil so callers render an empty list, not null.
func cloneOptions(in []domain.Option) []domain.Option {
	out := make([]domain.Option, len(in))
	copy(out, in)
	return out
}
