// Package attrorder defines the canonical ordering of field keyword
// attributes, per field type, and rebuilds declarations to match it.
package attrorder

import "github.com/odoorg/odoorg/internal/model"

// Table maps a field type name to the canonical sequence of its keyword
// attribute names, with one generic fallback for unregistered types.
type Table struct {
	specific map[string][]string
	generic  []string
}

// NewTable builds a Table. The generic order is required; specific may be nil.
func NewTable(generic []string, specific map[string][]string) *Table {
	return &Table{specific: specific, generic: generic}
}

// OrderFor returns the attribute order for typeName, degrading to the
// generic order for unknown types. It never fails.
func (t *Table) OrderFor(typeName string) []string {
	if order, ok := t.specific[typeName]; ok {
		return order
	}
	return t.generic
}

// Reorder returns a copy of d whose Attrs follow OrderFor(d.TypeName).
// Attributes absent from the order list are appended after all known ones in
// their original encounter order, so reordering never drops data. Positional
// arguments are untouched: their order is semantically significant.
// Ambiguous declarations are returned unchanged.
func (t *Table) Reorder(d model.Declaration) model.Declaration {
	if d.Ambiguous || d.Kind != model.Field {
		return d
	}

	order := t.OrderFor(d.TypeName)
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	known := make([]model.Attr, 0, len(d.Attrs))
	var unknown []model.Attr
	for _, a := range d.Attrs {
		if _, ok := rank[a.Name]; ok {
			known = append(known, a)
		} else {
			unknown = append(unknown, a)
		}
	}

	// Insertion sort keeps this dependency-free and stable for duplicates.
	for i := 1; i < len(known); i++ {
		for j := i; j > 0 && rank[known[j].Name] < rank[known[j-1].Name]; j-- {
			known[j], known[j-1] = known[j-1], known[j]
		}
	}

	out := d
	out.Attrs = append(known, unknown...)
	return out
}

// InOrder reports whether d's attributes already follow the canonical order,
// i.e. whether Reorder would be a no-op. The caller uses this to avoid
// rewriting (and so reformatting) declarations that are already canonical.
func (t *Table) InOrder(d *model.Declaration) bool {
	if d.Ambiguous || d.Kind != model.Field {
		return true
	}
	order := t.OrderFor(d.TypeName)
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	last := -1
	sawUnknown := false
	for _, a := range d.Attrs {
		r, ok := rank[a.Name]
		if !ok {
			sawUnknown = true
			continue
		}
		if sawUnknown || r < last {
			return false
		}
		last = r
	}
	return true
}
