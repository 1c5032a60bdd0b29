// Package model defines core data structures for odoorg.
package model

// DeclKind indicates whether a declaration is a field or a method.
type DeclKind string

const (
	Field  DeclKind = "field"
	Method DeclKind = "method"
)

// Category is a named bucket (e.g. COMPUTE, CRUD) used for canonical ordering.
type Category string

// Attr is one keyword attribute of a field declaration. Value holds the
// original source fragment, not a parsed representation.
type Attr struct {
	Name  string
	Value string
}

// Span is an inclusive range of 0-based line numbers into the source file.
// Start includes any comment lines attached to the declaration.
type Span struct {
	Start int
	End   int
}

// Declaration is a single field or method definition found in a class body.
type Declaration struct {
	Name        string
	Kind        DeclKind
	TypeName    string   // field type, e.g. "Many2one"; empty for methods
	Decorators  []string // decorator names without arguments, e.g. "api.depends"
	Attrs       []Attr   // field keyword attributes, in source order
	Positional  []string // positional argument fragments, in source order
	CallExpr    string   // field constructor expression, e.g. "fields.Many2one"
	Span        Span
	Code        Span // statement lines only, excluding attached comments
	OwningClass string

	// Ambiguous marks a declaration whose internal structure could not be
	// confidently parsed. It may still be relocated as a verbatim block but
	// its attribute order is never rewritten.
	Ambiguous bool
}

// HasAttr reports whether the declaration carries the named keyword attribute.
func (d *Declaration) HasAttr(name string) bool {
	for _, a := range d.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// HasDecorator reports whether the declaration carries the named decorator.
func (d *Declaration) HasDecorator(name string) bool {
	for _, dec := range d.Decorators {
		if dec == name {
			return true
		}
	}
	return false
}

// MetaAttr is a reserved model attribute such as _name or _inherit.
type MetaAttr struct {
	Name string
	Span Span
}

// Block is any statement kept only as a verbatim source range.
type Block struct {
	Span Span
}

// Import is one import statement, with the text used for grouping.
type Import struct {
	Text string // statement text without attached comments
	Span Span
}

// ClassInventory is the structured content of one class body. It is built
// fresh per file pass and never mutated in place.
type ClassInventory struct {
	Name       string
	Bases      []string
	IsModel    bool
	HeaderSpan Span // class keyword through the line before the first body statement
	Span       Span // whole class including decorators
	BodyIndent string

	Docstring    *Span
	MetaAttrs    []MetaAttr
	OtherAssigns []Block
	Properties   []Declaration
	Fields       []Declaration
	Methods      []Declaration
	NestedSpans  []Block
	Others       []Block // statements in the body that are neither of the above

	// Unsafe marks a class whose body cannot be rebuilt (e.g. single-line
	// class). Unsafe classes are re-emitted verbatim.
	Unsafe bool
}

// ModuleInventory is the structured content of one source file.
type ModuleInventory struct {
	Docstring  *Span
	Imports    []Import
	ModuleVars []Block
	Functions  []Block
	Classes    []ClassInventory
	Others     []Block

	Lines []string // the split source, shared by all spans
}

// Status of one file in a batch run.
type Status string

const (
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult is the per-file outcome reported by the batch driver.
type FileResult struct {
	Path       string   `json:"path"`
	Status     Status   `json:"status"`
	Changes    int      `json:"changes"`
	Categories []string `json:"categories,omitempty"`
	Err        string   `json:"error,omitempty"`
}
