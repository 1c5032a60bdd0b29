// Package extract parses Python source with tree-sitter and builds a
// structured inventory of its declarations. Every top-level statement and
// every class-body statement is bucketed exactly once; statements that do not
// fit a bucket are kept as verbatim blocks so nothing is ever lost.
package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/odoorg/odoorg/internal/model"
)

// ParseError reports a syntax error in the input. Callers skip the file and
// continue the batch; a ParseError is never fatal to a run.
type ParseError struct {
	Path string
	Line int // 1-based
	Col  int // 1-based
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error", e.Path, e.Line, e.Col)
}

// MetaPriority is the canonical emission order of reserved model attributes.
// Names not listed here are still reserved-looking but unknown; the reorderer
// appends them after the known ones in original order.
var MetaPriority = []string{
	"_name",
	"_description",
	"_inherit",
	"_inherits",
	"_table",
	"_order",
	"_rec_name",
	"_rec_names_search",
	"_auto",
	"_register",
	"_abstract",
	"_transient",
	"_date_name",
	"_fold_name",
	"_parent_name",
	"_parent_store",
	"_active_name",
	"_check_company_auto",
	"_depends",
	"_sql_constraints",
}

var metaNames = func() map[string]struct{} {
	m := make(map[string]struct{}, len(MetaPriority))
	for _, n := range MetaPriority {
		m[n] = struct{}{}
	}
	return m
}()

// modelBases are the framework base classes that mark a declarable container.
var modelBases = map[string]struct{}{
	"models.Model":          {},
	"models.TransientModel": {},
	"models.AbstractModel":  {},
	"Model":                 {},
	"TransientModel":        {},
	"AbstractModel":         {},
}

// IsModelClass reports whether a class with the given bases is an Odoo model.
// This is the single capability check used everywhere instead of ad hoc
// base-name string comparisons.
func IsModelClass(bases []string) bool {
	for _, b := range bases {
		if _, ok := modelBases[b]; ok {
			return true
		}
	}
	return false
}

// Extractor parses Python sources. Not safe for concurrent use: each
// goroutine needs its own Extractor (tree-sitter parsers are not shareable).
type Extractor struct {
	parser *sitter.Parser
}

// New returns an Extractor for Python.
func New() *Extractor {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Extractor{parser: p}
}

// Extract parses source into a ModuleInventory. path is used only in error
// messages.
func (e *Extractor) Extract(path string, source []byte) (*model.ModuleInventory, error) {
	tree, err := e.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, col := firstError(root)
		return nil, &ParseError{Path: path, Line: line, Col: col}
	}

	inv := &model.ModuleInventory{
		Lines: strings.Split(string(source), "\n"),
	}

	w := walker{source: source, lines: inv.Lines}
	w.walkModule(root, inv)
	return inv, nil
}

// firstError locates the first ERROR or MISSING node, for ParseError.
func firstError(node *sitter.Node) (line, col int) {
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartPoint().Row) + 1, int(node.StartPoint().Column) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstError(child)
		}
	}
	return int(node.StartPoint().Row) + 1, int(node.StartPoint().Column) + 1
}

type walker struct {
	source []byte
	lines  []string
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.source[n.StartByte():n.EndByte()])
}

// spanOf returns the statement's line range, widened to include the pending
// attached comment block.
func spanOf(n *sitter.Node, pendingStart int) model.Span {
	start := int(n.StartPoint().Row)
	if pendingStart >= 0 && pendingStart < start {
		start = pendingStart
	}
	return model.Span{Start: start, End: int(n.EndPoint().Row)}
}

func (w *walker) walkModule(root *sitter.Node, inv *model.ModuleInventory) {
	pending := -1     // first line of the comment block awaiting its statement
	lastEnd := -1     // last line consumed by a previous statement
	commentEnd := -1  // last line of the pending comment block
	sawDocstring := false

	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)

		if n.Type() == "comment" {
			row := int(n.StartPoint().Row)
			if row <= lastEnd {
				continue // trailing comment, already inside the previous span
			}
			if pending < 0 {
				pending = row
			}
			commentEnd = int(n.EndPoint().Row)
			continue
		}

		sp := spanOf(n, pending)
		pending = -1
		lastEnd = sp.End

		switch n.Type() {
		case "expression_statement":
			expr := n.NamedChild(0)
			if expr == nil {
				inv.Others = append(inv.Others, model.Block{Span: sp})
				continue
			}
			if expr.Type() == "string" && !sawDocstring && inv.Docstring == nil &&
				len(inv.Imports) == 0 && len(inv.ModuleVars) == 0 &&
				len(inv.Functions) == 0 && len(inv.Classes) == 0 && len(inv.Others) == 0 {
				inv.Docstring = &sp
				sawDocstring = true
				continue
			}
			if expr.Type() == "assignment" || expr.Type() == "augmented_assignment" {
				inv.ModuleVars = append(inv.ModuleVars, model.Block{Span: sp})
				continue
			}
			inv.Others = append(inv.Others, model.Block{Span: sp})

		case "import_statement", "import_from_statement", "future_import_statement":
			inv.Imports = append(inv.Imports, model.Import{
				Text: w.text(n),
				Span: sp,
			})

		case "function_definition":
			inv.Functions = append(inv.Functions, model.Block{Span: sp})

		case "class_definition":
			inv.Classes = append(inv.Classes, w.walkClass(n, sp))

		case "decorated_definition":
			def := n.ChildByFieldName("definition")
			switch {
			case def != nil && def.Type() == "function_definition":
				inv.Functions = append(inv.Functions, model.Block{Span: sp})
			case def != nil && def.Type() == "class_definition":
				inv.Classes = append(inv.Classes, w.walkClass(def, sp))
			default:
				inv.Others = append(inv.Others, model.Block{Span: sp})
			}

		default:
			inv.Others = append(inv.Others, model.Block{Span: sp})
		}
	}

	// A trailing comment block with no statement after it must still be kept.
	if pending >= 0 && commentEnd >= pending {
		inv.Others = append(inv.Others, model.Block{Span: model.Span{Start: pending, End: commentEnd}})
	}
}

// walkClass builds a ClassInventory. classNode is the class_definition; sp is
// the full span including decorators and attached comments.
func (w *walker) walkClass(classNode *sitter.Node, sp model.Span) model.ClassInventory {
	ci := model.ClassInventory{Span: sp}

	if name := classNode.ChildByFieldName("name"); name != nil {
		ci.Name = w.text(name)
	}
	if sup := classNode.ChildByFieldName("superclasses"); sup != nil {
		for i := 0; i < int(sup.NamedChildCount()); i++ {
			ci.Bases = append(ci.Bases, w.text(sup.NamedChild(i)))
		}
	}
	ci.IsModel = IsModelClass(ci.Bases)

	body := classNode.ChildByFieldName("body")
	if body == nil || int(body.StartPoint().Row) == int(classNode.StartPoint().Row) {
		// Single-line class (class A: pass) or empty body: keep verbatim.
		ci.Unsafe = true
		ci.HeaderSpan = sp
		return ci
	}

	bodyStart := int(body.StartPoint().Row)
	ci.HeaderSpan = model.Span{Start: sp.Start, End: bodyStart - 1}
	ci.BodyIndent = leadingWhitespace(w.lines[bodyStart])

	pending := -1
	lastEnd := bodyStart - 1
	commentEnd := -1
	first := true

	for i := 0; i < int(body.NamedChildCount()); i++ {
		n := body.NamedChild(i)

		if n.Type() == "comment" {
			row := int(n.StartPoint().Row)
			if row <= lastEnd {
				continue
			}
			if pending < 0 {
				pending = row
			}
			commentEnd = int(n.EndPoint().Row)
			continue
		}

		msp := spanOf(n, pending)
		pending = -1
		lastEnd = msp.End

		switch n.Type() {
		case "expression_statement":
			expr := n.NamedChild(0)
			if expr != nil && expr.Type() == "string" && first {
				ci.Docstring = &msp
			} else if expr != nil && expr.Type() == "assignment" {
				w.classAssignment(&ci, expr, msp)
			} else {
				ci.Others = append(ci.Others, model.Block{Span: msp})
			}

		case "function_definition":
			addFunction(&ci, w.funcDecl(n, nil, msp, ci.Name))

		case "class_definition":
			ci.NestedSpans = append(ci.NestedSpans, model.Block{Span: msp})

		case "decorated_definition":
			def := n.ChildByFieldName("definition")
			switch {
			case def != nil && def.Type() == "function_definition":
				addFunction(&ci, w.funcDecl(def, n, msp, ci.Name))
			case def != nil && def.Type() == "class_definition":
				ci.NestedSpans = append(ci.NestedSpans, model.Block{Span: msp})
			default:
				ci.Others = append(ci.Others, model.Block{Span: msp})
			}

		default:
			ci.Others = append(ci.Others, model.Block{Span: msp})
		}
		first = false
	}

	if pending >= 0 && commentEnd >= pending {
		ci.Others = append(ci.Others, model.Block{Span: model.Span{Start: pending, End: commentEnd}})
	}

	return ci
}

// classAssignment buckets one class-level assignment: reserved meta
// attribute, field declaration, or plain class attribute.
func (w *walker) classAssignment(ci *model.ClassInventory, assign *sitter.Node, sp model.Span) {
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		ci.Others = append(ci.Others, model.Block{Span: sp})
		return
	}
	name := w.text(left)

	if _, ok := metaNames[name]; ok {
		ci.MetaAttrs = append(ci.MetaAttrs, model.MetaAttr{Name: name, Span: sp})
		return
	}

	right := assign.ChildByFieldName("right")
	if right != nil && right.Type() == "call" {
		if decl, ok := w.fieldDecl(name, assign, right, sp, ci.Name); ok {
			ci.Fields = append(ci.Fields, decl)
			return
		}
	}

	ci.OtherAssigns = append(ci.OtherAssigns, model.Block{Span: sp})
}

// fieldDecl parses a fields.X(...) call into a Declaration. Returns ok=false
// when the right-hand side is not a field constructor at all; returns an
// Ambiguous declaration when it is one but cannot be safely rebuilt.
func (w *walker) fieldDecl(name string, assign, call *sitter.Node, sp model.Span, owner string) (model.Declaration, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" {
		return model.Declaration{}, false
	}
	obj := fn.ChildByFieldName("object")
	attr := fn.ChildByFieldName("attribute")
	if obj == nil || attr == nil {
		return model.Declaration{}, false
	}
	objText := w.text(obj)
	if objText != "fields" && !strings.HasSuffix(objText, ".fields") {
		return model.Declaration{}, false
	}

	decl := model.Declaration{
		Name:     name,
		Kind:     model.Field,
		TypeName: w.text(attr),
		CallExpr: w.text(fn),
		Span:     sp,
		Code: model.Span{
			Start: int(assign.StartPoint().Row),
			End:   int(assign.EndPoint().Row),
		},
		OwningClass: owner,
	}

	// An annotated assignment (name: T = ...) is rebuilt differently enough
	// that we leave it verbatim.
	if assign.ChildByFieldName("type") != nil {
		decl.Ambiguous = true
	}

	args := call.ChildByFieldName("arguments")
	if args == nil {
		return decl, true
	}

	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		switch c.Type() {
		case "(", ")", ",":
			continue
		case "comment":
			// A comment inside the argument list cannot survive a rebuild.
			decl.Ambiguous = true
		case "keyword_argument":
			kn := c.ChildByFieldName("name")
			kv := c.ChildByFieldName("value")
			if kn == nil || kv == nil {
				decl.Ambiguous = true
				continue
			}
			decl.Attrs = append(decl.Attrs, model.Attr{
				Name:  w.text(kn),
				Value: w.text(kv),
			})
		case "list_splat", "dictionary_splat":
			// *args / **kwargs defeat attribute reordering.
			decl.Ambiguous = true
			decl.Positional = append(decl.Positional, w.text(c))
		default:
			decl.Positional = append(decl.Positional, w.text(c))
		}
	}

	// Values spanning lines (multi-line selection lists, lambdas over
	// several lines) cannot be re-rendered faithfully; keep them verbatim.
	for _, a := range decl.Attrs {
		if strings.Contains(a.Value, "\n") {
			decl.Ambiguous = true
		}
	}
	for _, p := range decl.Positional {
		if strings.Contains(p, "\n") {
			decl.Ambiguous = true
		}
	}

	return decl, true
}

// funcDecl builds a method Declaration. wrapper is the decorated_definition
// node when the method has decorators.
func (w *walker) funcDecl(fn, wrapper *sitter.Node, sp model.Span, owner string) model.Declaration {
	decl := model.Declaration{
		Kind:        model.Method,
		Span:        sp,
		OwningClass: owner,
	}
	if name := fn.ChildByFieldName("name"); name != nil {
		decl.Name = w.text(name)
	}
	if wrapper != nil {
		for i := 0; i < int(wrapper.NamedChildCount()); i++ {
			c := wrapper.NamedChild(i)
			if c.Type() != "decorator" {
				continue
			}
			decl.Decorators = append(decl.Decorators, w.decoratorName(c))
		}
	}
	return decl
}

// decoratorName returns the decorator's dotted name without call arguments:
// "@api.depends('x')" yields "api.depends", "@property" yields "property".
func (w *walker) decoratorName(dec *sitter.Node) string {
	expr := dec.NamedChild(0)
	if expr == nil {
		return strings.TrimPrefix(w.text(dec), "@")
	}
	if expr.Type() == "call" {
		if fn := expr.ChildByFieldName("function"); fn != nil {
			return w.text(fn)
		}
	}
	return w.text(expr)
}

// addFunction routes a parsed function to Properties or Methods.
func addFunction(ci *model.ClassInventory, d model.Declaration) {
	for _, dec := range d.Decorators {
		if isPropertyDecorator(dec) {
			ci.Properties = append(ci.Properties, d)
			return
		}
	}
	ci.Methods = append(ci.Methods, d)
}

// propertyDecorators mark methods that are properties, not regular methods.
func isPropertyDecorator(name string) bool {
	if name == "property" || name == "cached_property" ||
		strings.HasSuffix(name, ".cached_property") {
		return true
	}
	return strings.HasSuffix(name, ".setter") ||
		strings.HasSuffix(name, ".getter") ||
		strings.HasSuffix(name, ".deleter")
}

func leadingWhitespace(line string) string {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return line[:i]
		}
	}
	return line
}
