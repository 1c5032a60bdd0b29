// Package reorg regenerates source text in canonical order. It is a pure
// text transform: the caller decides whether the result is written anywhere.
//
// Three granularities exist. The attrs level only rewrites keyword-attribute
// order inside field declarations and leaves every other byte alone. The
// class level re-emits model class bodies in canonical section order. The
// module level rebuilds the whole file: docstring, grouped imports, module
// variables, functions, then classes (each at class level).
//
// Applying any level twice yields the same text as applying it once, and
// already-canonical input comes back unchanged.
package reorg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odoorg/odoorg/internal/attrorder"
	"github.com/odoorg/odoorg/internal/extract"
	"github.com/odoorg/odoorg/internal/model"
	"github.com/odoorg/odoorg/internal/rules"
)

// Level selects the reorganization granularity.
type Level string

const (
	LevelAttrs  Level = "attrs"
	LevelClass  Level = "class"
	LevelModule Level = "module"
	LevelAll    Level = "all" // attrs pass followed by a module pass
)

// ParseLevel maps a CLI mode string to a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelAttrs, LevelClass, LevelModule, LevelAll:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want attrs, class, module or all)", s)
}

// Options configures a Reorganizer. Zero values select the defaults.
type Options struct {
	Headers     bool // emit section-header comments between groups
	MaxLine     int  // width above which a rebuilt field goes multi-line
	FieldRules  *rules.RuleSet
	MethodRules *rules.RuleSet
	AttrTable   *attrorder.Table
	FieldOrder  []model.Category
	MethodOrder []model.Category
}

// Result is the outcome of one reorganization pass.
type Result struct {
	Text       string
	Changes    int      // rewritten fields plus restructured classes
	Categories []string // sorted category labels seen on classified declarations
}

// Reorganizer applies reorganization passes. Not safe for concurrent use
// (it owns a tree-sitter parser); create one per goroutine.
type Reorganizer struct {
	ex   *extract.Extractor
	opts Options
}

// New returns a Reorganizer, filling unset options with the defaults.
func New(opts Options) *Reorganizer {
	if opts.MaxLine == 0 {
		opts.MaxLine = 99
	}
	if opts.FieldRules == nil {
		opts.FieldRules = rules.DefaultFieldRules
	}
	if opts.MethodRules == nil {
		opts.MethodRules = rules.DefaultMethodRules
	}
	if opts.AttrTable == nil {
		opts.AttrTable = attrorder.Default
	}
	if opts.FieldOrder == nil {
		opts.FieldOrder = rules.FieldOrder
	}
	if opts.MethodOrder == nil {
		opts.MethodOrder = rules.MethodOrder
	}
	return &Reorganizer{ex: extract.New(), opts: opts}
}

// Reorganize transforms source at the given level. A *extract.ParseError is
// returned for unparseable input; callers skip the file and continue.
func (r *Reorganizer) Reorganize(path string, source []byte, level Level) (Result, error) {
	switch level {
	case LevelAttrs:
		return r.attrsPass(path, source)
	case LevelClass:
		return r.classPass(path, source)
	case LevelModule:
		return r.modulePass(path, source)
	case LevelAll:
		first, err := r.attrsPass(path, source)
		if err != nil {
			return Result{}, err
		}
		second, err := r.modulePass(path, []byte(first.Text))
		if err != nil {
			return Result{}, err
		}
		second.Changes += first.Changes
		second.Categories = mergeSorted(first.Categories, second.Categories)
		return second, nil
	}
	return Result{}, fmt.Errorf("unknown level %q", level)
}

// attrsPass rewrites keyword-attribute order inside field declarations of
// model classes. Everything else is byte-identical to the input: already
// canonical fields are not touched at all, so a canonical file round-trips
// with no spurious diff.
func (r *Reorganizer) attrsPass(path string, source []byte) (Result, error) {
	inv, err := r.ex.Extract(path, source)
	if err != nil {
		return Result{}, err
	}

	cats := map[model.Category]struct{}{}
	var splices []splice

	for i := range inv.Classes {
		ci := &inv.Classes[i]
		if !ci.IsModel || ci.Unsafe {
			continue
		}
		for _, f := range ci.Fields {
			cats[r.opts.FieldRules.Classify(&f)] = struct{}{}
			if f.Ambiguous || r.opts.AttrTable.InOrder(&f) {
				continue
			}
			nf := r.opts.AttrTable.Reorder(f)
			indent := leadingWhitespace(inv.Lines[f.Code.Start])
			splices = append(splices, splice{
				span:  f.Code,
				lines: renderField(indent, &nf, r.opts.MaxLine),
			})
		}
	}

	lines := applySplices(inv.Lines, splices)
	return Result{
		Text:       strings.Join(lines, "\n"),
		Changes:    len(splices),
		Categories: sortedCategories(cats),
	}, nil
}

// splice replaces an inclusive line span with replacement lines.
type splice struct {
	span  model.Span
	lines []string
}

// applySplices applies splices bottom-up so earlier spans stay valid.
func applySplices(lines []string, splices []splice) []string {
	out := append([]string(nil), lines...)
	sort.Slice(splices, func(i, j int) bool {
		return splices[i].span.Start > splices[j].span.Start
	})
	for _, s := range splices {
		tail := append([]string(nil), out[s.span.End+1:]...)
		out = append(out[:s.span.Start], s.lines...)
		out = append(out, tail...)
	}
	return out
}

// renderField rebuilds a field declaration from its parsed parts: positional
// arguments first in original order, then keyword attributes in the order
// already present on d. The single-line form is preferred; past maxLine the
// arguments go one per line with a trailing comma.
func renderField(indent string, d *model.Declaration, maxLine int) []string {
	args := make([]string, 0, len(d.Positional)+len(d.Attrs))
	args = append(args, d.Positional...)
	for _, a := range d.Attrs {
		args = append(args, a.Name+"="+a.Value)
	}

	head := indent + d.Name + " = " + d.CallExpr + "("
	single := head + strings.Join(args, ", ") + ")"
	if len(args) == 0 || len(single) <= maxLine {
		return []string{single}
	}

	out := make([]string, 0, len(args)+2)
	out = append(out, head)
	for _, a := range args {
		out = append(out, indent+"    "+a+",")
	}
	return append(out, indent+")")
}

func sortedCategories(set map[model.Category]struct{}) []string {
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

func mergeSorted(a, b []string) []string {
	set := map[string]struct{}{}
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func leadingWhitespace(line string) string {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return line[:i]
		}
	}
	return line
}

// slice returns the lines of an inclusive span.
func sliceSpan(lines []string, sp model.Span) []string {
	end := sp.End + 1
	if end > len(lines) {
		end = len(lines)
	}
	return lines[sp.Start:end]
}
