package reorg

import (
	"regexp"
	"sort"
	"strings"

	"github.com/odoorg/odoorg/internal/extract"
	"github.com/odoorg/odoorg/internal/model"
	"github.com/odoorg/odoorg/internal/rules"
)

// headerRe matches the section-header comments this tool emits, so they can
// be stripped and regenerated instead of accumulating across runs.
var headerRe = regexp.MustCompile(`^\s*# --- .+ ---$`)

// classPass re-emits every model class body in canonical section order.
// Non-model classes, unsafe classes and all text outside class spans are
// left byte-identical.
func (r *Reorganizer) classPass(path string, source []byte) (Result, error) {
	inv, err := r.ex.Extract(path, source)
	if err != nil {
		return Result{}, err
	}

	cats := map[model.Category]struct{}{}
	var splices []splice
	changes := 0

	for i := range inv.Classes {
		ci := &inv.Classes[i]
		if !ci.IsModel || ci.Unsafe {
			continue
		}
		rebuilt := r.rebuildClass(inv.Lines, ci, cats)
		original := sliceSpan(inv.Lines, ci.Span)
		if !equalLines(rebuilt, original) {
			splices = append(splices, splice{span: ci.Span, lines: rebuilt})
			changes++
		}
	}

	lines := applySplices(inv.Lines, splices)
	return Result{
		Text:       strings.Join(lines, "\n"),
		Changes:    changes,
		Categories: sortedCategories(cats),
	}, nil
}

// rebuildClass returns the full class text (header included) with the body
// sections in canonical order:
//
//	docstring
//	reserved model attributes, by MetaPriority
//	other class attributes
//	nested classes and unclassifiable statements preceding the first
//	declaration, verbatim
//	properties
//	fields, grouped by field category order
//	methods, grouped by method category order
//	remaining nested classes and unclassifiable statements, verbatim
//
// Sections are separated by a single blank line. Declarations travel with
// their attached leading comments.
func (r *Reorganizer) rebuildClass(lines []string, ci *model.ClassInventory, cats map[model.Category]struct{}) []string {
	header := sliceSpan(lines, model.Span{Start: ci.Span.Start, End: ci.HeaderSpan.End})

	var sections [][]string
	add := func(block []string) {
		if len(block) > 0 {
			sections = append(sections, block)
		}
	}

	if ci.Docstring != nil {
		add(sliceSpan(lines, *ci.Docstring))
	}

	add(r.metaSection(lines, ci.MetaAttrs))

	var otherAssigns []string
	for _, b := range ci.OtherAssigns {
		otherAssigns = append(otherAssigns, stripHeaders(sliceSpan(lines, b.Span))...)
	}
	add(otherAssigns)

	// Nested classes and unclassifiable statements that precede the first
	// declaration stay above it: a field default may reference a nested
	// class (state = fields.Char(default=States.DRAFT)). Later ones stay at
	// the end, below anything they may reference.
	declStart := len(lines)
	for _, ds := range [][]model.Declaration{ci.Properties, ci.Fields, ci.Methods} {
		for _, d := range ds {
			if d.Span.Start < declStart {
				declStart = d.Span.Start
			}
		}
	}
	var setup, trailing []model.Block
	for _, b := range append(append([]model.Block(nil), ci.NestedSpans...), ci.Others...) {
		if b.Span.Start < declStart {
			setup = append(setup, b)
		} else {
			trailing = append(trailing, b)
		}
	}
	sort.SliceStable(setup, func(i, j int) bool { return setup[i].Span.Start < setup[j].Span.Start })
	sort.SliceStable(trailing, func(i, j int) bool { return trailing[i].Span.Start < trailing[j].Span.Start })
	for _, b := range setup {
		add(sliceSpan(lines, b.Span))
	}

	for _, p := range ci.Properties {
		add(stripHeaders(sliceSpan(lines, p.Span)))
	}

	sections = append(sections, r.groupDecls(lines, ci.Fields, r.opts.FieldRules, r.opts.FieldOrder, true, cats)...)
	sections = append(sections, r.groupDecls(lines, ci.Methods, r.opts.MethodRules, r.opts.MethodOrder, false, cats)...)

	for _, b := range trailing {
		add(sliceSpan(lines, b.Span))
	}

	out := append([]string(nil), header...)
	for i, sec := range sections {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, sec...)
	}
	return out
}

// metaSection emits reserved model attributes sorted by MetaPriority, with
// unknown reserved names appended after in original order, one contiguous run
// with no blank lines.
func (r *Reorganizer) metaSection(lines []string, metas []model.MetaAttr) []string {
	rank := make(map[string]int, len(extract.MetaPriority))
	for i, n := range extract.MetaPriority {
		rank[n] = i
	}
	sorted := append([]model.MetaAttr(nil), metas...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, ok := rank[sorted[i].Name]
		if !ok {
			ri = len(rank)
		}
		rj, ok := rank[sorted[j].Name]
		if !ok {
			rj = len(rank)
		}
		return ri < rj
	})

	var out []string
	for _, m := range sorted {
		out = append(out, stripHeaders(sliceSpan(lines, m.Span))...)
	}
	return out
}

// groupDecls classifies decls, groups them in the configured category order
// and returns one section per group (fields: whole group as one section;
// methods: one section per method so each gets a separating blank line).
// Within a group, original order is preserved, which together with the
// deterministic classification makes the pass idempotent.
func (r *Reorganizer) groupDecls(lines []string, decls []model.Declaration, rs *rules.RuleSet, order []model.Category, compact bool, cats map[model.Category]struct{}) [][]string {
	groups := make(map[model.Category][]model.Declaration)
	for _, d := range decls {
		c := rs.Classify(&d)
		cats[c] = struct{}{}
		groups[c] = append(groups[c], d)
	}

	var sections [][]string
	emit := func(c model.Category) {
		members := groups[c]
		if len(members) == 0 {
			return
		}
		var headerLine []string
		if r.opts.Headers {
			indent := leadingWhitespace(lines[members[0].Span.Start])
			label := rules.SectionLabels[c]
			if label == "" {
				label = string(c)
			}
			headerLine = []string{indent + "# --- " + label + " ---"}
		}
		if compact {
			section := append([]string(nil), headerLine...)
			for _, d := range members {
				section = append(section, stripHeaders(sliceSpan(lines, d.Span))...)
			}
			sections = append(sections, section)
			return
		}
		for i, d := range members {
			block := stripHeaders(sliceSpan(lines, d.Span))
			if i == 0 && len(headerLine) > 0 {
				block = append(append([]string(nil), headerLine...), block...)
			}
			sections = append(sections, block)
		}
	}

	for _, c := range order {
		emit(c)
	}
	// Categories outside the configured order still get emitted, after all
	// configured groups, in first-seen order. Nothing may be dropped.
	seen := map[model.Category]struct{}{}
	for _, c := range order {
		seen[c] = struct{}{}
	}
	for _, d := range decls {
		c := rs.Classify(&d)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		emit(c)
	}

	return sections
}

// stripHeaders drops previously emitted section-header comments from the
// start of a block so repeated runs do not stack them up.
func stripHeaders(block []string) []string {
	out := append([]string(nil), block...)
	for len(out) > 0 && headerRe.MatchString(out[0]) {
		out = out[1:]
	}
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
