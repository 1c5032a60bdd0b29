package reorg

import (
	"sort"
	"strings"

	"github.com/odoorg/odoorg/internal/model"
)

// Import groups, in emission order. Mirrors the conventional Odoo layout:
// __future__ first, then standard library, third party, the framework
// itself, and finally relative imports.
const (
	groupFuture = iota
	groupStdlib
	groupThirdParty
	groupOdoo
	groupRelative
	groupCount
)

// pythonStdlib holds the standard-library roots worth recognizing. A module
// missing from this set is merely grouped as third party, never an error.
var pythonStdlib = map[string]struct{}{
	"abc": {}, "argparse": {}, "ast": {}, "asyncio": {}, "base64": {},
	"binascii": {}, "calendar": {}, "collections": {}, "configparser": {},
	"contextlib": {}, "copy": {}, "csv": {}, "dataclasses": {},
	"datetime": {}, "decimal": {}, "difflib": {}, "email": {}, "enum": {},
	"errno": {}, "fnmatch": {}, "fractions": {}, "functools": {},
	"getpass": {}, "glob": {}, "gzip": {}, "hashlib": {}, "heapq": {},
	"hmac": {}, "html": {}, "http": {}, "importlib": {}, "inspect": {},
	"io": {}, "itertools": {}, "json": {}, "logging": {}, "math": {},
	"mimetypes": {}, "operator": {}, "os": {}, "pathlib": {}, "pickle": {},
	"platform": {}, "pprint": {}, "queue": {}, "random": {}, "re": {},
	"secrets": {}, "select": {}, "shutil": {}, "signal": {}, "socket": {},
	"sqlite3": {}, "stat": {}, "statistics": {}, "string": {}, "struct": {},
	"subprocess": {}, "sys": {}, "tarfile": {}, "tempfile": {},
	"textwrap": {}, "threading": {}, "time": {}, "traceback": {},
	"types": {}, "typing": {}, "unicodedata": {}, "unittest": {},
	"urllib": {}, "uuid": {}, "warnings": {}, "weakref": {}, "xml": {},
	"zipfile": {}, "zlib": {},
}

// modulePass rebuilds a whole file: docstring, grouped imports, loose
// statements preceding the first definition, module variables, then
// functions, classes and trailing loose statements in their original
// relative order (model classes reorganized at class level). Top-level
// blocks are separated by two blank lines; import groups by one.
func (r *Reorganizer) modulePass(path string, source []byte) (Result, error) {
	inv, err := r.ex.Extract(path, source)
	if err != nil {
		return Result{}, err
	}

	if inv.Docstring == nil && len(inv.Imports) == 0 && len(inv.Others) == 0 &&
		len(inv.ModuleVars) == 0 && len(inv.Functions) == 0 && len(inv.Classes) == 0 {
		return Result{Text: string(source)}, nil
	}

	cats := map[model.Category]struct{}{}
	var blocks [][]string
	add := func(block []string) {
		if len(block) > 0 {
			blocks = append(blocks, block)
		}
	}

	if inv.Docstring != nil {
		add(sliceSpan(inv.Lines, *inv.Docstring))
	}

	add(importSection(inv.Lines, inv.Imports))

	// Loose statements before the first def or class (guarded imports,
	// logger setup) stay right after the imports so the names they define
	// exist before the code below uses them. Later loose statements may
	// reference the definitions above them and must not move past them.
	defStart := len(inv.Lines)
	for _, f := range inv.Functions {
		if f.Span.Start < defStart {
			defStart = f.Span.Start
		}
	}
	for i := range inv.Classes {
		if inv.Classes[i].Span.Start < defStart {
			defStart = inv.Classes[i].Span.Start
		}
	}

	var guards []string
	var late []model.Block
	for _, b := range inv.Others {
		if b.Span.Start < defStart {
			guards = append(guards, sliceSpan(inv.Lines, b.Span)...)
		} else {
			late = append(late, b)
		}
	}
	add(guards)

	var vars []string
	for _, b := range inv.ModuleVars {
		vars = append(vars, sliceSpan(inv.Lines, b.Span)...)
	}
	add(vars)

	// Functions, classes and trailing loose statements keep their original
	// relative order: a default argument or a call like Cls.setup() may
	// depend on a name defined earlier in the sequence.
	type bodyBlock struct {
		start int
		lines []string
	}
	var body []bodyBlock
	for _, f := range inv.Functions {
		body = append(body, bodyBlock{f.Span.Start, sliceSpan(inv.Lines, f.Span)})
	}

	changes := 0
	for i := range inv.Classes {
		ci := &inv.Classes[i]
		if !ci.IsModel || ci.Unsafe {
			body = append(body, bodyBlock{ci.Span.Start, sliceSpan(inv.Lines, ci.Span)})
			continue
		}
		rebuilt := r.rebuildClass(inv.Lines, ci, cats)
		if !equalLines(rebuilt, sliceSpan(inv.Lines, ci.Span)) {
			changes++
		}
		body = append(body, bodyBlock{ci.Span.Start, rebuilt})
	}
	for _, b := range late {
		body = append(body, bodyBlock{b.Span.Start, sliceSpan(inv.Lines, b.Span)})
	}
	sort.Slice(body, func(i, j int) bool { return body[i].start < body[j].start })
	for _, b := range body {
		add(b.lines)
	}

	var out []string
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "", "")
		}
		out = append(out, b...)
	}

	text := strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
	if text != string(source) && changes == 0 {
		changes = 1 // import or layout reshuffle only
	}
	return Result{
		Text:       text,
		Changes:    changes,
		Categories: sortedCategories(cats),
	}, nil
}

// importSection deduplicates, groups and sorts import statements. Attached
// comments travel with their statement; the sort key is the statement text.
func importSection(lines []string, imports []model.Import) []string {
	grouped := make([][]model.Import, groupCount)
	seen := map[string]struct{}{}
	for _, imp := range imports {
		if _, dup := seen[imp.Text]; dup {
			continue
		}
		seen[imp.Text] = struct{}{}
		g := importGroup(imp.Text)
		grouped[g] = append(grouped[g], imp)
	}

	var out []string
	for _, members := range grouped {
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Text < members[j].Text
		})
		if len(out) > 0 {
			out = append(out, "")
		}
		for _, imp := range members {
			out = append(out, sliceSpan(lines, imp.Span)...)
		}
	}
	return out
}

// importGroup classifies one import statement by its root module.
func importGroup(text string) int {
	switch {
	case strings.HasPrefix(text, "from __future__"):
		return groupFuture
	case strings.HasPrefix(text, "from ."):
		return groupRelative
	}

	rest := text
	switch {
	case strings.HasPrefix(text, "from "):
		rest = strings.TrimPrefix(text, "from ")
	case strings.HasPrefix(text, "import "):
		rest = strings.TrimPrefix(text, "import ")
	}
	root := rest
	if i := strings.IndexAny(rest, ". ,\t\n"); i >= 0 {
		root = rest[:i]
	}

	switch {
	case root == "odoo" || root == "openerp":
		return groupOdoo
	default:
		if _, ok := pythonStdlib[root]; ok {
			return groupStdlib
		}
		return groupThirdParty
	}
}
