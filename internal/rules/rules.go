// Package rules implements the priority-ordered rule matcher that assigns a
// category to each field or method declaration. Rules are data, not control
// flow: a RuleSet is an immutable table built once at startup, and
// classification is a pure function of the declaration's own fields.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/odoorg/odoorg/internal/model"
)

// Predicate decides whether a declaration matches a rule.
type Predicate func(*model.Declaration) bool

// Rule maps matching declarations to a category. Higher priority wins.
type Rule struct {
	Priority int
	Category model.Category
	Match    Predicate
}

// RuleSet is an ordered collection of rules for one declaration kind.
// Construction sorts by descending priority and requires a catch-all rule so
// classification is total.
type RuleSet struct {
	rules []Rule
}

// New builds a RuleSet. It fails if no rule is a catch-all (nil predicate,
// as returned by Always), since a RuleSet without a fallback is a
// configuration defect that would surface as silent misclassification later.
func New(rules []Rule) (*RuleSet, error) {
	hasFallback := false
	for _, r := range rules {
		if r.Match == nil {
			hasFallback = true
			break
		}
	}
	if !hasFallback {
		return nil, fmt.Errorf("ruleset has no catch-all rule")
	}

	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &RuleSet{rules: sorted}, nil
}

// MustNew is New for static rule tables; it panics on a defective table.
func MustNew(rules []Rule) *RuleSet {
	rs, err := New(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// Classify returns the category of the first matching rule. It is total for
// any declaration because construction guarantees a catch-all.
func (rs *RuleSet) Classify(d *model.Declaration) model.Category {
	for _, r := range rs.rules {
		if r.Match == nil || r.Match(d) {
			return r.Category
		}
	}
	// Unreachable when the set was built through New; treated as a loud
	// defect rather than a silent drop.
	panic(fmt.Sprintf("no rule matched declaration %q", d.Name))
}

// Always returns the catch-all predicate: a nil Predicate matches everything.
func Always() Predicate { return nil }

// NamePrefix matches declarations whose name starts with prefix.
func NamePrefix(prefix string) Predicate {
	return func(d *model.Declaration) bool {
		return strings.HasPrefix(d.Name, prefix)
	}
}

// NameSuffix matches declarations whose name ends with suffix.
func NameSuffix(suffix string) Predicate {
	return func(d *model.Declaration) bool {
		return strings.HasSuffix(d.Name, suffix)
	}
}

// NameExact matches declarations whose name equals one of names.
func NameExact(names ...string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(d *model.Declaration) bool {
		_, ok := set[d.Name]
		return ok
	}
}

// NameRegexp matches declarations whose name matches the pattern.
func NameRegexp(pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return func(d *model.Declaration) bool {
		return re.MatchString(d.Name)
	}
}

// HasDecorator matches methods carrying any of the named decorators.
func HasDecorator(names ...string) Predicate {
	return func(d *model.Declaration) bool {
		for _, n := range names {
			if d.HasDecorator(n) {
				return true
			}
		}
		return false
	}
}

// HasAttr matches fields carrying any of the named keyword attributes.
func HasAttr(names ...string) Predicate {
	return func(d *model.Declaration) bool {
		for _, n := range names {
			if d.HasAttr(n) {
				return true
			}
		}
		return false
	}
}

// TypeIn matches fields whose type is one of names.
func TypeIn(names ...string) Predicate {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(d *model.Declaration) bool {
		_, ok := set[d.TypeName]
		return ok
	}
}

// AnyOf matches when at least one predicate matches.
func AnyOf(preds ...Predicate) Predicate {
	return func(d *model.Declaration) bool {
		for _, p := range preds {
			if p(d) {
				return true
			}
		}
		return false
	}
}

// AllOf matches when every predicate matches.
func AllOf(preds ...Predicate) Predicate {
	return func(d *model.Declaration) bool {
		for _, p := range preds {
			if !p(d) {
				return false
			}
		}
		return true
	}
}
