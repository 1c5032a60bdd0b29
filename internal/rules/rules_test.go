package rules

import (
	"testing"

	"github.com/odoorg/odoorg/internal/model"
)

func method(name string, decorators ...string) *model.Declaration {
	return &model.Declaration{Name: name, Kind: model.Method, Decorators: decorators}
}

func field(name, typeName string, attrs ...model.Attr) *model.Declaration {
	return &model.Declaration{Name: name, Kind: model.Field, TypeName: typeName, Attrs: attrs}
}

func TestNewRequiresFallback(t *testing.T) {
	t.Parallel()
	_, err := New([]Rule{
		{Priority: 10, Category: CatCompute, Match: NamePrefix("_compute_")},
	})
	if err == nil {
		t.Fatal("expected error for ruleset without catch-all")
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	t.Parallel()
	rs := MustNew([]Rule{
		{Priority: 100, Category: "HIGH", Match: NamePrefix("x_")},
		{Priority: 50, Category: "LOW", Match: NamePrefix("x_")},
		{Priority: 0, Category: "FALLBACK", Match: Always()},
	})
	if got := rs.Classify(method("x_thing")); got != "HIGH" {
		t.Errorf("Classify = %q, want HIGH", got)
	}
	if got := rs.Classify(method("other")); got != "FALLBACK" {
		t.Errorf("Classify = %q, want FALLBACK", got)
	}
}

func TestMethodCRUDBeatsNamingConvention(t *testing.T) {
	t.Parallel()
	// A method literally named "create" is framework CRUD even though a
	// naming-convention rule might otherwise claim it.
	if got := DefaultMethodRules.Classify(method("create")); got != CatCRUD {
		t.Errorf("create = %q, want %q", got, CatCRUD)
	}
	if got := DefaultMethodRules.Classify(method("write")); got != CatCRUD {
		t.Errorf("write = %q, want %q", got, CatCRUD)
	}
}

func TestMethodDecoratorBeatsName(t *testing.T) {
	t.Parallel()
	// Decorator evidence wins over a name that matches nothing specific.
	got := DefaultMethodRules.Classify(method("get_total", "api.depends"))
	if got != CatCompute {
		t.Errorf("decorated = %q, want %q", got, CatCompute)
	}

	// And over a conflicting name-based rule.
	got = DefaultMethodRules.Classify(method("action_validate", "api.constrains"))
	if got != CatConstraint {
		t.Errorf("constrained action_ = %q, want %q", got, CatConstraint)
	}
}

func TestMethodClassificationTable(t *testing.T) {
	t.Parallel()
	cases := []struct {
		decl *model.Declaration
		want model.Category
	}{
		{method("_compute_total", "api.depends"), CatCompute},
		{method("_compute_total"), CatCompute},
		{method("_inverse_total"), CatInverse},
		{method("_search_total"), CatSearch},
		{method("_selection_state"), CatSelection},
		{method("_default_currency"), CatDefault},
		{method("_check_dates", "api.constrains"), CatConstraint},
		{method("_onchange_partner", "api.onchange"), CatOnchange},
		{method("action_confirm"), CatAction},
		{method("button_cancel"), CatAction},
		{method("toggle_active"), CatAction},
		{method("name_get"), CatCRUD},
		{method("do_something"), CatPublic},
		{method("_helper"), CatPrivate},
	}
	for _, tc := range cases {
		if got := DefaultMethodRules.Classify(tc.decl); got != tc.want {
			t.Errorf("%s = %q, want %q", tc.decl.Name, got, tc.want)
		}
	}
}

func TestFieldClassificationTable(t *testing.T) {
	t.Parallel()
	cases := []struct {
		decl *model.Declaration
		want model.Category
	}{
		{field("name", "Char"), CatBasic},
		{field("state", "Selection"), CatFieldSel},
		{field("partner_id", "Many2one"), CatRelational},
		{field("line_ids", "One2many"), CatRelational},
		{field("total", "Float", model.Attr{Name: "compute", Value: `"_compute_total"`}), CatComputedFld},
		// compute keyword dominates the relational type
		{field("parent_id", "Many2one", model.Attr{Name: "compute", Value: `"_c"`}), CatComputedFld},
		{field("active", "Boolean"), CatTechnicalFld},
	}
	for _, tc := range cases {
		if got := DefaultFieldRules.Classify(tc.decl); got != tc.want {
			t.Errorf("%s = %q, want %q", tc.decl.Name, got, tc.want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	t.Parallel()
	d := method("_compute_x", "api.depends")
	first := DefaultMethodRules.Classify(d)
	for i := 0; i < 10; i++ {
		if got := DefaultMethodRules.Classify(d); got != first {
			t.Fatalf("classification changed across calls: %q then %q", first, got)
		}
	}
}

func TestClassifyTotality(t *testing.T) {
	t.Parallel()
	names := []string{"", "x", "_", "__init__", "CREATE", "weird-name", "action_"}
	for _, n := range names {
		got := DefaultMethodRules.Classify(method(n))
		if got == "" {
			t.Errorf("Classify(%q) returned empty category", n)
		}
	}
}

func TestCustomRuleInsertion(t *testing.T) {
	t.Parallel()
	// Users can insert a rule at an arbitrary priority without touching
	// existing rules.
	rs := MustNew([]Rule{
		{Priority: 95, Category: "MIGRATION", Match: NamePrefix("migrate_")},
		{Priority: 0, Category: CatPublic, Match: Always()},
	})
	if got := rs.Classify(method("migrate_v16")); got != "MIGRATION" {
		t.Errorf("migrate_v16 = %q, want MIGRATION", got)
	}
}

func TestPredicateCombinators(t *testing.T) {
	t.Parallel()
	p := AllOf(NamePrefix("get_"), NameSuffix("_total"))
	if !p(method("get_grand_total")) {
		t.Error("AllOf should match get_grand_total")
	}
	if p(method("get_thing")) {
		t.Error("AllOf should not match get_thing")
	}

	q := AnyOf(NameExact("a"), NameRegexp(`^b[0-9]+$`))
	if !q(method("b12")) {
		t.Error("AnyOf should match b12")
	}
	if q(method("c")) {
		t.Error("AnyOf should not match c")
	}
}
