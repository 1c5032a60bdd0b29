package rules

import "github.com/odoorg/odoorg/internal/model"

// Method categories, in canonical emission order. The vocabulary and order are
// configuration: changing them changes output, not correctness.
const (
	CatDefault    model.Category = "DEFAULT"
	CatCompute    model.Category = "COMPUTE"
	CatInverse    model.Category = "INVERSE"
	CatSearch     model.Category = "SEARCH"
	CatSelection  model.Category = "SELECTION"
	CatConstraint model.Category = "CONSTRAINT"
	CatOnchange   model.Category = "ONCHANGE"
	CatCRUD       model.Category = "CRUD"
	CatAction     model.Category = "ACTION"
	CatPublic     model.Category = "PUBLIC"
	CatPrivate    model.Category = "PRIVATE"
)

// Field categories.
const (
	CatBasic        model.Category = "BASIC"
	CatFieldSel     model.Category = "SELECTION_FIELD"
	CatRelational   model.Category = "RELATIONAL"
	CatComputedFld  model.Category = "COMPUTED"
	CatTechnicalFld model.Category = "TECHNICAL"
)

// MethodOrder is the canonical emission order of method categories.
var MethodOrder = []model.Category{
	CatDefault,
	CatCompute,
	CatInverse,
	CatSearch,
	CatSelection,
	CatConstraint,
	CatOnchange,
	CatCRUD,
	CatAction,
	CatPublic,
	CatPrivate,
}

// FieldOrder is the canonical emission order of field categories.
var FieldOrder = []model.Category{
	CatBasic,
	CatFieldSel,
	CatRelational,
	CatComputedFld,
	CatTechnicalFld,
}

// SectionLabels are the optional header comments emitted between groups.
var SectionLabels = map[model.Category]string{
	CatDefault:      "Default methods",
	CatCompute:      "Compute methods",
	CatInverse:      "Inverse methods",
	CatSearch:       "Search methods",
	CatSelection:    "Selection methods",
	CatConstraint:   "Constraints",
	CatOnchange:     "Onchange methods",
	CatCRUD:         "CRUD overrides",
	CatAction:       "Action methods",
	CatPublic:       "Business methods",
	CatPrivate:      "Private helpers",
	CatBasic:        "Fields",
	CatFieldSel:     "Selection fields",
	CatRelational:   "Relational fields",
	CatComputedFld:  "Computed fields",
	CatTechnicalFld: "Technical fields",
}

// crudNames are framework-reserved ORM entry points. Framework identity
// trumps every naming heuristic: a method literally named "create" is CRUD
// even if an action-style rule would otherwise claim it.
var crudNames = []string{
	"create", "write", "unlink", "copy", "read", "browse", "search",
	"search_count", "search_read", "default_get", "name_get", "name_search",
	"name_create", "fields_get", "fields_view_get", "init",
}

// DefaultMethodRules is the standard classification ladder for methods:
// framework identity > decorator evidence > naming convention > fallback.
var DefaultMethodRules = MustNew([]Rule{
	{Priority: 100, Category: CatCRUD, Match: NameExact(crudNames...)},

	{Priority: 90, Category: CatCompute, Match: HasDecorator("api.depends")},
	{Priority: 90, Category: CatConstraint, Match: HasDecorator("api.constrains")},
	{Priority: 90, Category: CatOnchange, Match: HasDecorator("api.onchange")},

	{Priority: 60, Category: CatCompute, Match: NamePrefix("_compute_")},
	{Priority: 60, Category: CatInverse, Match: NamePrefix("_inverse_")},
	{Priority: 60, Category: CatSearch, Match: NamePrefix("_search_")},
	{Priority: 60, Category: CatSelection, Match: NamePrefix("_selection_")},
	{Priority: 60, Category: CatDefault, Match: NamePrefix("_default_")},
	{Priority: 60, Category: CatConstraint, Match: NamePrefix("_check_")},
	{Priority: 60, Category: CatOnchange, Match: NamePrefix("_onchange_")},
	{Priority: 60, Category: CatAction, Match: AnyOf(
		NamePrefix("action_"),
		NamePrefix("button_"),
		NamePrefix("toggle_"),
	)},

	{Priority: 10, Category: CatPrivate, Match: NamePrefix("_")},
	{Priority: 0, Category: CatPublic, Match: Always()},
})

// relationalTypes covers every field type that points at another model.
var relationalTypes = []string{
	"Many2one", "One2many", "Many2many", "Reference", "Many2oneReference",
}

// technicalNames are bookkeeping fields conventionally kept together.
var technicalNames = []string{"active", "sequence", "color", "company_id"}

// DefaultFieldRules is the standard classification ladder for fields.
// A compute or related keyword dominates the field's declared type: the
// COMPUTED group collects derived fields regardless of what they store.
var DefaultFieldRules = MustNew([]Rule{
	{Priority: 90, Category: CatComputedFld, Match: HasAttr("compute", "related")},
	{Priority: 70, Category: CatTechnicalFld, Match: NameExact(technicalNames...)},
	{Priority: 60, Category: CatRelational, Match: TypeIn(relationalTypes...)},
	{Priority: 50, Category: CatFieldSel, Match: TypeIn("Selection")},
	{Priority: 0, Category: CatBasic, Match: Always()},
})

// CategoryRank returns the emission index of c within order, or len(order)
// for unknown categories so they sort after every configured group.
func CategoryRank(order []model.Category, c model.Category) int {
	for i, o := range order {
		if o == c {
			return i
		}
	}
	return len(order)
}
