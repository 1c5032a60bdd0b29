package attrorder

// genericOrder is the fallback attribute order for field types without a
// specific entry. Derived attributes (related/compute/inverse/search) come
// right after the label, behavioral flags after, presentation last.
var genericOrder = []string{
	"string",
	"related",
	"compute",
	"compute_sudo",
	"inverse",
	"search",
	"readonly",
	"store",
	"required",
	"index",
	"default",
	"states",
	"groups",
	"company_dependent",
	"copy",
	"translate",
	"tracking",
	"group_operator",
	"help",
}

var specificOrders = map[string][]string{
	"Many2one": {
		"comodel_name",
		"string",
		"related",
		"compute",
		"compute_sudo",
		"inverse",
		"search",
		"readonly",
		"store",
		"required",
		"index",
		"default",
		"domain",
		"context",
		"ondelete",
		"auto_join",
		"delegate",
		"check_company",
		"states",
		"groups",
		"copy",
		"tracking",
		"help",
	},
	"One2many": {
		"comodel_name",
		"inverse_name",
		"string",
		"related",
		"compute",
		"readonly",
		"store",
		"required",
		"domain",
		"context",
		"auto_join",
		"states",
		"groups",
		"copy",
		"help",
	},
	"Many2many": {
		"comodel_name",
		"relation",
		"column1",
		"column2",
		"string",
		"related",
		"compute",
		"readonly",
		"store",
		"required",
		"domain",
		"context",
		"check_company",
		"states",
		"groups",
		"copy",
		"help",
	},
	"Selection": {
		"selection",
		"string",
		"related",
		"compute",
		"inverse",
		"search",
		"selection_add",
		"ondelete",
		"readonly",
		"store",
		"required",
		"index",
		"default",
		"states",
		"groups",
		"copy",
		"tracking",
		"help",
	},
	"Monetary": {
		"string",
		"currency_field",
		"related",
		"compute",
		"inverse",
		"readonly",
		"store",
		"required",
		"default",
		"states",
		"groups",
		"copy",
		"tracking",
		"help",
	},
	"Char": {
		"string",
		"related",
		"compute",
		"inverse",
		"search",
		"size",
		"trim",
		"readonly",
		"store",
		"required",
		"index",
		"default",
		"states",
		"groups",
		"copy",
		"translate",
		"tracking",
		"help",
	},
}

// Default is the standard Odoo attribute order table.
var Default = NewTable(genericOrder, specificOrders)
