package model

// Category classifies a strength or weakness term.
type Category string

// Categories. Other holds terms missing from the taxonomy.
const (
	Technical Category = "technical"
	Tactical  Category = "tactical"
	Mental    Category = "mental"
	Physical  Category = "physical"
	Other     Category = "other"
)

// Categories lists the buckets in display order.
var Categories = []Category{Technical, Tactical, Mental, Physical, Other}
