package catalog

// Recipe describes how one resource is produced: which inputs a single
// crafting run consumes, which entity type executes it, how many ticks a run
// takes, and how many units of output a run yields.
//
// Recipes are immutable once the catalog is loaded. The input list keeps the
// order it was declared in so that decomposition is deterministic.
type Recipe struct {
	Output         ResourceType
	OutputQuantity int
	Inputs         []Ingredient
	Entity         EntityType
	Duration       uint64 // ticks per run
}

// InputQuantity returns the per-run quantity of the given input resource,
// or zero if the recipe does not consume it.
func (r *Recipe) InputQuantity(res ResourceType) int {
	for _, ing := range r.Inputs {
		if ing.Resource == res {
			return ing.Quantity
		}
	}
	return 0
}

// InputUnitsPerRun returns the total number of input units one run consumes,
// summed across all ingredients. This is the unit in which machine load is
// measured.
func (r *Recipe) InputUnitsPerRun() int {
	total := 0
	for _, ing := range r.Inputs {
		total += ing.Quantity
	}
	return total
}

// RunsFor returns the number of runs needed to yield at least quantity units
// of output.
func (r *Recipe) RunsFor(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	return (quantity + r.OutputQuantity - 1) / r.OutputQuantity
}
