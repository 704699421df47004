package catalog

// Catalog is the static mapping from a resource type to the recipe that
// produces it. It is built once, validated, and never mutated afterwards.
//
// Resources with no recipe are raw materials: they can only come from stock
// provided by the host simulation.
type Catalog struct {
	recipes map[ResourceType]*Recipe
	order   []ResourceType // declaration order, for deterministic iteration
}

// New builds a catalog from a list of recipes and validates it: quantities
// and durations must be positive, at most one recipe per output, and the
// dependency graph must be acyclic.
func New(recipes []Recipe) (*Catalog, error) {
	c := &Catalog{recipes: make(map[ResourceType]*Recipe, len(recipes))}

	for i := range recipes {
		r := recipes[i]
		if err := validateRecipe(&r); err != nil {
			return nil, err
		}
		if _, exists := c.recipes[r.Output]; exists {
			return nil, &ErrDuplicateRecipe{Output: r.Output}
		}
		c.recipes[r.Output] = &r
		c.order = append(c.order, r.Output)
	}

	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}
	return c, nil
}

func validateRecipe(r *Recipe) error {
	if r.Output == "" {
		return &ErrInvalidRecipe{Output: r.Output, Reason: "empty output resource"}
	}
	if r.OutputQuantity <= 0 {
		return &ErrInvalidRecipe{Output: r.Output, Reason: "output quantity must be positive"}
	}
	if r.Entity == "" {
		return &ErrInvalidRecipe{Output: r.Output, Reason: "missing entity type"}
	}
	if r.Duration == 0 {
		return &ErrInvalidRecipe{Output: r.Output, Reason: "duration must be positive"}
	}
	seen := make(map[ResourceType]bool, len(r.Inputs))
	for _, ing := range r.Inputs {
		if ing.Resource == "" {
			return &ErrInvalidRecipe{Output: r.Output, Reason: "empty input resource"}
		}
		if ing.Quantity <= 0 {
			return &ErrInvalidRecipe{Output: r.Output, Reason: "input quantity must be positive"}
		}
		if seen[ing.Resource] {
			return &ErrInvalidRecipe{Output: r.Output, Reason: "duplicate input " + string(ing.Resource)}
		}
		seen[ing.Resource] = true
	}
	return nil
}

// checkAcyclic walks the recipe graph with a three-color DFS on an explicit
// frame stack and reports the first cycle it finds.
func (c *Catalog) checkAcyclic() error {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // fully explored
	)
	type frame struct {
		res  ResourceType
		next int // next input to follow
	}
	color := make(map[ResourceType]int, len(c.recipes))
	path := make([]ResourceType, 0, len(c.recipes))

	for _, start := range c.order {
		if color[start] != white {
			continue
		}
		color[start] = gray
		path = append(path, start)
		stack := []*frame{{res: start}}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			r, ok := c.recipes[f.res]
			if !ok || f.next >= len(r.Inputs) {
				color[f.res] = black
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}
			ing := r.Inputs[f.next]
			f.next++
			switch color[ing.Resource] {
			case gray:
				// Close the cycle for the error message.
				first := 0
				for i, p := range path {
					if p == ing.Resource {
						first = i
						break
					}
				}
				cycle := append(append([]ResourceType{}, path[first:]...), ing.Resource)
				return &ErrCyclicRecipeDependency{Cycle: cycle}
			case black:
				continue
			}
			color[ing.Resource] = gray
			path = append(path, ing.Resource)
			stack = append(stack, &frame{res: ing.Resource})
		}
	}
	return nil
}

// RecipeFor returns the recipe producing the given resource, or
// ErrNoRecipeFound when the resource is a raw material or unknown.
func (c *Catalog) RecipeFor(res ResourceType) (*Recipe, error) {
	r, ok := c.recipes[res]
	if !ok {
		return nil, &ErrNoRecipeFound{Resource: res}
	}
	return r, nil
}

// HasRecipe reports whether the resource can be crafted at all.
func (c *Catalog) HasRecipe(res ResourceType) bool {
	_, ok := c.recipes[res]
	return ok
}

// Resources returns every craftable resource in declaration order.
func (c *Catalog) Resources() []ResourceType {
	out := make([]ResourceType, len(c.order))
	copy(out, c.order)
	return out
}

// EntityTypes returns the distinct entity types the catalog requires, in
// first-use order.
func (c *Catalog) EntityTypes() []EntityType {
	seen := make(map[EntityType]bool)
	var out []EntityType
	for _, res := range c.order {
		e := c.recipes[res].Entity
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// ChainDepth returns the length of the longest recipe chain below the given
// resource (1 for a raw material). This bounds resolution depth.
func (c *Catalog) ChainDepth(res ResourceType) int {
	return c.chainDepth(res, make(map[ResourceType]int, len(c.recipes)))
}

// chainDepth is a memoized post-order walk on an explicit frame stack.
// Acyclicity is guaranteed by New, so every walk terminates.
func (c *Catalog) chainDepth(res ResourceType, depths map[ResourceType]int) int {
	type frame struct {
		res     ResourceType
		next    int
		deepest int // deepest input chain seen so far
	}
	stack := []*frame{{res: res}}
	for {
		f := stack[len(stack)-1]
		r, ok := c.recipes[f.res]
		if !ok {
			depths[f.res] = 1
		} else if f.next < len(r.Inputs) {
			ing := r.Inputs[f.next]
			f.next++
			if d, done := depths[ing.Resource]; done {
				if d > f.deepest {
					f.deepest = d
				}
			} else {
				stack = append(stack, &frame{res: ing.Resource})
			}
			continue
		} else {
			depths[f.res] = f.deepest + 1
		}

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			return depths[f.res]
		}
		parent := stack[len(stack)-1]
		if d := depths[f.res]; d > parent.deepest {
			parent.deepest = d
		}
	}
}

// MaxChainDepth returns the longest recipe chain in the whole catalog.
func (c *Catalog) MaxChainDepth() int {
	depths := make(map[ResourceType]int, len(c.recipes))
	deepest := 0
	for _, res := range c.order {
		if d := c.chainDepth(res, depths); d > deepest {
			deepest = d
		}
	}
	return deepest
}
