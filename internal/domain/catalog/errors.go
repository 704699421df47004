package catalog

import (
	"fmt"
	"strings"
)

// ErrNoRecipeFound indicates a resource has no known production path.
// Fatal for the resolution branch that needed it; never retried automatically.
type ErrNoRecipeFound struct {
	Resource ResourceType
}

func (e *ErrNoRecipeFound) Error() string {
	return fmt.Sprintf("no recipe found for resource %q", e.Resource)
}

// ErrCyclicRecipeDependency indicates the recipe graph contains a cycle.
// Detected at catalog load time; aborts the load.
type ErrCyclicRecipeDependency struct {
	Cycle []ResourceType
}

func (e *ErrCyclicRecipeDependency) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, r := range e.Cycle {
		parts[i] = string(r)
	}
	return fmt.Sprintf("cyclic recipe dependency: %s", strings.Join(parts, " -> "))
}

// ErrInvalidRecipe indicates a recipe failed load-time validation.
type ErrInvalidRecipe struct {
	Output ResourceType
	Reason string
}

func (e *ErrInvalidRecipe) Error() string {
	return fmt.Sprintf("invalid recipe for %q: %s", e.Output, e.Reason)
}

// ErrDuplicateRecipe indicates two recipes declare the same output resource.
type ErrDuplicateRecipe struct {
	Output ResourceType
}

func (e *ErrDuplicateRecipe) Error() string {
	return fmt.Sprintf("duplicate recipe for resource %q", e.Output)
}
