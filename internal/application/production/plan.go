package production

import (
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
	"github.com/Nadrieril/rustorio/pkg/utils"
)

// PlanNode is one level of a previewed production plan.
type PlanNode struct {
	Resource  catalog.ResourceType
	Quantity  int
	FromStock int
	Runs      int
	Entity    catalog.EntityType
	Duration  uint64
	Children  []*PlanNode
}

// Crafted reports whether this node needs any machine work.
func (n *PlanNode) Crafted() bool { return n.Runs > 0 }

// TotalRuns sums the machine runs across the whole subtree.
func (n *PlanNode) TotalRuns() int {
	total := 0
	stack := []*PlanNode{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total += node.Runs
		stack = append(stack, node.Children...)
	}
	return total
}

// planFrame tracks how far a node's recipe inputs have been expanded.
type planFrame struct {
	node   *PlanNode
	recipe *catalog.Recipe
	next   int
}

// Plan previews how a request would decompose against the current stock
// without consuming anything or scheduling tasks. Stock is spent greedily in
// the same depth-first order the resolver uses, so the preview matches what
// submitting the request would do. Like the resolver, the walk runs on an
// explicit frame stack.
func Plan(cat *catalog.Catalog, stock inventory.Stock, resource catalog.ResourceType, quantity int) (*PlanNode, error) {
	remaining := make(map[catalog.ResourceType]int)

	rootFrame, err := enterPlanNode(cat, stock, remaining, resource, quantity)
	if err != nil {
		return nil, err
	}

	stack := []*planFrame{rootFrame}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.recipe == nil || f.next >= len(f.recipe.Inputs) {
			stack = stack[:len(stack)-1]
			continue
		}
		input := f.recipe.Inputs[f.next]
		f.next++
		child, err := enterPlanNode(cat, stock, remaining, input.Resource, f.node.Runs*input.Quantity)
		if err != nil {
			return nil, err
		}
		f.node.Children = append(f.node.Children, child.node)
		stack = append(stack, child)
	}
	return rootFrame.node, nil
}

// enterPlanNode draws from the shadow stock and sizes the node's machine
// work. The recipe comes back on the frame so the caller can expand inputs.
func enterPlanNode(cat *catalog.Catalog, stock inventory.Stock, remaining map[catalog.ResourceType]int,
	resource catalog.ResourceType, quantity int) (*planFrame, error) {
	if _, seen := remaining[resource]; !seen {
		remaining[resource] = stock.Available(resource)
	}
	take := utils.Min(quantity, remaining[resource])
	if take < 0 {
		take = 0
	}
	remaining[resource] -= take

	node := &PlanNode{Resource: resource, Quantity: quantity, FromStock: take}
	if quantity-take <= 0 {
		return &planFrame{node: node}, nil
	}

	recipe, err := cat.RecipeFor(resource)
	if err != nil {
		return nil, err
	}
	node.Runs = recipe.RunsFor(quantity - take)
	node.Entity = recipe.Entity
	node.Duration = recipe.Duration
	return &planFrame{node: node, recipe: recipe}, nil
}
