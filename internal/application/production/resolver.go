package production

import (
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
	"github.com/Nadrieril/rustorio/internal/domain/scheduling"
	"github.com/Nadrieril/rustorio/pkg/utils"
)

// resolver decomposes a requested resource into a tree of production tasks.
// Stock is consumed greedily at each node; only the shortfall is scheduled
// for crafting. Resolution is all-or-nothing: when any branch has no recipe,
// every stock draw made so far is returned.
//
// The walk uses an explicit frame stack instead of native recursion, so
// resolution depth is bounded by memory rather than call stack, however deep
// the recipe chain.
type resolver struct {
	catalog *catalog.Catalog
	stock   inventory.Stock
}

type stockDraw struct {
	resource catalog.ResourceType
	amount   int
}

// buildFrame is one node of the decomposition in flight. task is nil until
// the node has been entered (stock drawn, shortfall computed); next tracks
// which recipe input to expand on the following visit.
type buildFrame struct {
	resource catalog.ResourceType
	quantity int
	task     *scheduling.Task
	recipe   *catalog.Recipe
	runs     int
	next     int
}

// resolve returns every task in the tree (children before parents) and the
// root task for the requested resource.
func (r *resolver) resolve(resource catalog.ResourceType, quantity int, requestID string) ([]*scheduling.Task, *scheduling.Task, error) {
	var tasks []*scheduling.Task
	var draws []stockDraw
	var root *scheduling.Task

	stack := []*buildFrame{{resource: resource, quantity: quantity}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if f.task == nil {
			take := utils.Min(f.quantity, r.stock.Available(f.resource))
			if take > 0 {
				if err := r.stock.Take(f.resource, take); err != nil {
					rollback(r.stock, draws)
					return nil, nil, err
				}
				draws = append(draws, stockDraw{resource: f.resource, amount: take})
			}

			missing := f.quantity - take
			if missing <= 0 {
				f.task = scheduling.NewTask(requestID, f.resource, f.quantity, nil, 0, take)
				tasks = append(tasks, f.task)
				stack = stack[:len(stack)-1]
				root = attach(stack, f.task, root)
				continue
			}

			recipe, err := r.catalog.RecipeFor(f.resource)
			if err != nil {
				rollback(r.stock, draws)
				return nil, nil, err
			}
			f.recipe = recipe
			f.runs = recipe.RunsFor(missing)
			f.task = scheduling.NewTask(requestID, f.resource, f.quantity, recipe, f.runs, take)
		}

		if f.next < len(f.recipe.Inputs) {
			input := f.recipe.Inputs[f.next]
			f.next++
			stack = append(stack, &buildFrame{
				resource: input.Resource,
				quantity: f.runs * input.Quantity,
			})
			continue
		}

		// Every input expanded; the node is complete.
		tasks = append(tasks, f.task)
		stack = stack[:len(stack)-1]
		root = attach(stack, f.task, root)
	}
	return tasks, root, nil
}

// attach links a finished node to the frame below it. Only the bottom frame
// has no parent; it is the root.
func attach(stack []*buildFrame, task *scheduling.Task, root *scheduling.Task) *scheduling.Task {
	if len(stack) == 0 {
		return task
	}
	stack[len(stack)-1].task.AddDependency(task.ID())
	return root
}

func rollback(stock inventory.Stock, draws []stockDraw) {
	for _, d := range draws {
		stock.Deposit(d.resource, d.amount)
	}
}
