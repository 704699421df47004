package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/Nadrieril/rustorio/internal/application/production"
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
)

const maxScenarioTicks = 1000

type productionContext struct {
	recipes []catalog.Recipe
	initial map[catalog.ResourceType]int

	stock  *inventory.MemoryStock
	engine *production.Engine

	handle  *production.RequestHandle
	settled bool
}

func (pc *productionContext) reset() {
	pc.recipes = nil
	pc.initial = make(map[catalog.ResourceType]int)
	pc.stock = nil
	pc.engine = nil
	pc.handle = nil
	pc.settled = false
}

// ensureEngine builds the engine on first use so Given steps can keep
// accumulating catalog rows and stock before anything runs.
func (pc *productionContext) ensureEngine() error {
	if pc.engine != nil {
		return nil
	}
	if len(pc.recipes) == 0 {
		return fmt.Errorf("no recipe catalog defined")
	}
	cat, err := catalog.New(pc.recipes)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}
	pc.stock = inventory.NewMemoryStock(pc.initial)
	pc.engine = production.NewEngine(cat, pc.stock)
	return nil
}

// Given steps

func (pc *productionContext) aRecipeCatalog(table *godog.Table) error {
	if pc.engine != nil {
		return fmt.Errorf("catalog cannot change after the engine started")
	}
	if len(table.Rows) < 2 {
		return fmt.Errorf("catalog table needs a header row and at least one recipe")
	}

	header := table.Rows[0]
	col := make(map[string]int, len(header.Cells))
	for i, cell := range header.Cells {
		col[cell.Value] = i
	}
	for _, name := range []string{"output", "output_quantity", "entity", "duration", "inputs"} {
		if _, ok := col[name]; !ok {
			return fmt.Errorf("catalog table is missing column %q", name)
		}
	}

	recipes := make([]catalog.Recipe, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		var outputQty, duration int
		if _, err := fmt.Sscanf(row.Cells[col["output_quantity"]].Value, "%d", &outputQty); err != nil {
			return fmt.Errorf("invalid output_quantity: %w", err)
		}
		if _, err := fmt.Sscanf(row.Cells[col["duration"]].Value, "%d", &duration); err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		inputs, err := parseIngredients(row.Cells[col["inputs"]].Value)
		if err != nil {
			return err
		}
		recipes = append(recipes, catalog.Recipe{
			Output:         catalog.ResourceType(row.Cells[col["output"]].Value),
			OutputQuantity: outputQty,
			Entity:         catalog.EntityType(row.Cells[col["entity"]].Value),
			Duration:       uint64(duration),
			Inputs:         inputs,
		})
	}
	pc.recipes = recipes
	return nil
}

// parseIngredients reads a "Res:qty, Res:qty" cell. An empty cell means the
// recipe consumes nothing.
func parseIngredients(cell string) ([]catalog.Ingredient, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	var inputs []catalog.Ingredient
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid ingredient %q, want Resource:Quantity", part)
		}
		var qty int
		if _, err := fmt.Sscanf(strings.TrimSpace(fields[1]), "%d", &qty); err != nil {
			return nil, fmt.Errorf("invalid ingredient quantity in %q: %w", part, err)
		}
		inputs = append(inputs, catalog.Ingredient{
			Resource: catalog.ResourceType(strings.TrimSpace(fields[0])),
			Quantity: qty,
		})
	}
	return inputs, nil
}

func (pc *productionContext) unitsInStock(quantity int, resource string) error {
	if pc.engine != nil {
		pc.stock.Deposit(catalog.ResourceType(resource), quantity)
		return nil
	}
	pc.initial[catalog.ResourceType(resource)] += quantity
	return nil
}

func (pc *productionContext) machinesOfType(count int, entity string) error {
	if err := pc.ensureEngine(); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		pc.engine.AddMachine(catalog.EntityType(entity), 1)
	}
	return nil
}

func (pc *productionContext) aMachineIsAdded(entity string) error {
	return pc.machinesOfType(1, entity)
}

// When steps

func (pc *productionContext) iRequestUnitsOf(quantity int, resource string) error {
	if err := pc.ensureEngine(); err != nil {
		return err
	}
	pc.handle = pc.engine.Request(catalog.ResourceType(resource), quantity)
	return nil
}

func (pc *productionContext) theEngineRunsUntilSettled() error {
	if pc.engine == nil {
		return fmt.Errorf("no engine running")
	}
	_, settled := pc.engine.RunToCompletion(maxScenarioTicks)
	pc.settled = settled
	if !settled {
		return fmt.Errorf("engine did not settle within %d ticks", maxScenarioTicks)
	}
	return nil
}

func (pc *productionContext) theEngineRunsForTicks(ticks int) error {
	if pc.engine == nil {
		return fmt.Errorf("no engine running")
	}
	for i := 0; i < ticks; i++ {
		pc.engine.Tick()
	}
	return nil
}

func (pc *productionContext) iCancelTheRequest() error {
	if pc.handle == nil {
		return fmt.Errorf("no request submitted")
	}
	return pc.engine.Cancel(pc.handle)
}

// Then steps

func (pc *productionContext) theRequestShouldBeCompleted() error {
	status := pc.engine.Status(pc.handle)
	if status.State != production.RequestStateCompleted {
		return fmt.Errorf("expected request COMPLETED, got %s (failure: %q)",
			status.State, status.FailureReason)
	}
	return nil
}

func (pc *productionContext) theRequestShouldFailWith(fragment string) error {
	status := pc.engine.Status(pc.handle)
	if status.State != production.RequestStateFailed {
		return fmt.Errorf("expected request FAILED, got %s", status.State)
	}
	if !strings.Contains(status.FailureReason, fragment) {
		return fmt.Errorf("failure reason %q does not contain %q", status.FailureReason, fragment)
	}
	return nil
}

func (pc *productionContext) theRequestShouldBeBlockedOn(entity string) error {
	status := pc.engine.Status(pc.handle)
	if status.State != production.RequestStateInProgress {
		return fmt.Errorf("expected request IN_PROGRESS, got %s (failure: %q)",
			status.State, status.FailureReason)
	}
	for _, blocked := range status.BlockedOn {
		if blocked.Entity == catalog.EntityType(entity) {
			return nil
		}
	}
	return fmt.Errorf("request is not blocked on %q, blocked on: %v", entity, status.BlockedOn)
}

func (pc *productionContext) stockShouldHoldUnitsOf(quantity int, resource string) error {
	got := pc.stock.Available(catalog.ResourceType(resource))
	if got != quantity {
		return fmt.Errorf("expected %d units of %s in stock, got %d", quantity, resource, got)
	}
	return nil
}

func (pc *productionContext) allMachinePoolsShouldBeIdle() error {
	for _, stat := range pc.engine.PoolStats() {
		if stat.QueueDepth != 0 {
			return fmt.Errorf("pool %s still has %d queued tasks", stat.Entity, stat.QueueDepth)
		}
		if stat.Load != 0 {
			return fmt.Errorf("pool %s still has load %d", stat.Entity, stat.Load)
		}
	}
	return nil
}

// Register steps

func InitializeProductionScenario(ctx *godog.ScenarioContext) {
	pc := &productionContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		pc.reset()
		return ctx, nil
	})

	ctx.Step(`^a recipe catalog:$`, pc.aRecipeCatalog)
	ctx.Step(`^(\d+) units? of "([^"]*)" in stock$`, pc.unitsInStock)
	ctx.Step(`^(\d+) "([^"]*)" machines?$`, pc.machinesOfType)
	ctx.Step(`^a "([^"]*)" machine is added$`, pc.aMachineIsAdded)
	ctx.Step(`^I request (\d+) units? of "([^"]*)"$`, pc.iRequestUnitsOf)
	ctx.Step(`^the engine runs until settled$`, pc.theEngineRunsUntilSettled)
	ctx.Step(`^the engine runs for (\d+) ticks$`, pc.theEngineRunsForTicks)
	ctx.Step(`^I cancel the request$`, pc.iCancelTheRequest)
	ctx.Step(`^the request should be completed$`, pc.theRequestShouldBeCompleted)
	ctx.Step(`^the request should fail with "([^"]*)"$`, pc.theRequestShouldFailWith)
	ctx.Step(`^the request should be blocked on "([^"]*)"$`, pc.theRequestShouldBeBlockedOn)
	ctx.Step(`^stock should hold (\d+) units? of "([^"]*)"$`, pc.stockShouldHoldUnitsOf)
	ctx.Step(`^all machine pools should be idle$`, pc.allMachinePoolsShouldBeIdle)
}
