package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadrieril/rustorio/internal/application/production"
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
	"github.com/Nadrieril/rustorio/test/helpers"
)

func newGearEngine(t *testing.T, stock map[catalog.ResourceType]int) (*production.Engine, *inventory.MemoryStock) {
	t.Helper()
	memStock := inventory.NewMemoryStock(stock)
	engine := production.NewEngine(helpers.GearCatalog(t), memStock)
	return engine, memStock
}

func TestEngine_RequestFromStockCompletesNextTick(t *testing.T) {
	engine, stock := newGearEngine(t, map[catalog.ResourceType]int{"GearWheel": 5})

	handle := engine.Request("GearWheel", 3)
	assert.Equal(t, production.RequestStatePending, engine.Status(handle).State)

	engine.Tick()
	st := engine.Status(handle)
	assert.Equal(t, production.RequestStateCompleted, st.State)

	// The requested units were handed back to the host's stock.
	assert.Equal(t, 5, stock.Available("GearWheel"))
}

func TestEngine_FullProductionChain(t *testing.T) {
	engine, stock := newGearEngine(t, nil)
	engine.AddMachine("MiningDrill", 1)
	engine.AddMachine("Furnace", 1)
	engine.AddMachine("Assembler", 1)

	handle := engine.Request("GearWheel", 2)
	lastTick, settled := engine.RunToCompletion(100)

	require.True(t, settled)
	assert.Equal(t, production.RequestStateCompleted, engine.Status(handle).State)
	assert.Equal(t, 2, stock.Available("GearWheel"))
	assert.Equal(t, 0, stock.Available("IronPlate"))
	assert.Equal(t, 0, stock.Available("IronOre"))

	// 4 ore runs (tick 1..9), 4 plate runs (10..22), 2 gear runs (23..25).
	assert.Equal(t, uint64(25), lastTick)

	// Everything collected: no residual queue or load.
	for _, s := range engine.PoolStats() {
		assert.Equal(t, 0, s.QueueDepth)
		assert.Equal(t, 0, s.Load)
	}
}

func TestEngine_PartialStockOnlyCraftsShortfall(t *testing.T) {
	engine, stock := newGearEngine(t, map[catalog.ResourceType]int{"IronPlate": 3, "IronOre": 10})
	engine.AddMachine("MiningDrill", 1)
	engine.AddMachine("Furnace", 1)
	engine.AddMachine("Assembler", 1)

	handle := engine.Request("GearWheel", 2)
	_, settled := engine.RunToCompletion(100)

	require.True(t, settled)
	assert.Equal(t, production.RequestStateCompleted, engine.Status(handle).State)
	assert.Equal(t, 2, stock.Available("GearWheel"))
	// 4 plates needed, 3 from stock, 1 crafted from 1 ore.
	assert.Equal(t, 0, stock.Available("IronPlate"))
	assert.Equal(t, 9, stock.Available("IronOre"))
}

func TestEngine_SurplusDepositedToStock(t *testing.T) {
	cat, err := catalog.New([]catalog.Recipe{
		{
			Output:         "TransportBelt",
			OutputQuantity: 2,
			Entity:         "Assembler",
			Duration:       1,
		},
	})
	require.NoError(t, err)

	stock := inventory.NewMemoryStock(nil)
	engine := production.NewEngine(cat, stock)
	engine.AddMachine("Assembler", 1)

	handle := engine.Request("TransportBelt", 3)
	_, settled := engine.RunToCompletion(20)

	require.True(t, settled)
	assert.Equal(t, production.RequestStateCompleted, engine.Status(handle).State)
	// 2 runs yield 4 belts for a request of 3: all of it ends up in stock.
	assert.Equal(t, 4, stock.Available("TransportBelt"))
}

func TestEngine_NoRecipeFailsRequestUpFront(t *testing.T) {
	cat, err := catalog.New([]catalog.Recipe{
		{
			Output:         "GearWheel",
			OutputQuantity: 1,
			Entity:         "Assembler",
			Duration:       1,
			Inputs: []catalog.Ingredient{
				{Resource: "IronPlate", Quantity: 2},
			},
		},
	})
	require.NoError(t, err)

	stock := inventory.NewMemoryStock(map[catalog.ResourceType]int{"IronPlate": 1})
	engine := production.NewEngine(cat, stock)
	engine.AddMachine("Assembler", 1)

	handle := engine.Request("GearWheel", 2)
	st := engine.Status(handle)
	assert.Equal(t, production.RequestStateFailed, st.State)
	assert.Contains(t, st.FailureReason, "IronPlate")

	// The resolver's stock draws were rolled back.
	assert.Equal(t, 1, stock.Available("IronPlate"))

	// Nothing was ever scheduled.
	for _, s := range engine.PoolStats() {
		assert.Equal(t, 0, s.QueueDepth)
		assert.Equal(t, 0, s.Load)
	}
}

func TestEngine_MissingMachineTypeBlocksUntilPlaced(t *testing.T) {
	engine, stock := newGearEngine(t, map[catalog.ResourceType]int{"IronPlate": 4})
	// No Assembler on the floor.

	handle := engine.Request("GearWheel", 2)
	_, settled := engine.RunToCompletion(10)
	require.False(t, settled)

	st := engine.Status(handle)
	require.Equal(t, production.RequestStateInProgress, st.State)
	require.Len(t, st.BlockedOn, 1)
	assert.Equal(t, catalog.EntityType("Assembler"), st.BlockedOn[0].Entity)
	assert.True(t, st.BlockedOn[0].NoMachines)
	assert.Equal(t, 1, st.BlockedOn[0].Waiting)

	// Placing the machine mid-run unblocks the queued task.
	engine.AddMachine("Assembler", 1)
	_, settled = engine.RunToCompletion(10)
	require.True(t, settled)
	assert.Equal(t, production.RequestStateCompleted, engine.Status(handle).State)
	assert.Equal(t, 2, stock.Available("GearWheel"))
}

func TestEngine_FIFOAcrossRequests(t *testing.T) {
	cat, err := catalog.New([]catalog.Recipe{
		{
			Output:         "IronPlate",
			OutputQuantity: 1,
			Entity:         "Furnace",
			Duration:       2,
			Inputs: []catalog.Ingredient{
				{Resource: "IronOre", Quantity: 1},
			},
		},
	})
	require.NoError(t, err)

	stock := inventory.NewMemoryStock(map[catalog.ResourceType]int{"IronOre": 2})
	engine := production.NewEngine(cat, stock)
	engine.AddMachine("Furnace", 1)

	first := engine.Request("IronPlate", 1)
	second := engine.Request("IronPlate", 1)

	// The first request finishes strictly before the second: one machine,
	// first-come first-served.
	var firstDone, secondDone uint64
	for tick := uint64(1); tick <= 20; tick++ {
		engine.Tick()
		if firstDone == 0 && engine.Status(first).State == production.RequestStateCompleted {
			firstDone = tick
		}
		if secondDone == 0 && engine.Status(second).State == production.RequestStateCompleted {
			secondDone = tick
		}
	}
	require.NotZero(t, firstDone)
	require.NotZero(t, secondDone)
	assert.Less(t, firstDone, secondDone)
	assert.Equal(t, 2, stock.Available("IronPlate"))
}

func TestEngine_CancelDepositsCompletedSubtasks(t *testing.T) {
	engine, stock := newGearEngine(t, nil)
	engine.AddMachine("MiningDrill", 1)
	engine.AddMachine("Furnace", 1)
	engine.AddMachine("Assembler", 1)

	handle := engine.Request("GearWheel", 2)

	// Run until the ore subtask has completed (4 runs of 2 ticks, collected
	// on tick 9) but the plate task has not yet secured its inputs.
	for i := 0; i < 9; i++ {
		engine.Tick()
	}

	require.NoError(t, engine.Cancel(handle))

	st := engine.Status(handle)
	assert.Equal(t, production.RequestStateFailed, st.State)
	assert.Equal(t, "request cancelled", st.FailureReason)

	// The finished ore was salvaged into stock; nothing else was produced.
	assert.Equal(t, 4, stock.Available("IronOre"))
	assert.Equal(t, 0, stock.Available("IronPlate"))
	assert.Equal(t, 0, stock.Available("GearWheel"))

	// No orphaned queue entries or machine batches.
	_, settled := engine.RunToCompletion(5)
	assert.True(t, settled)
	for _, s := range engine.PoolStats() {
		assert.Equal(t, 0, s.QueueDepth)
		assert.Equal(t, 0, s.Load)
	}
}

func TestEngine_CancelUnknownRequest(t *testing.T) {
	engine, _ := newGearEngine(t, nil)

	err := engine.Cancel(&production.RequestHandle{})
	require.Error(t, err)

	var notFound *production.ErrRequestNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestEngine_BacklogReportsQueueDepth(t *testing.T) {
	engine, _ := newGearEngine(t, map[catalog.ResourceType]int{"IronPlate": 8})
	engine.AddMachine("Assembler", 1)

	engine.Request("GearWheel", 2)
	engine.Request("GearWheel", 2)
	engine.Tick()

	backlog := engine.Backlog()
	assert.Equal(t, 1, backlog["Assembler"])
}

func TestEngine_DeepRecipeChainCompletes(t *testing.T) {
	const depth = 512
	cat := deepChainCatalog(t, depth)
	engine := production.NewEngine(cat, inventory.NewMemoryStock(nil))
	engine.AddMachine("Mill", 1)

	h := engine.Request("Stage0", 1)
	_, settled := engine.RunToCompletion(5000)
	require.True(t, settled)
	assert.Equal(t, production.RequestStateCompleted, engine.Status(h).State)
}
