package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/scheduling"
)

func plateRecipe() *catalog.Recipe {
	return &catalog.Recipe{
		Output:         "IronPlate",
		OutputQuantity: 1,
		Entity:         "Furnace",
		Duration:       3,
		Inputs: []catalog.Ingredient{
			{Resource: "IronOre", Quantity: 1},
		},
	}
}

func TestNewTask(t *testing.T) {
	task := scheduling.NewTask("req-1", "IronPlate", 5, plateRecipe(), 3, 2)

	assert.NotEmpty(t, task.ID())
	assert.Equal(t, "req-1", task.RequestID())
	assert.Equal(t, catalog.ResourceType("IronPlate"), task.Output())
	assert.Equal(t, 5, task.Quantity())
	assert.Equal(t, 3, task.Runs())
	assert.Equal(t, 2, task.StockDrawn())
	assert.Equal(t, scheduling.TaskStatePending, task.State())
	assert.False(t, task.IsTrivial())
	assert.False(t, task.IsTerminal())
	assert.Nil(t, task.WaitingOn())
}

func TestTask_Trivial(t *testing.T) {
	task := scheduling.NewTask("req-1", "IronOre", 4, nil, 0, 4)

	assert.True(t, task.IsTrivial())
	assert.Nil(t, task.Recipe())
}

func TestTask_AddDependent_Dedupes(t *testing.T) {
	task := scheduling.NewTask("req-1", "IronPlate", 1, plateRecipe(), 1, 0)

	task.AddDependent("a")
	task.AddDependent("b")
	task.AddDependent("a")

	assert.Equal(t, []string{"a", "b"}, task.Dependents())
}

func TestTask_SecuredInputs(t *testing.T) {
	task := scheduling.NewTask("req-1", "IronPlate", 3, plateRecipe(), 3, 0)

	task.SecureInput("IronOre", 2)
	task.SecureInput("IronOre", 1)
	task.SecureInput("Coal", 0) // ignored
	assert.Equal(t, 3, task.SecuredInput("IronOre"))
	assert.Equal(t, 0, task.SecuredInput("Coal"))

	task.MarkInputsSecured()
	assert.True(t, task.InputsSecured())

	drained := task.DrainSecuredInputs()
	assert.Equal(t, 3, drained["IronOre"])
	assert.Equal(t, 0, task.SecuredInput("IronOre"))
}

func TestTask_TakeHeld(t *testing.T) {
	task := scheduling.NewTask("req-1", "IronOre", 4, nil, 0, 4)

	sched := scheduling.NewScheduler()
	require.NoError(t, sched.Register(task))
	sched.Tick(1, completeAll{})

	require.Equal(t, scheduling.TaskStateCompleted, task.State())
	assert.Equal(t, 4, task.Held())
	assert.Equal(t, 4, task.TakeHeld())
	assert.Equal(t, 0, task.Held())
}

func TestTask_SuspendRequiresPolling(t *testing.T) {
	task := scheduling.NewTask("req-1", "IronPlate", 1, plateRecipe(), 1, 0)

	err := task.Suspend(scheduling.UponTaskCompletion("other"))
	require.Error(t, err)

	var invalid *scheduling.ErrInvalidTaskTransition
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, scheduling.TaskStatePending, invalid.From)
	assert.Equal(t, scheduling.TaskStateWaiting, invalid.To)
}

func TestTask_FailIsTerminal(t *testing.T) {
	task := scheduling.NewTask("req-1", "IronPlate", 1, plateRecipe(), 1, 0)

	require.NoError(t, task.Fail("no machine"))
	assert.Equal(t, scheduling.TaskStateFailed, task.State())
	assert.Equal(t, "no machine", task.FailureReason())
	assert.True(t, task.IsTerminal())

	// A terminal task cannot fail again.
	assert.Error(t, task.Fail("again"))
}

// completeAll is an Advancer that completes every task it polls, holding the
// task's full quantity.
type completeAll struct{}

func (completeAll) Advance(tick uint64, task *scheduling.Task) {
	_ = task.Complete(task.Quantity())
}
