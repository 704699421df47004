package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nadrieril/rustorio/internal/domain/scheduling"
)

// recordingAdvancer records every poll and optionally runs a script per task.
type recordingAdvancer struct {
	polls   map[string][]uint64
	scripts map[string]func(tick uint64, task *scheduling.Task)
}

func newRecordingAdvancer() *recordingAdvancer {
	return &recordingAdvancer{
		polls:   make(map[string][]uint64),
		scripts: make(map[string]func(uint64, *scheduling.Task)),
	}
}

func (a *recordingAdvancer) Advance(tick uint64, task *scheduling.Task) {
	a.polls[task.ID()] = append(a.polls[task.ID()], tick)
	if script, ok := a.scripts[task.ID()]; ok {
		script(tick, task)
	}
}

func newTask(t *testing.T) *scheduling.Task {
	t.Helper()
	return scheduling.NewTask("req-1", "IronPlate", 1, plateRecipe(), 1, 0)
}

func TestScheduler_RegisteredTaskPolledNextTick(t *testing.T) {
	sched := scheduling.NewScheduler()
	adv := newRecordingAdvancer()
	task := newTask(t)

	require.NoError(t, sched.Register(task))
	assert.Equal(t, 1, sched.RunnableCount())

	sched.Tick(1, adv)
	assert.Equal(t, []uint64{1}, adv.polls[task.ID()])
	assert.Equal(t, scheduling.TaskStatePolling, task.State())

	// Still runnable: polled again on the next tick.
	sched.Tick(2, adv)
	assert.Equal(t, []uint64{1, 2}, adv.polls[task.ID()])
}

func TestScheduler_RegisterTwiceFails(t *testing.T) {
	sched := scheduling.NewScheduler()
	task := newTask(t)

	require.NoError(t, sched.Register(task))
	err := sched.Register(task)
	require.Error(t, err)

	var already *scheduling.ErrTaskAlreadyRegistered
	assert.ErrorAs(t, err, &already)
}

func TestScheduler_SuspendedTaskNotPolled(t *testing.T) {
	sched := scheduling.NewScheduler()
	adv := newRecordingAdvancer()
	task := newTask(t)
	require.NoError(t, sched.Register(task))

	adv.scripts[task.ID()] = func(tick uint64, task *scheduling.Task) {
		_ = task.Suspend(scheduling.UponProducerOutput("Furnace", 1))
	}

	sched.Tick(1, adv)
	require.Equal(t, scheduling.TaskStateWaiting, task.State())
	require.NotNil(t, task.WaitingOn())
	assert.Equal(t, scheduling.WaitOnProducer, task.WaitingOn().Kind)
	assert.Equal(t, 0, sched.RunnableCount())

	sched.Tick(2, adv)
	assert.Equal(t, []uint64{1}, adv.polls[task.ID()], "waiting task must not be polled")
}

func TestScheduler_WakeRunsNextTick(t *testing.T) {
	sched := scheduling.NewScheduler()
	adv := newRecordingAdvancer()
	task := newTask(t)
	require.NoError(t, sched.Register(task))

	adv.scripts[task.ID()] = func(tick uint64, task *scheduling.Task) {
		if tick == 1 {
			_ = task.Suspend(scheduling.UponTaskCompletion("other"))
		}
	}

	sched.Tick(1, adv)
	sched.Tick(2, adv)
	require.Equal(t, []uint64{1}, adv.polls[task.ID()])

	sched.Wake(task.ID())
	assert.Equal(t, scheduling.TaskStatePolling, task.State())

	sched.Tick(3, adv)
	assert.Equal(t, []uint64{1, 3}, adv.polls[task.ID()])
}

func TestScheduler_WakeNonWaitingIsNoop(t *testing.T) {
	sched := scheduling.NewScheduler()
	adv := newRecordingAdvancer()
	task := newTask(t)
	require.NoError(t, sched.Register(task))
	sched.Tick(1, adv)

	// Polling task: waking it again must not queue a second poll.
	sched.Wake(task.ID())
	sched.Tick(2, adv)
	assert.Equal(t, []uint64{1, 2}, adv.polls[task.ID()])

	// Unknown task: no panic, no effect.
	sched.Wake("does-not-exist")
}

func TestScheduler_WakeDuringPassDefersToNextTick(t *testing.T) {
	sched := scheduling.NewScheduler()
	adv := newRecordingAdvancer()
	waiter := newTask(t)
	waker := scheduling.NewTask("req-1", "IronOre", 1, nil, 0, 1)

	require.NoError(t, sched.Register(waiter))
	require.NoError(t, sched.Register(waker))

	adv.scripts[waiter.ID()] = func(tick uint64, task *scheduling.Task) {
		if tick == 1 {
			_ = task.Suspend(scheduling.UponTaskCompletion(waker.ID()))
		}
	}
	adv.scripts[waker.ID()] = func(tick uint64, task *scheduling.Task) {
		if tick == 2 {
			sched.Wake(waiter.ID())
			_ = task.Complete(task.Quantity())
		}
	}

	sched.Tick(1, adv)
	require.Equal(t, scheduling.TaskStateWaiting, waiter.State())

	sched.Tick(2, adv)
	// The wake happened mid-pass: the waiter runs on tick 3, not tick 2.
	assert.Equal(t, []uint64{1}, adv.polls[waiter.ID()])

	sched.Tick(3, adv)
	assert.Equal(t, []uint64{1, 3}, adv.polls[waiter.ID()])
}

func TestScheduler_SuspendAndRewakeSameTickPollsOnce(t *testing.T) {
	sched := scheduling.NewScheduler()
	adv := newRecordingAdvancer()
	first := newTask(t)
	second := scheduling.NewTask("req-1", "IronOre", 1, nil, 0, 1)

	require.NoError(t, sched.Register(first))
	require.NoError(t, sched.Register(second))

	adv.scripts[first.ID()] = func(tick uint64, task *scheduling.Task) {
		if tick == 1 {
			_ = task.Suspend(scheduling.UponTaskCompletion(second.ID()))
		}
	}
	adv.scripts[second.ID()] = func(tick uint64, task *scheduling.Task) {
		if tick == 1 {
			// The first task suspended earlier in this same pass.
			sched.Wake(first.ID())
			_ = task.Complete(task.Quantity())
		}
	}

	sched.Tick(1, adv)
	sched.Tick(2, adv)
	assert.Equal(t, []uint64{1, 2}, adv.polls[first.ID()], "rewoken task polls exactly once")
}

func TestScheduler_Remove(t *testing.T) {
	sched := scheduling.NewScheduler()
	adv := newRecordingAdvancer()
	task := newTask(t)
	require.NoError(t, sched.Register(task))

	sched.Remove(task.ID())
	sched.Tick(1, adv)

	assert.Empty(t, adv.polls[task.ID()])
	_, ok := sched.Task(task.ID())
	assert.False(t, ok)
}

func TestScheduler_TasksForRequest(t *testing.T) {
	sched := scheduling.NewScheduler()
	a := scheduling.NewTask("req-1", "IronOre", 1, nil, 0, 1)
	b := scheduling.NewTask("req-2", "IronOre", 1, nil, 0, 1)
	c := scheduling.NewTask("req-1", "IronPlate", 1, plateRecipe(), 1, 0)

	require.NoError(t, sched.Register(a))
	require.NoError(t, sched.Register(b))
	require.NoError(t, sched.Register(c))

	got := sched.TasksForRequest("req-1")
	require.Len(t, got, 2)
	assert.Equal(t, a.ID(), got[0].ID())
	assert.Equal(t, c.ID(), got[1].ID())
}

func TestScheduler_AllTerminal(t *testing.T) {
	sched := scheduling.NewScheduler()
	task := scheduling.NewTask("req-1", "IronOre", 1, nil, 0, 1)
	require.NoError(t, sched.Register(task))

	assert.False(t, sched.AllTerminal())
	sched.Tick(1, completeAll{})
	assert.True(t, sched.AllTerminal())
}
