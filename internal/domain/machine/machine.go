package machine

import (
	"fmt"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// Batch is one accepted block of crafting runs, owned by a single task.
// Batches on a machine process strictly in acceptance order.
type Batch struct {
	TaskID  string
	Runs    int
	StartAt uint64
	ReadyAt uint64
}

// Machine is one live production entity instance. It is created and
// destroyed only by the host simulation; the engine mutates its buffers
// while advancing the task bound to it, one task at a time.
//
// A machine runs one recipe at a time. While busy it can accept further
// batches of the same recipe up to batchCapacity; committed but unfinished
// input is its load, the quantity the pool balances on.
type Machine struct {
	id     string
	entity catalog.EntityType
	seq    int // creation order, the load-balancing tie-breaker

	recipe        *catalog.Recipe // nil when idle
	batchCapacity int
	batches       []Batch
	lastReadyAt   uint64
}

func newMachine(entity catalog.EntityType, seq int, batchCapacity int) *Machine {
	if batchCapacity < 1 {
		batchCapacity = 1
	}
	return &Machine{
		id:            fmt.Sprintf("%s-%d", entity, seq),
		entity:        entity,
		seq:           seq,
		batchCapacity: batchCapacity,
	}
}

func (m *Machine) ID() string                  { return m.id }
func (m *Machine) Entity() catalog.EntityType  { return m.entity }
func (m *Machine) Seq() int                    { return m.seq }
func (m *Machine) BatchCapacity() int          { return m.batchCapacity }

// Recipe returns the recipe currently assigned, nil when idle.
func (m *Machine) Recipe() *catalog.Recipe { return m.recipe }

// Idle reports whether the machine has no committed work.
func (m *Machine) Idle() bool { return len(m.batches) == 0 }

// CanAccept reports whether a batch of the given recipe fits: the machine is
// idle, or already running the same recipe with spare batch capacity.
func (m *Machine) CanAccept(r *catalog.Recipe) bool {
	if m.Idle() {
		return true
	}
	return m.recipe.Output == r.Output && len(m.batches) < m.batchCapacity
}

// Accept commits a batch of runs for the given task and returns the tick its
// output will be ready. Batches queue behind the in-progress one.
func (m *Machine) Accept(taskID string, r *catalog.Recipe, runs int, tick uint64) (uint64, error) {
	if !m.CanAccept(r) {
		return 0, &ErrMachineBusy{MachineID: m.id}
	}
	start := tick
	if !m.Idle() && m.lastReadyAt > tick {
		start = m.lastReadyAt
	}
	ready := start + uint64(runs)*r.Duration
	m.recipe = r
	m.batches = append(m.batches, Batch{TaskID: taskID, Runs: runs, StartAt: start, ReadyAt: ready})
	m.lastReadyAt = ready
	return ready, nil
}

// Load returns the input units committed to this machine: queued plus
// in-progress runs, weighted by the recipe's per-run input size.
func (m *Machine) Load() int {
	if m.recipe == nil {
		return 0
	}
	units := m.recipe.InputUnitsPerRun()
	if units == 0 {
		units = 1 // recipes with no inputs still occupy the machine
	}
	total := 0
	for _, b := range m.batches {
		total += b.Runs * units
	}
	return total
}

// OutputReady reports whether the given task's batch finished processing.
func (m *Machine) OutputReady(taskID string, tick uint64) bool {
	for _, b := range m.batches {
		if b.TaskID == taskID {
			return b.ReadyAt <= tick
		}
	}
	return false
}

// CollectOutput removes the given task's finished batch and returns the
// output units it yielded. Frees the machine (or its queue slot) for the
// pool to hand to the next waiter.
func (m *Machine) CollectOutput(taskID string, tick uint64) (int, error) {
	for i, b := range m.batches {
		if b.TaskID != taskID {
			continue
		}
		if b.ReadyAt > tick {
			return 0, &ErrOutputNotReady{MachineID: m.id, TaskID: taskID}
		}
		out := b.Runs * m.recipe.OutputQuantity
		m.batches = append(m.batches[:i], m.batches[i+1:]...)
		if len(m.batches) == 0 {
			m.recipe = nil
			m.lastReadyAt = 0
		}
		return out, nil
	}
	return 0, &ErrOutputNotReady{MachineID: m.id, TaskID: taskID}
}

// RemoveBatch drops a task's batch without collecting output (cancellation).
func (m *Machine) RemoveBatch(taskID string) {
	for i, b := range m.batches {
		if b.TaskID == taskID {
			m.batches = append(m.batches[:i], m.batches[i+1:]...)
			break
		}
	}
	if len(m.batches) == 0 {
		m.recipe = nil
		m.lastReadyAt = 0
	}
}

// InputBuffer returns the unprocessed input committed to the machine, by
// resource, for host/status visibility.
func (m *Machine) InputBuffer(tick uint64) map[catalog.ResourceType]int {
	out := make(map[catalog.ResourceType]int)
	if m.recipe == nil {
		return out
	}
	for _, b := range m.batches {
		if b.ReadyAt <= tick {
			continue // processed, sitting in the output buffer
		}
		for _, ing := range m.recipe.Inputs {
			out[ing.Resource] += b.Runs * ing.Quantity
		}
	}
	return out
}

// OutputBuffer returns finished, uncollected output by resource.
func (m *Machine) OutputBuffer(tick uint64) map[catalog.ResourceType]int {
	out := make(map[catalog.ResourceType]int)
	if m.recipe == nil {
		return out
	}
	for _, b := range m.batches {
		if b.ReadyAt <= tick {
			out[m.recipe.Output] += b.Runs * m.recipe.OutputQuantity
		}
	}
	return out
}

// BusyUntil returns the tick the machine finishes all committed work.
func (m *Machine) BusyUntil() uint64 { return m.lastReadyAt }
