package machine

import (
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// BlockReason says why an assignment could not be made.
type BlockReason string

const (
	// BlockReasonAllBusy - machines exist but none has capacity right now.
	BlockReasonAllBusy BlockReason = "ALL_BUSY"

	// BlockReasonNoMachines - no machine of this entity type exists at all.
	// Persists until the host places one.
	BlockReasonNoMachines BlockReason = "NO_MACHINES"
)

// Assignment is a successful machine claim.
type Assignment struct {
	MachineID string
	ReadyAt   uint64
}

// Blocked is returned when a task must wait on the pool's producer queue.
type Blocked struct {
	Entity catalog.EntityType
	Reason BlockReason
}

// Err returns the sustained-block signal when the pool has no machines at
// all. A transient all-busy block returns nil: it clears on its own.
func (b *Blocked) Err() error {
	if b.Reason == BlockReasonNoMachines {
		return &ErrMachineTypeUnavailable{Entity: b.Entity}
	}
	return nil
}

// Pool owns every machine of one entity type and its producer queue. It
// balances new batches across machines by committed load, breaking ties by
// creation order, and wakes queued waiters front-first as capacity frees.
type Pool struct {
	entity  catalog.EntityType
	nextSeq int
	// creation order; the tie-break scan relies on it
	machines []*Machine
	queue    ProducerQueue
}

// NewPool creates an empty pool for one entity type.
func NewPool(entity catalog.EntityType) *Pool {
	return &Pool{entity: entity}
}

func (p *Pool) Entity() catalog.EntityType { return p.entity }

// AddMachine registers a newly placed machine and returns it. Creation order
// is recorded for deterministic tie-breaking.
func (p *Pool) AddMachine(batchCapacity int) *Machine {
	m := newMachine(p.entity, p.nextSeq, batchCapacity)
	p.nextSeq++
	p.machines = append(p.machines, m)
	return m
}

// Machines returns the pool's machines in creation order.
func (p *Pool) Machines() []*Machine {
	out := make([]*Machine, len(p.machines))
	copy(out, p.machines)
	return out
}

// Machine returns a machine by ID.
func (p *Pool) Machine(id string) (*Machine, bool) {
	for _, m := range p.machines {
		if m.ID() == id {
			return m, true
		}
	}
	return nil, false
}

// HasMachines reports whether any machine of this type exists.
func (p *Pool) HasMachines() bool { return len(p.machines) > 0 }

// Assign tries to place a batch of runs on the least-loaded machine that can
// accept the recipe. When nothing can accept it — or when earlier waiters
// are still queued — the task is enqueued FIFO and Blocked is returned.
func (p *Pool) Assign(taskID string, r *catalog.Recipe, runs int, quantity int, tick uint64) (*Assignment, *Blocked, error) {
	if r.Entity != p.entity {
		return nil, nil, &ErrWrongEntityType{Entity: p.entity, Required: r.Entity}
	}
	entry := QueueEntry{TaskID: taskID, Recipe: r, Runs: runs, Quantity: quantity}

	if !p.HasMachines() {
		p.queue.Enqueue(entry)
		return nil, &Blocked{Entity: p.entity, Reason: BlockReasonNoMachines}, nil
	}

	// No queue jumping: while earlier waiters are queued, only the front
	// may claim capacity.
	if front, ok := p.queue.Front(); ok && front.TaskID != taskID {
		p.queue.Enqueue(entry)
		return nil, &Blocked{Entity: p.entity, Reason: BlockReasonAllBusy}, nil
	}

	m := p.pickMachine(r)
	if m == nil {
		p.queue.Enqueue(entry)
		return nil, &Blocked{Entity: p.entity, Reason: BlockReasonAllBusy}, nil
	}

	p.queue.Remove(taskID)
	ready, err := m.Accept(taskID, r, runs, tick)
	if err != nil {
		return nil, nil, err
	}
	return &Assignment{MachineID: m.ID(), ReadyAt: ready}, nil, nil
}

// pickMachine scans machines that can accept the recipe and returns the one
// with the smallest committed load. The scan follows creation order, and the
// strict less-than keeps ties on the earlier-created machine.
func (p *Pool) pickMachine(r *catalog.Recipe) *Machine {
	var best *Machine
	bestLoad := 0
	for _, m := range p.machines {
		if !m.CanAccept(r) {
			continue
		}
		load := m.Load()
		if best == nil || load < bestLoad {
			best = m
			bestLoad = load
		}
	}
	return best
}

// FrontWaiter returns the queued task that could be assigned right now, if
// any: the queue's front entry, provided some machine can accept its recipe.
// The caller wakes that task; it re-requests assignment on its next poll.
func (p *Pool) FrontWaiter() (string, bool) {
	front, ok := p.queue.Front()
	if !ok || !p.HasMachines() {
		return "", false
	}
	if p.pickMachine(front.Recipe) == nil {
		return "", false
	}
	return front.TaskID, true
}

// RemoveWaiter drops a task from the producer queue (cancellation).
func (p *Pool) RemoveWaiter(taskID string) {
	p.queue.Remove(taskID)
}

// HasWaiter reports whether the task is queued on this pool.
func (p *Pool) HasWaiter(taskID string) bool {
	return p.queue.Contains(taskID)
}

// QueueDepth returns the number of tasks waiting on this pool. This is the
// backlog signal a future machine-scaling controller would consume.
func (p *Pool) QueueDepth() int { return p.queue.Len() }

// TotalLoad returns the input units committed across all machines.
func (p *Pool) TotalLoad() int {
	total := 0
	for _, m := range p.machines {
		total += m.Load()
	}
	return total
}
