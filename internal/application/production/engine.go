package production

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Nadrieril/rustorio/internal/application/common"
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
	"github.com/Nadrieril/rustorio/internal/domain/machine"
	"github.com/Nadrieril/rustorio/internal/domain/scheduling"
)

// Engine drives the whole production floor: it accepts requests, resolves
// them into task trees, and advances every runnable task once per tick.
// All methods must be called from a single goroutine; the tick loop is
// cooperative, not concurrent.
type Engine struct {
	catalog  *catalog.Catalog
	stock    inventory.Stock
	resolver *resolver
	sched    *scheduling.Scheduler

	pools     map[catalog.EntityType]*machine.Pool
	poolOrder []catalog.EntityType

	requests      map[string]*request
	requestOrder  []string
	rootToRequest map[string]string

	tick                 uint64
	defaultBatchCapacity int

	journal Journal
	metrics Metrics
	logger  common.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l common.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDefaultBatchCapacity sets how many batches a machine accepts for one
// recipe before counting as busy, for machines added without an explicit
// capacity.
func WithDefaultBatchCapacity(n int) Option {
	return func(e *Engine) { e.defaultBatchCapacity = n }
}

// NewEngine creates an engine over the given recipe catalog and stock.
func NewEngine(cat *catalog.Catalog, stock inventory.Stock, opts ...Option) *Engine {
	e := &Engine{
		catalog:              cat,
		stock:                stock,
		sched:                scheduling.NewScheduler(),
		pools:                make(map[catalog.EntityType]*machine.Pool),
		requests:             make(map[string]*request),
		rootToRequest:        make(map[string]string),
		defaultBatchCapacity: 1,
		journal:              nopJournal{},
		metrics:              nopMetrics{},
		logger:               common.NopLogger{},
	}
	e.resolver = &resolver{catalog: cat, stock: stock}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CurrentTick returns the last completed tick.
func (e *Engine) CurrentTick() uint64 { return e.tick }

func (e *Engine) poolFor(entity catalog.EntityType) *machine.Pool {
	if p, ok := e.pools[entity]; ok {
		return p
	}
	p := machine.NewPool(entity)
	e.pools[entity] = p
	e.poolOrder = append(e.poolOrder, entity)
	return p
}

// AddMachine places a new machine of the given entity type. A non-positive
// batchCapacity uses the engine default. Machines can be added mid-run;
// queued tasks blocked on the type pick them up on the next tick.
func (e *Engine) AddMachine(entity catalog.EntityType, batchCapacity int) *machine.Machine {
	if batchCapacity <= 0 {
		batchCapacity = e.defaultBatchCapacity
	}
	m := e.poolFor(entity).AddMachine(batchCapacity)
	e.logger.Log("info", "machine added", map[string]interface{}{
		"machine": m.ID(),
		"entity":  string(entity),
	})
	return m
}

// Request submits a production request for quantity units of resource. The
// task tree is resolved immediately; execution starts on the next tick. A
// resolution failure (no recipe on some branch) fails the request up front
// and returns all stock drawn during resolution.
func (e *Engine) Request(resource catalog.ResourceType, quantity int) *RequestHandle {
	req := &request{
		id:        uuid.New().String(),
		resource:  resource,
		quantity:  quantity,
		state:     RequestStatePending,
		createdAt: e.tick,
	}
	e.requests[req.id] = req
	e.requestOrder = append(e.requestOrder, req.id)

	tasks, root, err := e.resolver.resolve(resource, quantity, req.id)
	if err != nil {
		req.state = RequestStateFailed
		req.failure = err.Error()
		req.finishedAt = e.tick
		e.logger.Log("warn", "request resolution failed", map[string]interface{}{
			"request":  req.id,
			"resource": string(resource),
			"error":    err.Error(),
		})
		e.journalRequest(req)
		e.metrics.ObserveRequestFinished(string(req.state))
		return &RequestHandle{id: req.id}
	}

	for _, t := range tasks {
		if regErr := e.sched.Register(t); regErr != nil {
			e.logger.Log("error", "task registration failed", map[string]interface{}{
				"task":  t.ID(),
				"error": regErr.Error(),
			})
		}
	}
	req.rootTaskID = root.ID()
	e.rootToRequest[root.ID()] = req.id
	e.logger.Log("info", "request accepted", map[string]interface{}{
		"request":  req.id,
		"resource": string(resource),
		"quantity": quantity,
		"tasks":    len(tasks),
	})
	e.journalRequest(req)
	return &RequestHandle{id: req.id}
}

// Status reports the current state of a request.
func (e *Engine) Status(h *RequestHandle) Status {
	req, ok := e.requests[h.ID()]
	if !ok {
		return Status{State: RequestStateFailed, FailureReason: (&ErrRequestNotFound{RequestID: h.ID()}).Error()}
	}
	st := Status{State: req.state, FailureReason: req.failure}
	if req.state == RequestStateInProgress {
		st.BlockedOn = e.blockedOn(req.id)
	}
	return st
}

// Cancel withdraws a request. Live tasks are dropped, their producer-queue
// entries and machine batches removed; output already completed by subtasks
// is deposited to stock. Cancelling a terminal request is a no-op.
func (e *Engine) Cancel(h *RequestHandle) error {
	req, ok := e.requests[h.ID()]
	if !ok {
		return &ErrRequestNotFound{RequestID: h.ID()}
	}
	if req.terminal() {
		return nil
	}
	for _, t := range e.sched.TasksForRequest(req.id) {
		switch t.State() {
		case scheduling.TaskStateCompleted:
			if held := t.TakeHeld(); held > 0 {
				e.stock.Deposit(t.Output(), held)
			}
		case scheduling.TaskStateFailed:
		default:
			if cond := t.WaitingOn(); cond != nil && cond.Kind == scheduling.WaitOnProducer {
				e.poolFor(cond.Entity).RemoveWaiter(t.ID())
			}
			if t.MachineID() != "" && t.Recipe() != nil {
				if m, found := e.poolFor(t.Recipe().Entity).Machine(t.MachineID()); found {
					m.RemoveBatch(t.ID())
				}
			}
		}
		e.sched.Remove(t.ID())
	}
	req.state = RequestStateFailed
	req.failure = "request cancelled"
	req.finishedAt = e.tick
	e.logger.Log("info", "request cancelled", map[string]interface{}{"request": req.id})
	e.journalRequest(req)
	e.metrics.ObserveRequestFinished(string(req.state))
	return nil
}

// Tick advances the simulation by one tick: queued tasks whose producer has
// capacity are woken, then every runnable task is polled exactly once.
func (e *Engine) Tick() uint64 {
	e.tick++
	for _, id := range e.requestOrder {
		if req := e.requests[id]; req.state == RequestStatePending {
			req.state = RequestStateInProgress
			e.journalRequest(req)
		}
	}
	// Front-of-queue wakes only: a queued task behind another never jumps it.
	for _, entity := range e.poolOrder {
		if taskID, ok := e.pools[entity].FrontWaiter(); ok {
			e.sched.Wake(taskID)
		}
	}
	e.sched.Tick(e.tick, e)
	e.publishMetrics()
	return e.tick
}

// RunToCompletion ticks until every request is terminal, up to maxTicks.
// Returns the last tick and whether everything settled.
func (e *Engine) RunToCompletion(maxTicks uint64) (uint64, bool) {
	for n := uint64(0); n < maxTicks; n++ {
		e.Tick()
		if e.allRequestsTerminal() {
			return e.tick, true
		}
	}
	return e.tick, e.allRequestsTerminal()
}

// Advance polls a single task. Task ordering and once-per-tick discipline
// are the scheduler's job; this decides what the poll does.
func (e *Engine) Advance(tick uint64, t *scheduling.Task) {
	if t.IsTrivial() {
		e.completeTask(t, t.Quantity())
		return
	}

	if !t.InputsSecured() {
		for _, depID := range t.Dependencies() {
			dep, ok := e.sched.Task(depID)
			if !ok {
				e.failTask(t, (&scheduling.ErrTaskNotFound{TaskID: depID}).Error())
				return
			}
			switch dep.State() {
			case scheduling.TaskStateCompleted:
				continue
			case scheduling.TaskStateFailed:
				e.failTask(t, fmt.Sprintf("input %s failed: %s", dep.Output(), dep.FailureReason()))
				return
			default:
				dep.AddDependent(t.ID())
				e.suspend(t, tick, scheduling.UponTaskCompletion(depID))
				return
			}
		}
		for _, depID := range t.Dependencies() {
			if dep, ok := e.sched.Task(depID); ok {
				t.SecureInput(dep.Output(), dep.TakeHeld())
			}
		}
		t.MarkInputsSecured()
	}

	recipe := t.Recipe()
	if t.MachineID() == "" {
		pool := e.poolFor(recipe.Entity)
		asg, blocked, err := pool.Assign(t.ID(), recipe, t.Runs(), t.Quantity(), tick)
		if err != nil {
			e.failTask(t, err.Error())
			return
		}
		if blocked != nil {
			if berr := blocked.Err(); berr != nil {
				e.logger.Log("warn", berr.Error(), map[string]interface{}{
					"task":   t.ID(),
					"entity": string(recipe.Entity),
				})
			}
			e.suspend(t, tick, scheduling.UponProducerOutput(recipe.Entity, t.Quantity()))
			return
		}
		// Inputs move into the machine's input buffer with the batch.
		t.DrainSecuredInputs()
		if err := t.AssignMachine(asg.MachineID, asg.ReadyAt); err != nil {
			e.failTask(t, err.Error())
			return
		}
		e.recordTransition(t, tick, scheduling.TaskStatePolling, scheduling.TaskStatePolling,
			fmt.Sprintf("assigned to %s, ready at tick %d", asg.MachineID, asg.ReadyAt))
		return
	}

	m, ok := e.poolFor(recipe.Entity).Machine(t.MachineID())
	if !ok {
		e.failTask(t, fmt.Sprintf("machine %s no longer exists", t.MachineID()))
		return
	}
	if !m.OutputReady(t.ID(), tick) {
		// Still crafting. Stay runnable and re-check next tick.
		return
	}
	produced, err := m.CollectOutput(t.ID(), tick)
	if err != nil {
		e.failTask(t, err.Error())
		return
	}
	total := t.StockDrawn() + produced
	if surplus := total - t.Quantity(); surplus > 0 {
		e.stock.Deposit(t.Output(), surplus)
	}
	e.completeTask(t, t.Quantity())
}

func (e *Engine) suspend(t *scheduling.Task, tick uint64, cond scheduling.WaitCondition) {
	if err := t.Suspend(cond); err != nil {
		e.failTask(t, err.Error())
		return
	}
	e.recordTransition(t, tick, scheduling.TaskStatePolling, scheduling.TaskStateWaiting, cond.String())
}

func (e *Engine) completeTask(t *scheduling.Task, held int) {
	if err := t.Complete(held); err != nil {
		e.failTask(t, err.Error())
		return
	}
	e.recordTransition(t, e.tick, scheduling.TaskStatePolling, scheduling.TaskStateCompleted, "")
	for _, dep := range t.Dependents() {
		e.sched.Wake(dep)
	}
	if reqID, ok := e.rootToRequest[t.ID()]; ok {
		req := e.requests[reqID]
		e.stock.Deposit(t.Output(), t.TakeHeld())
		req.state = RequestStateCompleted
		req.finishedAt = e.tick
		e.logger.Log("info", "request completed", map[string]interface{}{
			"request":  req.id,
			"resource": string(req.resource),
			"quantity": req.quantity,
			"tick":     e.tick,
		})
		e.journalRequest(req)
		e.metrics.ObserveRequestFinished(string(req.state))
	}
}

func (e *Engine) failTask(t *scheduling.Task, reason string) {
	from := t.State()
	if err := t.Fail(reason); err != nil {
		return
	}
	e.logger.Log("warn", "task failed", map[string]interface{}{
		"task":   t.ID(),
		"output": string(t.Output()),
		"reason": reason,
	})
	e.recordTransition(t, e.tick, from, scheduling.TaskStateFailed, reason)
	// Dependents wake, observe the failure, and fail in turn.
	for _, dep := range t.Dependents() {
		e.sched.Wake(dep)
	}
	if reqID, ok := e.rootToRequest[t.ID()]; ok {
		req := e.requests[reqID]
		req.state = RequestStateFailed
		req.failure = reason
		req.finishedAt = e.tick
		e.journalRequest(req)
		e.metrics.ObserveRequestFinished(string(req.state))
	}
}

func (e *Engine) blockedOn(requestID string) []BlockedEntity {
	counts := make(map[catalog.EntityType]int)
	var order []catalog.EntityType
	for _, t := range e.sched.TasksForRequest(requestID) {
		cond := t.WaitingOn()
		if cond == nil || cond.Kind != scheduling.WaitOnProducer {
			continue
		}
		if counts[cond.Entity] == 0 {
			order = append(order, cond.Entity)
		}
		counts[cond.Entity]++
	}
	out := make([]BlockedEntity, 0, len(order))
	for _, entity := range order {
		pool, ok := e.pools[entity]
		out = append(out, BlockedEntity{
			Entity:     entity,
			Waiting:    counts[entity],
			NoMachines: !ok || !pool.HasMachines(),
		})
	}
	return out
}

// Backlog returns the producer-queue depth per entity type.
func (e *Engine) Backlog() map[catalog.EntityType]int {
	out := make(map[catalog.EntityType]int, len(e.poolOrder))
	for _, entity := range e.poolOrder {
		out[entity] = e.pools[entity].QueueDepth()
	}
	return out
}

// PoolStat is a point-in-time summary of one machine pool.
type PoolStat struct {
	Entity     catalog.EntityType
	Machines   int
	QueueDepth int
	Load       int
}

// PoolStats returns a summary of every pool, in creation order.
func (e *Engine) PoolStats() []PoolStat {
	out := make([]PoolStat, 0, len(e.poolOrder))
	for _, entity := range e.poolOrder {
		p := e.pools[entity]
		out = append(out, PoolStat{
			Entity:     entity,
			Machines:   len(p.Machines()),
			QueueDepth: p.QueueDepth(),
			Load:       p.TotalLoad(),
		})
	}
	return out
}

// Requests returns a snapshot of every request, in submission order.
func (e *Engine) Requests() []RequestSnapshot {
	out := make([]RequestSnapshot, 0, len(e.requestOrder))
	for _, id := range e.requestOrder {
		out = append(out, e.requests[id].snapshot())
	}
	return out
}

func (e *Engine) allRequestsTerminal() bool {
	for _, req := range e.requests {
		if !req.terminal() {
			return false
		}
	}
	return true
}

func (e *Engine) publishMetrics() {
	for _, entity := range e.poolOrder {
		p := e.pools[entity]
		e.metrics.SetQueueDepth(entity, p.QueueDepth())
		e.metrics.SetPoolLoad(entity, p.TotalLoad())
	}
	e.metrics.SetRunnableTasks(e.sched.RunnableCount())
}

func (e *Engine) journalRequest(req *request) {
	if err := e.journal.RecordRequest(req.snapshot()); err != nil {
		e.logger.Log("warn", "journal write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (e *Engine) recordTransition(t *scheduling.Task, tick uint64, from, to scheduling.TaskState, detail string) {
	err := e.journal.RecordTaskTransition(TaskTransition{
		RequestID: t.RequestID(),
		TaskID:    t.ID(),
		Tick:      tick,
		From:      string(from),
		To:        string(to),
		Detail:    detail,
	})
	if err != nil {
		e.logger.Log("warn", "journal write failed", map[string]interface{}{"error": err.Error()})
	}
	if from != to {
		e.metrics.ObserveTaskTransition(string(to))
	}
}
