package scheduling

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// TaskState is the explicit state of a task.
type TaskState string

const (
	// TaskStatePending - newly created, not yet polled by the scheduler.
	TaskStatePending TaskState = "PENDING"

	// TaskStatePolling - in the scheduler's runnable set, polled each tick.
	TaskStatePolling TaskState = "POLLING"

	// TaskStateWaiting - suspended on a wait condition; owned by whoever
	// satisfies that condition, never polled.
	TaskStateWaiting TaskState = "WAITING"

	// TaskStateCompleted - output delivered. Terminal.
	TaskStateCompleted TaskState = "COMPLETED"

	// TaskStateFailed - terminal, not retried without external change.
	TaskStateFailed TaskState = "FAILED"
)

// Task is one suspendable unit of production work: craft `runs` runs of
// `recipe` (or nothing at all when stock already covered the request) and
// hold `quantity` units of output for whoever depends on it.
//
// State machine:
//
//	PENDING -> POLLING <-> WAITING
//	              \-> COMPLETED | FAILED
//
// A task is owned by exactly one of the scheduler's runnable set or a single
// producer queue / dependency list; ownership transfers on suspend and wake.
type Task struct {
	id        string
	requestID string

	output   catalog.ResourceType
	quantity int // output units owed to the dependent (or to stock, for roots)

	recipe     *catalog.Recipe // nil when runs == 0
	runs       int
	stockDrawn int // units already withdrawn from stock at resolve time

	secured       map[catalog.ResourceType]int
	inputsSecured bool

	dependsOn  []string
	dependents []string // FIFO wake order

	state   TaskState
	cond    *WaitCondition
	failure string

	machineID string
	readyAt   uint64

	held int // completed output not yet collected by the dependent
}

// NewTask creates a task owing `quantity` units of `output`. A nil recipe
// with zero runs makes a trivially-satisfied task (stock already covered it).
func NewTask(requestID string, output catalog.ResourceType, quantity int,
	recipe *catalog.Recipe, runs int, stockDrawn int) *Task {
	return &Task{
		id:         uuid.New().String(),
		requestID:  requestID,
		output:     output,
		quantity:   quantity,
		recipe:     recipe,
		runs:       runs,
		stockDrawn: stockDrawn,
		secured:    make(map[catalog.ResourceType]int),
		state:      TaskStatePending,
	}
}

// Getters

func (t *Task) ID() string                    { return t.id }
func (t *Task) RequestID() string             { return t.requestID }
func (t *Task) Output() catalog.ResourceType  { return t.output }
func (t *Task) Quantity() int                 { return t.quantity }
func (t *Task) Recipe() *catalog.Recipe       { return t.recipe }
func (t *Task) Runs() int                     { return t.runs }
func (t *Task) StockDrawn() int               { return t.stockDrawn }
func (t *Task) State() TaskState              { return t.state }
func (t *Task) FailureReason() string         { return t.failure }
func (t *Task) MachineID() string             { return t.machineID }
func (t *Task) ReadyAt() uint64               { return t.readyAt }
func (t *Task) InputsSecured() bool           { return t.inputsSecured }

// WaitingOn returns the wait condition while the task is WAITING, nil
// otherwise.
func (t *Task) WaitingOn() *WaitCondition {
	if t.state != TaskStateWaiting {
		return nil
	}
	return t.cond
}

// IsTrivial reports whether the task needs no crafting: stock already
// covered its whole quantity at resolve time.
func (t *Task) IsTrivial() bool { return t.runs == 0 }

// IsTerminal reports whether the task reached COMPLETED or FAILED.
func (t *Task) IsTerminal() bool {
	return t.state == TaskStateCompleted || t.state == TaskStateFailed
}

// Dependencies returns the IDs of the input tasks this task waits on, in
// recipe input order.
func (t *Task) Dependencies() []string { return t.dependsOn }

// AddDependency records an input task.
func (t *Task) AddDependency(taskID string) {
	t.dependsOn = append(t.dependsOn, taskID)
}

// Dependents returns the tasks to wake on completion, in the order they
// suspended.
func (t *Task) Dependents() []string { return t.dependents }

// AddDependent appends a waiter in FIFO order. Re-suspending on the same
// dependency does not duplicate the entry.
func (t *Task) AddDependent(taskID string) {
	for _, d := range t.dependents {
		if d == taskID {
			return
		}
	}
	t.dependents = append(t.dependents, taskID)
}

// SecuredInput returns how many units of the given input have been secured.
func (t *Task) SecuredInput(res catalog.ResourceType) int { return t.secured[res] }

// SecureInput moves qty units of an input resource into the task's record.
func (t *Task) SecureInput(res catalog.ResourceType, qty int) {
	if qty > 0 {
		t.secured[res] += qty
	}
}

// MarkInputsSecured records that every recipe input has been transferred in.
func (t *Task) MarkInputsSecured() { t.inputsSecured = true }

// DrainSecuredInputs empties the secured-input record, returning its
// contents. Called when the inputs move into a machine's input buffer.
func (t *Task) DrainSecuredInputs() map[catalog.ResourceType]int {
	out := t.secured
	t.secured = make(map[catalog.ResourceType]int)
	return out
}

// Held returns the completed output units not yet collected.
func (t *Task) Held() int { return t.held }

// TakeHeld transfers the completed output out of the task's record.
func (t *Task) TakeHeld() int {
	h := t.held
	t.held = 0
	return h
}

// State transitions

func (t *Task) markPolling() error {
	if t.state != TaskStatePending && t.state != TaskStateWaiting {
		return &ErrInvalidTaskTransition{TaskID: t.id, From: t.state, To: TaskStatePolling}
	}
	t.state = TaskStatePolling
	t.cond = nil
	return nil
}

// Suspend moves the task from POLLING to WAITING on the given condition.
func (t *Task) Suspend(cond WaitCondition) error {
	if t.state != TaskStatePolling {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.state,
			To:          TaskStateWaiting,
			Description: "can only suspend a polling task",
		}
	}
	t.state = TaskStateWaiting
	t.cond = &cond
	return nil
}

// AssignMachine records the machine executing this task's runs and the tick
// its output will be ready. The task stays in POLLING and re-checks the
// machine each tick.
func (t *Task) AssignMachine(machineID string, readyAt uint64) error {
	if t.state != TaskStatePolling {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.state,
			To:          t.state,
			Description: "can only assign a machine to a polling task",
		}
	}
	if t.machineID != "" && t.machineID != machineID {
		return fmt.Errorf("task %s already assigned to machine %s", t.id, t.machineID)
	}
	t.machineID = machineID
	t.readyAt = readyAt
	return nil
}

// Complete marks the task done, holding `held` output units for its
// dependent.
func (t *Task) Complete(held int) error {
	if t.state != TaskStatePolling {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.state,
			To:          TaskStateCompleted,
			Description: "can only complete a polling task",
		}
	}
	t.state = TaskStateCompleted
	t.held = held
	return nil
}

// Fail marks the task failed. Terminal; dependents observe the failure and
// fail in turn.
func (t *Task) Fail(reason string) error {
	if t.IsTerminal() {
		return &ErrInvalidTaskTransition{
			TaskID:      t.id,
			From:        t.state,
			To:          TaskStateFailed,
			Description: "task already terminal",
		}
	}
	t.state = TaskStateFailed
	t.failure = reason
	t.cond = nil
	return nil
}

// String provides a compact human-readable representation.
func (t *Task) String() string {
	short := t.id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Task[%s, output=%s, qty=%d, runs=%d, state=%s]",
		short, t.output, t.quantity, t.runs, t.state)
}
