package scheduling

// Advancer is the callback the scheduler drives: it advances a single task
// by one poll. Implemented by the production engine, which owns the machine
// pools and stock the poll touches. Never called reentrantly.
type Advancer interface {
	Advance(tick uint64, task *Task)
}

// Scheduler owns all live tasks and drives them cooperatively: each tick it
// polls every runnable task exactly once. Waking a task moves it into a
// buffer that is merged into the runnable set at the start of the next tick,
// never mid-pass, so per-tick work stays bounded and machine buffers are
// never mutated reentrantly.
type Scheduler struct {
	tasks map[string]*Task
	order []string // registration order, for deterministic iteration

	polling    []string // the runnable set, in wake order
	wakeBuffer []string // woken this tick, runnable next tick
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]*Task)}
}

// Register adds a PENDING task. It becomes runnable on the next tick.
func (s *Scheduler) Register(t *Task) error {
	if _, exists := s.tasks[t.ID()]; exists {
		return &ErrTaskAlreadyRegistered{TaskID: t.ID()}
	}
	s.tasks[t.ID()] = t
	s.order = append(s.order, t.ID())
	s.wakeBuffer = append(s.wakeBuffer, t.ID())
	return nil
}

// Task returns a registered task by ID.
func (s *Scheduler) Task(id string) (*Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

// Tasks returns all registered tasks in registration order.
func (s *Scheduler) Tasks() []*Task {
	out := make([]*Task, 0, len(s.order))
	for _, id := range s.order {
		if t, ok := s.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// TasksForRequest returns the tasks belonging to one request, in
// registration order.
func (s *Scheduler) TasksForRequest(requestID string) []*Task {
	var out []*Task
	for _, id := range s.order {
		if t, ok := s.tasks[id]; ok && t.RequestID() == requestID {
			out = append(out, t)
		}
	}
	return out
}

// Wake satisfies a task's wait condition: the task leaves WAITING and joins
// the runnable set for the next tick. Waking a task that is not waiting is a
// no-op, so producer pools and completing tasks can wake unconditionally.
func (s *Scheduler) Wake(taskID string) {
	t, ok := s.tasks[taskID]
	if !ok || t.State() != TaskStateWaiting {
		return
	}
	if t.markPolling() == nil {
		s.wakeBuffer = append(s.wakeBuffer, taskID)
	}
}

// Remove drops a task from the scheduler entirely (cancellation). The caller
// is responsible for removing any producer-queue entries it holds.
func (s *Scheduler) Remove(taskID string) {
	delete(s.tasks, taskID)
	s.polling = without(s.polling, taskID)
	s.wakeBuffer = without(s.wakeBuffer, taskID)
}

// Tick merges the wake buffer into the runnable set and polls every runnable
// task exactly once. Tasks that suspend or terminate during their poll leave
// the runnable set; tasks woken during the pass run next tick.
func (s *Scheduler) Tick(tick uint64, adv Advancer) {
	present := make(map[string]bool, len(s.polling))
	for _, id := range s.polling {
		present[id] = true
	}
	for _, id := range s.wakeBuffer {
		t, ok := s.tasks[id]
		if !ok || present[id] {
			continue
		}
		if t.State() == TaskStatePending {
			// First poll after registration.
			if t.markPolling() != nil {
				continue
			}
		}
		s.polling = append(s.polling, id)
		present[id] = true
	}
	s.wakeBuffer = s.wakeBuffer[:0]

	// Snapshot: wakes during the pass land in the buffer, not here.
	pass := make([]string, len(s.polling))
	copy(pass, s.polling)

	for _, id := range pass {
		t, ok := s.tasks[id]
		if !ok || t.State() != TaskStatePolling {
			continue
		}
		adv.Advance(tick, t)
	}

	// Keep only tasks still runnable.
	kept := s.polling[:0]
	for _, id := range s.polling {
		if t, ok := s.tasks[id]; ok && t.State() == TaskStatePolling {
			kept = append(kept, id)
		}
	}
	s.polling = kept
}

// RunnableCount returns how many tasks will be polled next tick.
func (s *Scheduler) RunnableCount() int {
	return len(s.polling) + len(s.wakeBuffer)
}

// AllTerminal reports whether every registered task has completed or failed.
func (s *Scheduler) AllTerminal() bool {
	for _, t := range s.tasks {
		if !t.IsTerminal() {
			return false
		}
	}
	return true
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
