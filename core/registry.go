package core

// taskEntry is a registered unit of work.
type taskEntry struct {
	id   TaskID
	kind TaskKind
	fn   Task
	name string
	// sandbox tracking this task, if any
	owner *Sandbox
}

// taskRegistry owns pending tasks until they run or are cleared.
type taskRegistry struct {
	lastID TaskID
	tasks  map[TaskID]*taskEntry
}

func newTaskRegistry() taskRegistry {
	return taskRegistry{tasks: make(map[TaskID]*taskEntry)}
}

func (r *taskRegistry) add(kind TaskKind, fn Task, name string) *taskEntry {
	r.lastID++
	e := &taskEntry{
		id:   r.lastID,
		kind: kind,
		fn:   fn,
		name: name,
	}
	r.tasks[e.id] = e
	return e
}

func (r *taskRegistry) get(id TaskID) (*taskEntry, bool) {
	e, ok := r.tasks[id]
	return e, ok
}

// remove is idempotent.
func (r *taskRegistry) remove(id TaskID) {
	delete(r.tasks, id)
}

func (r *taskRegistry) len() int {
	return len(r.tasks)
}
