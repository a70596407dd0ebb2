package board

import (
	"context"
	"sync"

	"task-board/internal/models"
)

// ColumnID identifies a drop target on the board.
type ColumnID string

const (
	ColumnTodo       ColumnID = "todo"
	ColumnInProgress ColumnID = "in-progress"
	ColumnDone       ColumnID = "done"
)

// Columns lists the board lanes left to right.
var Columns = []ColumnID{ColumnTodo, ColumnInProgress, ColumnDone}

// Status maps a column to the status a dropped task receives. The todo
// column writes the canonical new status. Unknown columns map to "".
func (c ColumnID) Status() models.TaskStatus {
	switch c {
	case ColumnTodo:
		return models.StatusNew
	case ColumnInProgress:
		return models.StatusInProgress
	case ColumnDone:
		return models.StatusDone
	}
	return ""
}

// Mover applies a status change for a dropped task.
type Mover interface {
	MoveTask(ctx context.Context, taskID string, to models.TaskStatus) error
}

// TaskLookup finds a task in the current snapshot.
type TaskLookup interface {
	Task(id string) (models.Task, bool)
}

// Drag reconciles drag and drop gestures with the lifecycle. It holds the
// transient "active" task for a drag overlay; that state never reaches the
// store.
type Drag struct {
	tasks TaskLookup
	mover Mover

	mu     sync.Mutex
	active *models.Task
}

// NewDrag returns a Drag resolving tasks through lookup and applying moves
// through mover.
func NewDrag(lookup TaskLookup, mover Mover) *Drag {
	return &Drag{tasks: lookup, mover: mover}
}

// Begin records the lifted task. Unknown ids clear the active task.
func (d *Drag) Begin(taskID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = nil
	if t, ok := d.tasks.Task(taskID); ok {
		d.active = &t
	}
}

// Active returns the task currently being dragged.
func (d *Drag) Active() (models.Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return models.Task{}, false
	}
	return *d.active, true
}

// End finishes a gesture dropping taskID on column. The active task is
// cleared whatever the outcome. It reports whether a move was issued; drops
// on an unknown column, an unknown task, or the task's own column do nothing.
func (d *Drag) End(ctx context.Context, taskID string, column ColumnID) (bool, error) {
	d.mu.Lock()
	d.active = nil
	d.mu.Unlock()

	to := column.Status()
	if to == "" {
		return false, nil
	}
	task, ok := d.tasks.Task(taskID)
	if !ok {
		return false, nil
	}
	if task.Status.Canonical() == to {
		return false, nil
	}
	if err := d.mover.MoveTask(ctx, taskID, to); err != nil {
		return true, err
	}
	return true, nil
}
