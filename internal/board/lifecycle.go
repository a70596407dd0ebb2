package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"task-board/internal/docstore"
	"task-board/internal/models"
)

// UnassignedSentinel is the assignee value a form submits for "nobody". It
// is stored as null.
const UnassignedSentinel = "unassigned"

// DefaultAdapterTimeout bounds every store call made by the Controller.
const DefaultAdapterTimeout = 10 * time.Second

const notConfiguredMessage = "Document store is not properly configured. Please check your setup."

// NoticeKind tells a presentation layer how to style a Notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the user-facing outcome of one Controller operation.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Op      string     `json:"op"`
	TaskID  string     `json:"taskId,omitempty"`
}

// TaskDraft is the input for CreateTask.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AssignedTo  string `json:"assignedTo"`
}

// TaskEdit is the input for EditTask. An empty Status keeps the current one.
type TaskEdit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AssignedTo  string `json:"assignedTo"`
	Status      string `json:"status"`
}

// MemberDraft is the input for AddMember.
type MemberDraft struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Controller turns user actions into store mutations. It never writes to the
// Repository: results arrive through the subscription like any other change.
type Controller struct {
	store   docstore.Store
	tasks   TaskLookup
	log     *log.Entry
	timeout time.Duration
	notify  func(Notice)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the controller's logger.
func WithControllerLogger(entry *log.Entry) ControllerOption {
	return func(c *Controller) { c.log = entry }
}

// WithAdapterTimeout bounds each store call. Zero disables the bound.
func WithAdapterTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.timeout = d }
}

// WithNoticeSink receives a Notice for every operation outcome.
func WithNoticeSink(fn func(Notice)) ControllerOption {
	return func(c *Controller) { c.notify = fn }
}

// NewController returns a Controller mutating store and reading current task
// state from tasks, normally the Repository. A nil store is allowed; every
// mutation then fails with a ConfigurationError.
func NewController(store docstore.Store, tasks TaskLookup, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:   store,
		tasks:   tasks,
		log:     log.NewEntry(log.StandardLogger()),
		timeout: DefaultAdapterTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "controller")
	return c
}

// operation describes one action for logging and notices.
type operation struct {
	name    string
	failure string
}

var (
	opCreate    = operation{name: "create task", failure: "Failed to add task"}
	opStart     = operation{name: "start task", failure: "Failed to start task"}
	opComplete  = operation{name: "complete task", failure: "Failed to complete task"}
	opDelete    = operation{name: "delete task", failure: "Failed to delete task"}
	opEdit      = operation{name: "update task", failure: "Failed to update task"}
	opMove      = operation{name: "move task", failure: "Failed to move task"}
	opAddMember = operation{name: "add team member", failure: "Failed to add team member"}
)

func (c *Controller) emit(n Notice) {
	if c.notify != nil {
		c.notify(n)
	}
}

func (c *Controller) succeed(op operation, taskID, title, message string) {
	c.log.WithFields(log.Fields{"op": op.name, "task": taskID}).Info(message)
	c.emit(Notice{Kind: NoticeSuccess, Title: title, Message: message, Op: op.name, TaskID: taskID})
}

// fail logs err, emits an error Notice worded for the user and returns err.
func (c *Controller) fail(op operation, taskID string, err error) error {
	var (
		validation *ValidationError
		adapter    *AdapterError
		message    string
	)
	switch {
	case errors.As(err, &validation):
		message = validation.Error()
	case errors.Is(err, ErrNotConfigured):
		message = notConfiguredMessage
	case op == opMove && errors.As(err, &adapter):
		message = "Failed to move task. Please try again."
	case errors.As(err, &adapter):
		message = fmt.Sprintf("%s: %v", op.failure, adapter.Err)
	default:
		message = fmt.Sprintf("%s: %v", op.failure, err)
	}

	entry := c.log.WithFields(log.Fields{"op": op.name, "task": taskID}).WithError(err)
	if adapter != nil {
		entry.Error("store call failed")
	} else {
		entry.Warn("operation rejected")
	}
	c.emit(Notice{Kind: NoticeError, Title: "Error", Message: message, Op: op.name, TaskID: taskID})
	return err
}

func (c *Controller) configured() error {
	if c.store == nil {
		return &ConfigurationError{Reason: "controller has no document store"}
	}
	return nil
}

func (c *Controller) call(ctx context.Context, op operation, fn func(ctx context.Context) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := fn(ctx); err != nil {
		return &AdapterError{Op: op.name, Err: err}
	}
	return nil
}

// lookup finds a task in the current snapshot.
func (c *Controller) lookup(id string) (models.Task, error) {
	if c.tasks != nil {
		if t, ok := c.tasks.Task(id); ok {
			return t, nil
		}
	}
	return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

func assigneeValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == UnassignedSentinel {
		return nil
	}
	return raw
}

func validateTaskText(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", "", &ValidationError{Field: "title", Reason: "is required"}
	}
	if description == "" {
		return "", "", &ValidationError{Field: "description", Reason: "is required"}
	}
	return title, description, nil
}

func validateCategory(raw string) (models.TaskCategory, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &ValidationError{Field: "category", Reason: "is required"}
	}
	cat, err := models.ParseTaskCategory(raw)
	if err != nil {
		return "", &ValidationError{Field: "category", Reason: err.Error()}
	}
	return cat, nil
}

// CreateTask inserts a new task in the new status with a server assigned
// timestamp and returns its id. The draft is not modified, so a caller can
// keep its form input when an error is returned.
func (c *Controller) CreateTask(ctx context.Context, draft TaskDraft) (string, error) {
	title, description, err := validateTaskText(draft.Title, draft.Description)
	if err != nil {
		return "", c.fail(opCreate, "", err)
	}
	category, err := validateCategory(draft.Category)
	if err != nil {
		return "", c.fail(opCreate, "", err)
	}
	if err := c.configured(); err != nil {
		return "", c.fail(opCreate, "", err)
	}

	var id string
	err = c.call(ctx, opCreate, func(ctx context.Context) error {
		var err error
		id, err = c.store.Insert(ctx, TasksCollection, docstore.Fields{
			fieldTitle:       title,
			fieldDescription: description,
			fieldCategory:    string(category),
			fieldAssignedTo:  assigneeValue(draft.AssignedTo),
			fieldStatus:      string(models.StatusNew),
			fieldTimestamp:   docstore.ServerTimestamp,
		})
		return err
	})
	if err != nil {
		return "", c.fail(opCreate, "", err)
	}
	c.succeed(opCreate, id, "Success", "Task added successfully")
	return id, nil
}

// advance runs a status-gated operation on an existing task.
func (c *Controller) advance(ctx context.Context, op operation, verb, id string, allowed func(models.TaskStatus) bool, apply func(ctx context.Context) error) error {
	if strings.TrimSpace(id) == "" {
		return c.fail(op, id, &ValidationError{Field: "id", Reason: "is required"})
	}
	if err := c.configured(); err != nil {
		return c.fail(op, id, err)
	}
	task, err := c.lookup(id)
	if err != nil {
		return c.fail(op, id, err)
	}
	if !allowed(task.Status.Canonical()) {
		return c.fail(op, id, &TransitionError{TaskID: id, Op: verb, From: task.Status})
	}
	if err := c.call(ctx, op, apply); err != nil {
		return c.fail(op, id, err)
	}
	return nil
}

func (c *Controller) setStatus(id string, to models.TaskStatus) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return c.store.Update(ctx, TasksCollection, id, docstore.Fields{fieldStatus: string(to)})
	}
}

// StartTask moves a new (or legacy todo) task to in-progress.
func (c *Controller) StartTask(ctx context.Context, id string) error {
	err := c.advance(ctx, opStart, "start", id,
		func(s models.TaskStatus) bool { return s == models.StatusNew },
		c.setStatus(id, models.StatusInProgress))
	if err != nil {
		return err
	}
	c.succeed(opStart, id, "Task Started", "Task moved to In Progress")
	return nil
}

// CompleteTask moves an in-progress task to done.
func (c *Controller) CompleteTask(ctx context.Context, id string) error {
	err := c.advance(ctx, opComplete, "complete", id,
		func(s models.TaskStatus) bool { return s == models.StatusInProgress },
		c.setStatus(id, models.StatusDone))
	if err != nil {
		return err
	}
	c.succeed(opComplete, id, "Task Completed", "Task moved to Done")
	return nil
}

// DeleteTask removes a done task.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	err := c.advance(ctx, opDelete, "delete", id,
		func(s models.TaskStatus) bool { return s == models.StatusDone },
		func(ctx context.Context) error { return c.store.Delete(ctx, TasksCollection, id) })
	if err != nil {
		return err
	}
	c.succeed(opDelete, id, "Task Deleted", "Task has been permanently deleted")
	return nil
}

// EditTask overwrites a task's editable fields. Any status may be set, the
// legacy todo value is written as new.
func (c *Controller) EditTask(ctx context.Context, id string, edit TaskEdit) error {
	if strings.TrimSpace(id) == "" {
		return c.fail(opEdit, id, &ValidationError{Field: "id", Reason: "is required"})
	}
	title, description, err := validateTaskText(edit.Title, edit.Description)
	if err != nil {
		return c.fail(opEdit, id, err)
	}
	category, err := validateCategory(edit.Category)
	if err != nil {
		return c.fail(opEdit, id, err)
	}
	var status models.TaskStatus
	if strings.TrimSpace(edit.Status) != "" {
		if status, err = models.ParseTaskStatus(edit.Status); err != nil {
			return c.fail(opEdit, id, &ValidationError{Field: "status", Reason: err.Error()})
		}
	}
	if err := c.configured(); err != nil {
		return c.fail(opEdit, id, err)
	}
	task, err := c.lookup(id)
	if err != nil {
		return c.fail(opEdit, id, err)
	}
	if status == "" {
		status = task.Status.Canonical()
	}

	err = c.call(ctx, opEdit, func(ctx context.Context) error {
		return c.store.Update(ctx, TasksCollection, id, docstore.Fields{
			fieldTitle:       title,
			fieldDescription: description,
			fieldCategory:    string(category),
			fieldAssignedTo:  assigneeValue(edit.AssignedTo),
			fieldStatus:      string(status),
		})
	})
	if err != nil {
		return c.fail(opEdit, id, err)
	}
	c.succeed(opEdit, id, "Task Updated", "Task details have been updated")
	return nil
}

// MoveTask sets a task's status directly, in any direction. Moving a task to
// the status it already has issues no store call. On failure the visible
// status stays whatever the next notification carries.
func (c *Controller) MoveTask(ctx context.Context, id string, to models.TaskStatus) error {
	if strings.TrimSpace(id) == "" {
		return c.fail(opMove, id, &ValidationError{Field: "id", Reason: "is required"})
	}
	dest, err := models.ParseTaskStatus(string(to))
	if err != nil {
		return c.fail(opMove, id, &ValidationError{Field: "status", Reason: err.Error()})
	}
	if err := c.configured(); err != nil {
		return c.fail(opMove, id, err)
	}
	task, err := c.lookup(id)
	if err != nil {
		return c.fail(opMove, id, err)
	}
	if task.Status.Canonical() == dest {
		return nil
	}
	if err := c.call(ctx, opMove, c.setStatus(id, dest)); err != nil {
		return c.fail(opMove, id, err)
	}
	c.succeed(opMove, id, "Task Moved", "Task moved to "+strings.ReplaceAll(string(dest), "-", " "))
	return nil
}

// AddMember inserts a team member and returns its id.
func (c *Controller) AddMember(ctx context.Context, draft MemberDraft) (string, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return "", c.fail(opAddMember, "", &ValidationError{Field: "name", Reason: "is required"})
	}
	if strings.TrimSpace(draft.Role) == "" {
		return "", c.fail(opAddMember, "", &ValidationError{Field: "role", Reason: "is required"})
	}
	role, err := models.ParseMemberRole(draft.Role)
	if err != nil {
		return "", c.fail(opAddMember, "", &ValidationError{Field: "role", Reason: err.Error()})
	}
	if err := c.configured(); err != nil {
		return "", c.fail(opAddMember, "", err)
	}

	var id string
	err = c.call(ctx, opAddMember, func(ctx context.Context) error {
		var err error
		id, err = c.store.Insert(ctx, MembersCollection, docstore.Fields{
			fieldName: name,
			fieldRole: string(role),
		})
		return err
	})
	if err != nil {
		return "", c.fail(opAddMember, "", err)
	}
	c.log.WithField("member", id).Info("team member added")
	c.emit(Notice{Kind: NoticeSuccess, Title: "Success", Message: "Team member added successfully", Op: opAddMember.name})
	return id, nil
}
