package models

import (
	"fmt"
	"strings"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"

	// StatusTodo is a legacy value still present in older documents. It is
	// equivalent to StatusNew.
	StatusTodo TaskStatus = "todo"
)

// Canonical maps the legacy todo value onto new and returns every other
// status unchanged.
func (s TaskStatus) Canonical() TaskStatus {
	if s == StatusTodo {
		return StatusNew
	}
	return s
}

// Valid reports whether s is a known status, legacy alias included.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label is the human readable column name for the status.
func (s TaskStatus) Label() string {
	switch s.Canonical() {
	case StatusNew:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// ParseTaskStatus parses a stored or user supplied status. The legacy todo
// value is accepted and canonicalized.
func ParseTaskStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.TrimSpace(s))
	if !st.Valid() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return st.Canonical(), nil
}

// TaskCategory represents the discipline a task belongs to
type TaskCategory string

const (
	CategoryUX         TaskCategory = "UX"
	CategoryFrontend   TaskCategory = "frontend"
	CategoryBackend    TaskCategory = "backend"
	CategoryFullstack  TaskCategory = "fullstack"
	CategoryManagement TaskCategory = "management"
	CategoryTesting    TaskCategory = "testing"
)

// Categories lists every category in display order.
var Categories = []TaskCategory{
	CategoryUX,
	CategoryFrontend,
	CategoryBackend,
	CategoryFullstack,
	CategoryManagement,
	CategoryTesting,
}

func (c TaskCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseTaskCategory parses a category name exactly as stored.
func ParseTaskCategory(s string) (TaskCategory, error) {
	c := TaskCategory(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("unknown task category %q", s)
	}
	return c, nil
}

// Task represents a task on the board.
// AssignedTo holds a TeamMember ID; empty means unassigned.
// Timestamp is the creation instant in Unix milliseconds.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    TaskCategory `json:"category"`
	Status      TaskStatus   `json:"status"`
	AssignedTo  string       `json:"assignedTo,omitempty"`
	Timestamp   int64        `json:"timestamp"`
}

// IsAssigned reports whether the task references a team member.
func (t Task) IsAssigned() bool {
	return t.AssignedTo != ""
}
