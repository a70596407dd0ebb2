package board

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"task-board/internal/docstore"
	"task-board/internal/models"
)

// Collection names in the document store.
const (
	TasksCollection   = "tasks"
	MembersCollection = "teamMembers"
)

// Document field names.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldStatus      = "status"
	fieldAssignedTo  = "assignedTo"
	fieldTimestamp   = "timestamp"
	fieldName        = "name"
	fieldRole        = "role"
)

type decoder struct {
	collection string
	doc        docstore.Document
	problems   []string
}

func (d *decoder) problem(format string, args ...any) {
	d.problems = append(d.problems, fmt.Sprintf(format, args...))
}

func (d *decoder) err() error {
	if len(d.problems) == 0 {
		return nil
	}
	return &DecodeError{Collection: d.collection, ID: d.doc.ID, Problems: d.problems}
}

// str returns an optional string field. Missing or null yields ok=false; a
// value of another type is recorded as a problem.
func (d *decoder) str(field string) (string, bool) {
	v, present := d.doc.Fields[field]
	if !present || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		d.problem("%s: want string, got %T", field, v)
		return "", false
	}
	return s, true
}

// required returns a string field that must be present and non-blank.
func (d *decoder) required(field string) (string, bool) {
	v, present := d.doc.Fields[field]
	if !present || v == nil {
		d.problem("%s: missing", field)
		return "", false
	}
	s, ok := d.str(field)
	if !ok {
		return "", false
	}
	if strings.TrimSpace(s) == "" {
		d.problem("%s: empty", field)
		return "", false
	}
	return s, true
}

// DecodeTask normalizes a raw task document. A missing or null timestamp is a
// server value not resolved yet and is replaced by now().
func DecodeTask(doc docstore.Document, now func() time.Time) (models.Task, error) {
	d := &decoder{collection: TasksCollection, doc: doc}
	if doc.ID == "" {
		d.problem("id: missing")
	}

	task := models.Task{ID: doc.ID}
	task.Title, _ = d.required(fieldTitle)
	task.Description, _ = d.required(fieldDescription)

	if raw, ok := d.required(fieldCategory); ok {
		c, err := models.ParseTaskCategory(raw)
		if err != nil {
			d.problem("%s: %v", fieldCategory, err)
		}
		task.Category = c
	}

	if raw, ok := d.required(fieldStatus); ok {
		st, err := models.ParseTaskStatus(raw)
		if err != nil {
			d.problem("%s: %v", fieldStatus, err)
		}
		task.Status = st
	}

	if assignee, ok := d.str(fieldAssignedTo); ok && assignee != UnassignedSentinel {
		task.AssignedTo = strings.TrimSpace(assignee)
	}

	ts, pending, err := decodeTimestamp(doc.Fields[fieldTimestamp])
	if err != nil {
		d.problem("%s: %v", fieldTimestamp, err)
	}
	if pending {
		ts = now().UnixMilli()
	}
	task.Timestamp = ts

	if err := d.err(); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DecodeMember normalizes a raw team member document.
func DecodeMember(doc docstore.Document) (models.TeamMember, error) {
	d := &decoder{collection: MembersCollection, doc: doc}
	if doc.ID == "" {
		d.problem("id: missing")
	}
	member := models.TeamMember{ID: doc.ID}
	name, _ := d.required(fieldName)
	member.Name = strings.TrimSpace(name)

	if raw, ok := d.required(fieldRole); ok {
		r, err := models.ParseMemberRole(raw)
		if err != nil {
			d.problem("%s: %v", fieldRole, err)
		}
		member.Role = r
	}

	if err := d.err(); err != nil {
		return models.TeamMember{}, err
	}
	return member, nil
}

func decodeTimestamp(v any) (ms int64, pending bool, err error) {
	switch t := v.(type) {
	case nil:
		return 0, true, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false, fmt.Errorf("not a finite number")
		}
		return int64(t), false, nil
	case int64:
		return t, false, nil
	case int:
		return int64(t), false, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, false, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false, err
		}
		return int64(f), false, nil
	case time.Time:
		return t.UnixMilli(), false, nil
	}
	return 0, false, fmt.Errorf("want number, got %T", v)
}
