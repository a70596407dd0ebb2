package board

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-board/internal/docstore"
	"task-board/internal/models"
)

var fixedNow = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestDecodeTask_Valid(t *testing.T) {
	doc := docstore.Document{ID: "t1", Fields: docstore.Fields{
		"title":       "Design review",
		"description": "Review mockups",
		"category":    "UX",
		"status":      "todo",
		"assignedTo":  "m1",
		"timestamp":   float64(1234),
	}}
	task, err := DecodeTask(doc, fixedNow)
	require.NoError(t, err)
	require.Equal(t, models.Task{
		ID:          "t1",
		Title:       "Design review",
		Description: "Review mockups",
		Category:    models.CategoryUX,
		Status:      models.StatusNew,
		AssignedTo:  "m1",
		Timestamp:   1234,
	}, task)
}

func TestDecodeTask_PendingTimestampAndSentinel(t *testing.T) {
	doc := taskDoc("t1", "a", "new", 0)
	doc.Fields["timestamp"] = nil
	doc.Fields["assignedTo"] = UnassignedSentinel
	task, err := DecodeTask(doc, fixedNow)
	require.NoError(t, err)
	require.Equal(t, fixedNow().UnixMilli(), task.Timestamp)
	require.False(t, task.IsAssigned())

	delete(doc.Fields, "timestamp")
	task, err = DecodeTask(doc, fixedNow)
	require.NoError(t, err)
	require.Equal(t, fixedNow().UnixMilli(), task.Timestamp)
}

func TestDecodeTask_TimestampForms(t *testing.T) {
	for name, v := range map[string]any{
		"int64":       int64(42),
		"int":         42,
		"json number": json.Number("42"),
		"time":        time.UnixMilli(42),
	} {
		doc := taskDoc("t1", "a", "new", 0)
		doc.Fields["timestamp"] = v
		task, err := DecodeTask(doc, fixedNow)
		require.NoError(t, err, name)
		require.Equal(t, int64(42), task.Timestamp, name)
	}
}

func TestDecodeTask_Malformed(t *testing.T) {
	cases := map[string]func(f docstore.Fields){
		"missing title":    func(f docstore.Fields) { delete(f, "title") },
		"blank title":      func(f docstore.Fields) { f["title"] = "  " },
		"title not string": func(f docstore.Fields) { f["title"] = 7.0 },
		"unknown category": func(f docstore.Fields) { f["category"] = "design" },
		"unknown status":   func(f docstore.Fields) { f["status"] = "blocked" },
		"bad timestamp":    func(f docstore.Fields) { f["timestamp"] = "yesterday" },
		"assignee number":  func(f docstore.Fields) { f["assignedTo"] = 3.0 },
	}
	for name, mutate := range cases {
		doc := taskDoc("t1", "a", "new", 1)
		mutate(doc.Fields)
		_, err := DecodeTask(doc, fixedNow)
		require.Error(t, err, name)
		var de *DecodeError
		require.True(t, errors.As(err, &de), name)
		require.Equal(t, TasksCollection, de.Collection)
	}

	_, err := DecodeTask(docstore.Document{Fields: taskDoc("", "a", "new", 1).Fields}, fixedNow)
	require.ErrorContains(t, err, "id: missing")
}

func TestDecodeMember(t *testing.T) {
	m, err := DecodeMember(memberDoc("m1", " Ada ", "Frontend Developer"))
	require.NoError(t, err)
	require.Equal(t, models.TeamMember{ID: "m1", Name: "Ada", Role: models.RoleFrontendDeveloper}, m)

	_, err = DecodeMember(memberDoc("m2", "Bob", "astronaut"))
	require.Error(t, err)
	_, err = DecodeMember(docstore.Document{ID: "m3", Fields: docstore.Fields{"role": "QA engineer"}})
	require.ErrorContains(t, err, "name: missing")
}
