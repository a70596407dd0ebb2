package board

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"task-board/internal/models"
)

// Filter sentinels meaning "no filter".
const (
	AllMembers    = "allMembers"
	AllCategories = "allCategories"
)

// SortKey selects the field the projection sorts on.
type SortKey string

const (
	SortByTimestamp SortKey = "timestamp"
	SortByTitle     SortKey = "title"
)

// Direction is the sort direction, independent of the key.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Label returns the direction as a filter control would show it for key.
func (d Direction) Label(key SortKey) string {
	switch {
	case key == SortByTitle && d == Ascending:
		return "A → Z"
	case key == SortByTitle:
		return "Z → A"
	case d == Ascending:
		return "Oldest First"
	default:
		return "Newest First"
	}
}

// Criteria are the active filter and sort settings.
type Criteria struct {
	Member    string
	Category  string
	SortBy    SortKey
	Direction Direction
}

// DefaultCriteria shows every task, newest first.
func DefaultCriteria() Criteria {
	return Criteria{SortBy: SortByTimestamp, Direction: Descending}
}

// String renders the criteria as a stable key.
func (c Criteria) String() string {
	return strings.Join([]string{c.Member, c.Category, string(c.SortBy), string(c.Direction)}, "|")
}

// ParseCriteria validates raw filter input. Empty values fall back to the
// defaults; sentinels are kept as given.
func ParseCriteria(member, category, sortBy, direction string) (Criteria, error) {
	c := DefaultCriteria()
	c.Member = strings.TrimSpace(member)

	category = strings.TrimSpace(category)
	if category != "" && category != AllCategories {
		parsed, err := models.ParseTaskCategory(category)
		if err != nil {
			return Criteria{}, &ValidationError{Field: "category", Reason: err.Error()}
		}
		category = string(parsed)
	}
	c.Category = category

	switch key := SortKey(strings.TrimSpace(sortBy)); key {
	case "":
	case SortByTimestamp, SortByTitle:
		c.SortBy = key
	default:
		return Criteria{}, &ValidationError{Field: "sortBy", Reason: "must be timestamp or title"}
	}

	switch dir := Direction(strings.ToLower(strings.TrimSpace(direction))); dir {
	case "":
	case Ascending, Descending:
		c.Direction = dir
	default:
		return Criteria{}, &ValidationError{Field: "direction", Reason: "must be asc or desc"}
	}
	return c, nil
}

// Matches reports whether t passes both filters.
func (c Criteria) Matches(t models.Task) bool {
	if c.Member != "" && c.Member != AllMembers && t.AssignedTo != c.Member {
		return false
	}
	if c.Category != "" && c.Category != AllCategories && string(t.Category) != c.Category {
		return false
	}
	return true
}

// Project filters and sorts tasks into a new slice. The input is left
// untouched and ties keep their input order.
func Project(tasks []models.Task, c Criteria) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Matches(t) {
			out = append(out, t)
		}
	}

	var cmp func(a, b models.Task) int
	switch c.SortBy {
	case SortByTitle:
		// a Collator keeps internal buffers and is not safe for concurrent use
		col := collate.New(language.English)
		cmp = func(a, b models.Task) int { return col.CompareString(a.Title, b.Title) }
	default:
		cmp = func(a, b models.Task) int {
			switch {
			case a.Timestamp < b.Timestamp:
				return -1
			case a.Timestamp > b.Timestamp:
				return 1
			}
			return 0
		}
	}
	if c.Direction == Ascending {
		slices.SortStableFunc(out, cmp)
	} else {
		slices.SortStableFunc(out, func(a, b models.Task) int { return cmp(b, a) })
	}
	return out
}

// Column is one lane of the board.
type Column struct {
	ID     ColumnID          `json:"id"`
	Title  string            `json:"title"`
	Status models.TaskStatus `json:"status"`
	Tasks  []models.Task     `json:"tasks"`
	Count  int               `json:"count"`
}

// GroupByStatus splits projected tasks into the three board columns, keeping
// their order. Legacy todo tasks land in the To Do column.
func GroupByStatus(tasks []models.Task) []Column {
	cols := make([]Column, len(Columns))
	index := make(map[models.TaskStatus]int, len(Columns))
	for i, id := range Columns {
		st := id.Status()
		cols[i] = Column{ID: id, Title: st.Label(), Status: st, Tasks: []models.Task{}}
		index[st] = i
	}
	for _, t := range tasks {
		i, ok := index[t.Status.Canonical()]
		if !ok {
			continue
		}
		cols[i].Tasks = append(cols[i].Tasks, t)
	}
	for i := range cols {
		cols[i].Count = len(cols[i].Tasks)
	}
	return cols
}
