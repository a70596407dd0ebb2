package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"task-board/internal/board"
	"task-board/internal/models"
)

// Color palette
var (
	colorTodo     = lipgloss.Color("#FFE66D")
	colorProgress = lipgloss.Color("#4ECDC4")
	colorDone     = lipgloss.Color("#95E1A3")
	colorMuted    = lipgloss.Color("#888888")
	colorBorder   = lipgloss.Color("#333333")
	colorError    = lipgloss.Color("#FF6B6B")
)

var (
	columnStyle = lipgloss.NewStyle().
			Width(34).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true)

	titleStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

func columnColor(id board.ColumnID) lipgloss.Color {
	switch id {
	case board.ColumnInProgress:
		return colorProgress
	case board.ColumnDone:
		return colorDone
	}
	return colorTodo
}

// memberNames indexes member display names by id.
func memberNames(members []models.TeamMember) map[string]string {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names
}

func renderCard(t models.Task, names map[string]string) string {
	assignee := "Unassigned"
	if t.IsAssigned() {
		assignee = names[t.AssignedTo]
		if assignee == "" {
			assignee = t.AssignedTo
		}
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n")
	b.WriteString(t.Description)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s · %s", t.Category, assignee, shortID(t.ID))))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderBoard draws the three columns side by side.
func RenderBoard(cols []board.Column, members []models.TeamMember) string {
	names := memberNames(members)
	rendered := make([]string, 0, len(cols))
	for _, col := range cols {
		header := headerStyle.Foreground(columnColor(col.ID)).Render(fmt.Sprintf("%s (%d)", col.Title, col.Count))
		parts := []string{header, ""}
		if len(col.Tasks) == 0 {
			parts = append(parts, mutedStyle.Render("No tasks"))
		}
		for _, t := range col.Tasks {
			parts = append(parts, renderCard(t, names), "")
		}
		rendered = append(rendered, columnStyle.Render(strings.Join(parts, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// RenderMembers lists members one per line.
func RenderMembers(members []models.TeamMember) string {
	if len(members) == 0 {
		return mutedStyle.Render("No team members yet. Add one with: taskboard member add <name> --role <role>")
	}
	var b strings.Builder
	for _, m := range members {
		fmt.Fprintf(&b, "%s  %s  %s\n", mutedStyle.Render(shortID(m.ID)), titleStyle.Render(m.Name), m.Role)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderNotice formats a controller outcome for the terminal.
func RenderNotice(n board.Notice) string {
	if n.Kind == board.NoticeError {
		return errorStyle.Render("✖ "+n.Title) + " " + n.Message
	}
	return lipgloss.NewStyle().Foreground(colorDone).Render("✔ "+n.Title) + " " + n.Message
}
