package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-board/internal/board"
)

// MoveTaskRequest is the drop half of a drag gesture.
type MoveTaskRequest struct {
	Column board.ColumnID `json:"column" binding:"required"`
}

/*
*
GetBoard handles GET /api/board
Returns the visible tasks grouped into the three columns.
Optional query params: member, category, sortBy (timestamp|title), direction (asc|desc).
*/
func (h *Handler) GetBoard(c *gin.Context) {
	crit, err := criteria(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	snap := h.repo.Snapshot()
	tasks := h.project(snap, crit)

	c.JSON(http.StatusOK, gin.H{
		"columns": board.GroupByStatus(tasks),
		"members": snap.Members,
		"total":   len(tasks),
		"loading": snap.Loading,
		"error":   errorString(snap.LastError),
		"version": snap.Version,
		"sort":    crit.Direction.Label(crit.SortBy),
	})
}

// GetTasks handles GET /api/tasks
// Same query params as GetBoard, returned as one ordered list.
func (h *Handler) GetTasks(c *gin.Context) {
	crit, err := criteria(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	snap := h.repo.Snapshot()
	tasks := h.project(snap, crit)

	c.JSON(http.StatusOK, gin.H{
		"tasks":   tasks,
		"count":   len(tasks),
		"loading": snap.Loading,
	})
}

// GetTaskByID handles GET /api/tasks/:id
func (h *Handler) GetTaskByID(c *gin.Context) {
	task, ok := h.repo.Task(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req board.TaskDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.ctrl.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "message": "Task added successfully"})
}

// UpdateTask handles PUT /api/tasks/:id
// Overwrites title, description, category, assignee and optionally status.
func (h *Handler) UpdateTask(c *gin.Context) {
	var req board.TaskEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.ctrl.EditTask(c.Request.Context(), id, req); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "message": "Task details have been updated"})
}

// StartTask handles POST /api/tasks/:id/start
func (h *Handler) StartTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.ctrl.StartTask(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "message": "Task moved to In Progress"})
}

// CompleteTask handles POST /api/tasks/:id/complete
func (h *Handler) CompleteTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.ctrl.CompleteTask(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "message": "Task moved to Done"})
}

// MoveTask handles POST /api/tasks/:id/move
// Applies a drop on a column. Dropping on the current column is a no-op.
func (h *Handler) MoveTask(c *gin.Context) {
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	moved, err := h.drag.End(c.Request.Context(), id, req.Column)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !moved {
		c.JSON(http.StatusOK, gin.H{"id": id, "moved": false})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "moved": true})
}

// DeleteTask handles DELETE /api/tasks/:id
// Only done tasks can be deleted.
func (h *Handler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	if err := h.ctrl.DeleteTask(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "message": "Task has been permanently deleted"})
}
