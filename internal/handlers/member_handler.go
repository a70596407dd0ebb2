package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-board/internal/board"
)

// GetMembers returns all team members ordered by name
// GET /api/members
func (h *Handler) GetMembers(c *gin.Context) {
	members := h.repo.Members()
	c.JSON(http.StatusOK, gin.H{
		"members": members,
		"count":   len(members),
	})
}

// AddMember creates a team member
// POST /api/members
func (h *Handler) AddMember(c *gin.Context) {
	var req board.MemberDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.ctrl.AddMember(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": id, "message": "Team member added successfully"})
}
