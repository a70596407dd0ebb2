package routes

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"task-board/internal/handlers"
	"task-board/internal/middleware"
)

// SetupRoutes builds the gin engine serving h.
func SetupRoutes(h *handlers.Handler, logger *log.Entry) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS())

	// Health check endpoint, doubles as the connection status banner
	ginRouter.GET("/health", h.Health)

	// Live board push
	ginRouter.GET("/ws", h.WebSocket)

	api := ginRouter.Group("/api")
	{
		api.GET("/board", h.GetBoard)

		// Task endpoints
		api.GET("/tasks", h.GetTasks)
		api.GET("/tasks/:id", h.GetTaskByID)
		api.POST("/tasks", h.CreateTask)
		api.PUT("/tasks/:id", h.UpdateTask)
		api.POST("/tasks/:id/start", h.StartTask)
		api.POST("/tasks/:id/complete", h.CompleteTask)
		api.POST("/tasks/:id/move", h.MoveTask)
		api.DELETE("/tasks/:id", h.DeleteTask)

		// Team member endpoints
		api.GET("/members", h.GetMembers)
		api.POST("/members", h.AddMember)
	}

	return ginRouter
}
