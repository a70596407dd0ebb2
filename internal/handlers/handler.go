package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"task-board/internal/board"
	"task-board/internal/cache"
	"task-board/internal/models"
)

// Handler serves the board over HTTP. Reads come from the repository
// snapshot; writes go through the controller and return 202 because the
// change only becomes visible once the store notifies the repository.
type Handler struct {
	repo  *board.Repository
	ctrl  *board.Controller
	drag  *board.Drag
	feed  *BoardFeed
	views cache.Cache[string, []models.Task]
	log   *log.Entry
}

// New wires a Handler. feed may be nil when no WebSocket route is served.
func New(repo *board.Repository, ctrl *board.Controller, feed *BoardFeed, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Handler{
		repo:  repo,
		ctrl:  ctrl,
		drag:  board.NewDrag(repo, ctrl),
		feed:  feed,
		views: cache.New[string, []models.Task](cache.Options{TTL: time.Minute, MaxEntries: 256}),
		log:   logger.WithField("component", "http"),
	}
}

// statusFor maps a board error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case board.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, board.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, board.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case board.IsAdapter(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// criteria reads member, category, sortBy and direction from the query.
func criteria(c *gin.Context) (board.Criteria, error) {
	return board.ParseCriteria(c.Query("member"), c.Query("category"), c.Query("sortBy"), c.Query("direction"))
}

// project returns the visible tasks of snap, memoized per snapshot version.
func (h *Handler) project(snap board.Snapshot, crit board.Criteria) []models.Task {
	key := fmt.Sprintf("%d|%s", snap.Version, crit)
	return h.views.GetOrCompute(key, func() []models.Task {
		return board.Project(snap.Tasks, crit)
	})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Health handles GET /health. It reports whether the store is configured and
// the repository's standing error, if any.
func (h *Handler) Health(c *gin.Context) {
	snap := h.repo.Snapshot()
	status, code := "ok", http.StatusOK
	switch {
	case errors.Is(snap.LastError, board.ErrNotConfigured):
		status, code = "unconfigured", http.StatusServiceUnavailable
	case snap.LastError != nil:
		status = "degraded"
	}
	c.JSON(code, gin.H{
		"status":  status,
		"message": "Task board API is running",
		"loading": snap.Loading,
		"error":   errorString(snap.LastError),
		"version": snap.Version,
	})
}
