package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"task-board/internal/board"
	"task-board/internal/models"
	"task-board/internal/realtime"
)

// BoardTopic is the hub topic every board socket listens on.
const BoardTopic = "board"

// BoardEvent is pushed after every repository change. Columns use the
// default criteria; clients that filter call GET /api/board.
type BoardEvent struct {
	Type    string              `json:"type"`
	Version uint64              `json:"version"`
	Loading bool                `json:"loading"`
	Error   string              `json:"error,omitempty"`
	Columns []board.Column      `json:"columns"`
	Members []models.TeamMember `json:"members"`
}

// NoticeEvent carries one controller outcome.
type NoticeEvent struct {
	Type   string       `json:"type"`
	Notice board.Notice `json:"notice"`
}

func newBoardEvent(snap board.Snapshot) BoardEvent {
	members := snap.Members
	if members == nil {
		members = []models.TeamMember{}
	}
	return BoardEvent{
		Type:    "board",
		Version: snap.Version,
		Loading: snap.Loading,
		Error:   errorString(snap.LastError),
		Columns: board.GroupByStatus(board.Project(snap.Tasks, board.DefaultCriteria())),
		Members: members,
	}
}

// BoardFeed publishes board snapshots and notices to WebSocket clients
// through a realtime.Hub.
type BoardFeed struct {
	hub *realtime.Hub
	log *log.Entry
}

// NewBoardFeed returns a feed broadcasting on hub.
func NewBoardFeed(hub *realtime.Hub, logger *log.Entry) *BoardFeed {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &BoardFeed{hub: hub, log: logger.WithField("component", "ws")}
}

func (f *BoardFeed) broadcast(evt any) {
	bytes, err := json.Marshal(evt)
	if err != nil {
		f.log.WithError(err).Error("encode event")
		return
	}
	f.hub.Broadcast(BoardTopic, bytes)
}

// PublishSnapshot is meant for Repository.OnChange.
func (f *BoardFeed) PublishSnapshot(snap board.Snapshot) {
	f.broadcast(newBoardEvent(snap))
}

// PublishNotice is meant for board.WithNoticeSink.
func (f *BoardFeed) PublishNotice(n board.Notice) {
	f.broadcast(NoticeEvent{Type: "notice", Notice: n})
}

// wsClient implements realtime.Client by wrapping a websocket connection.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return false
	}
	return true
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocket upgrades the connection, sends the current board and then
// streams board and notice events until the client goes away.
func (h *Handler) WebSocket(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates are not enabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn}
	hub := h.feed.hub
	hub.Register(BoardTopic, client)

	// registered first, so nothing newer than this snapshot can be missed;
	// clients order events by version
	if initial, err := json.Marshal(newBoardEvent(h.repo.Snapshot())); err == nil {
		client.Send(initial)
	}

	// Heartbeat: send periodic pings; close on error
	pingTicker := time.NewTicker(30 * time.Second)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	}()
	defer func() {
		close(done)
		pingTicker.Stop()
		hub.Unregister(BoardTopic, client)
		client.Close()
	}()

	// Reader loop: drain messages and keep connection alive via pong handler
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
