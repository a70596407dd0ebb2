package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	mu     sync.Mutex
	got    [][]byte
	fail   bool
	closed bool
}

func (c *recordingClient) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false
	}
	c.got = append(c.got, message)
	return true
}

func (c *recordingClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func TestHub_BroadcastOnlyReachesTopic(t *testing.T) {
	h := NewHub()
	tasks := &recordingClient{}
	members := &recordingClient{}
	h.Register("tasks", tasks)
	h.Register("teamMembers", members)

	n := h.Broadcast("tasks", []byte("changed"))
	require.Equal(t, 1, n)
	require.Len(t, tasks.got, 1)
	require.Empty(t, members.got)
}

func TestHub_FailedSendNotCounted(t *testing.T) {
	h := NewHub()
	h.Register("board", &recordingClient{fail: true})
	h.Register("board", &recordingClient{})
	require.Equal(t, 1, h.Broadcast("board", []byte("x")))
	require.Equal(t, 2, h.Subscribers("board"))
}

func TestHub_UnregisterCleansTopic(t *testing.T) {
	h := NewHub()
	c := &recordingClient{}
	h.Register("board", c)
	h.Unregister("board", c)
	h.Unregister("board", c)
	require.Equal(t, 0, h.Subscribers("board"))
	require.Equal(t, 0, h.Broadcast("board", []byte("x")))
}

func TestHub_CloseTopic(t *testing.T) {
	h := NewHub()
	c := &recordingClient{}
	h.Register("board", c)
	h.CloseTopic("board")
	require.True(t, c.closed)
	require.Equal(t, 0, h.Subscribers("board"))
}
