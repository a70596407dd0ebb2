package docstore

import (
	"context"

	"task-board/internal/realtime"
)

const hubTopicPrefix = "docstore:"

// HubFeed is an in-process ChangeFeed on top of a realtime.Hub. It only
// reaches subscribers living in the same process.
type HubFeed struct {
	hub *realtime.Hub
}

// NewHubFeed returns a feed publishing through hub.
func NewHubFeed(hub *realtime.Hub) *HubFeed {
	return &HubFeed{hub: hub}
}

func (f *HubFeed) Publish(_ context.Context, collection string) error {
	f.hub.Broadcast(hubTopicPrefix+collection, []byte(collection))
	return nil
}

func (f *HubFeed) Watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	topic := hubTopicPrefix + collection
	sig := &signal{ch: make(chan struct{}, 1)}
	f.hub.Register(topic, sig)
	go func() {
		<-ctx.Done()
		f.hub.Unregister(topic, sig)
		// no Broadcast can reach sig after Unregister
		close(sig.ch)
	}()
	return sig.ch, nil
}

// signal adapts a coalescing channel to realtime.Client.
type signal struct {
	ch chan struct{}
}

func (s *signal) Send([]byte) bool {
	select {
	case s.ch <- struct{}{}:
	default:
	}
	return true
}

func (s *signal) Close() {}
