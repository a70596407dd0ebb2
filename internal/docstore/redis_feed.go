package docstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// DefaultChannelPrefix prefixes the pub/sub channel of each collection.
const DefaultChannelPrefix = "taskboard:changes:"

// RedisFeed is a ChangeFeed over Redis pub/sub, letting several processes
// sharing one database see each other's writes.
type RedisFeed struct {
	rc     *redis.Client
	prefix string
	log    *log.Entry
}

// NewRedisFeed returns a feed on rc. An empty prefix uses DefaultChannelPrefix.
func NewRedisFeed(rc *redis.Client, prefix string, logger *log.Entry) *RedisFeed {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &RedisFeed{rc: rc, prefix: prefix, log: logger.WithField("feed", "redis")}
}

func (f *RedisFeed) channel(collection string) string {
	return f.prefix + collection
}

func (f *RedisFeed) Publish(ctx context.Context, collection string) error {
	if err := f.rc.Publish(ctx, f.channel(collection), collection).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", collection, err)
	}
	return nil
}

func (f *RedisFeed) Watch(ctx context.Context, collection string) (<-chan struct{}, error) {
	ps := f.rc.Subscribe(ctx, f.channel(collection))
	// wait for the subscription to be confirmed so no Publish issued after
	// Watch returns is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}
	out := make(chan struct{}, 1)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer func() {
			if err := ps.Close(); err != nil {
				f.log.WithError(err).WithField("collection", collection).Debug("close pubsub")
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					f.log.WithField("collection", collection).Error("pubsub channel closed")
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
