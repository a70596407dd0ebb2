package docstore

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

type subscription struct {
	store      *GormStore
	collection string
	order      OrderSpec
	onNext     func([]Document)
	onError    func(error)

	ctx     context.Context
	cancel  context.CancelFunc
	changes <-chan struct{}
	// local carries same-process writes when changes comes from an
	// external feed; nil otherwise.
	local <-chan struct{}

	stopped    atomic.Bool
	inCallback atomic.Bool
	once       sync.Once
	done       chan struct{}
}

func (s *subscription) run() {
	defer close(s.done)
	defer s.store.forget(s)
	s.refresh()
	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-s.changes:
			if !ok {
				if s.ctx.Err() == nil {
					s.fail(ErrFeedClosed)
				}
				return
			}
			s.refresh()
		case _, ok := <-s.local:
			if !ok {
				return
			}
			s.refresh()
		}
	}
}

func (s *subscription) refresh() {
	if s.stopped.Load() {
		return
	}
	docs, err := s.store.List(s.ctx, s.collection, s.order)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.fail(err)
		return
	}
	s.deliver(func() { s.onNext(docs) })
}

func (s *subscription) fail(err error) {
	s.store.log.WithError(err).WithField("collection", s.collection).Warn("subscription error")
	if s.onError != nil {
		s.deliver(func() { s.onError(err) })
	}
}

// deliver runs cb unless the subscription is stopped. inCallback is raised
// before stopped is checked, so a stop that does not see it raised is
// guaranteed that cb will not run.
func (s *subscription) deliver(cb func()) {
	s.inCallback.Store(true)
	defer s.inCallback.Store(false)
	if s.stopped.Load() {
		return
	}
	cb()
}

// halt cancels the subscription without waiting for its goroutine.
func (s *subscription) halt() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.cancel()
		s.store.log.WithFields(log.Fields{"collection": s.collection}).Debug("subscription stopped")
	})
}

// stop is the subscription's CancelFunc. Once it returns no callback runs,
// unless a callback was already running when stop was called (including a
// callback that calls stop itself); that callback completes.
func (s *subscription) stop() {
	s.halt()
	if !s.inCallback.Load() {
		<-s.done
	}
}
