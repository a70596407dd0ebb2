package board

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"task-board/internal/docstore"
	"task-board/internal/models"
)

// Snapshot is a point-in-time copy of the repository state.
type Snapshot struct {
	Tasks     []models.Task
	Members   []models.TeamMember
	Loading   bool
	LastError error
	// Version increases whenever any other field changes.
	Version uint64
}

// Repository mirrors the tasks and teamMembers collections. It is a
// read-through cache: only subscription deliveries write to it, and every
// delivery replaces a whole collection.
type Repository struct {
	log *log.Entry
	now func() time.Time

	// deliverMu serializes deliveries from both subscriptions and the
	// listener calls that follow them.
	deliverMu sync.Mutex

	mu         sync.RWMutex
	tasks      []models.Task
	members    []models.TeamMember
	loading    bool
	taskErr    error
	memberErr  error
	configErr  error
	version    uint64
	closed     bool
	cancels    []docstore.CancelFunc
	listeners  map[int]func(Snapshot)
	nextListen int

	loaded     chan struct{}
	loadedOnce sync.Once

	// membersLoaded closes on the first member delivery or member channel
	// failure. It does not affect Loading.
	membersLoaded     chan struct{}
	membersLoadedOnce sync.Once
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithLogger sets the logger used for delivery and decode diagnostics.
func WithLogger(entry *log.Entry) RepositoryOption {
	return func(r *Repository) { r.log = entry }
}

// WithClock sets the clock used for unresolved task timestamps.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) { r.now = now }
}

// NewRepository subscribes to team members (by name) and tasks (newest
// first). Subscription failures do not fail construction; they surface
// through LastError. A nil store produces a repository whose LastError is a
// ConfigurationError.
func NewRepository(ctx context.Context, store docstore.Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		log:       log.NewEntry(log.StandardLogger()),
		now:       time.Now,
		loading:   true,
		listeners: make(map[int]func(Snapshot)),
		loaded:    make(chan struct{}),

		membersLoaded: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "repository")

	if store == nil {
		r.configErr = &ConfigurationError{Reason: "repository has no document store"}
		r.loading = false
		r.markLoaded()
		r.markMembersLoaded()
		r.log.Error(r.configErr.Error())
		return r
	}

	r.subscribe(ctx, store, MembersCollection, docstore.OrderSpec{Field: fieldName}, r.applyMembers)
	r.subscribe(ctx, store, TasksCollection, docstore.OrderSpec{Field: fieldTimestamp, Desc: true}, r.applyTasks)
	return r
}

func (r *Repository) subscribe(ctx context.Context, store docstore.Store, collection string, order docstore.OrderSpec, onNext func([]docstore.Document)) {
	onError := func(err error) {
		r.applyError(collection, &AdapterError{Op: "load " + collection, Err: err})
	}
	cancel, err := store.Subscribe(ctx, collection, order, onNext, onError)
	if err != nil {
		onError(err)
		return
	}
	r.mu.Lock()
	r.cancels = append(r.cancels, cancel)
	r.mu.Unlock()
}

func (r *Repository) markLoaded() {
	r.loadedOnce.Do(func() { close(r.loaded) })
}

func (r *Repository) markMembersLoaded() {
	r.membersLoadedOnce.Do(func() { close(r.membersLoaded) })
}

func (r *Repository) applyTasks(docs []docstore.Document) {
	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		t, err := DecodeTask(doc, r.now)
		if err != nil {
			r.log.WithError(err).Warn("skipping malformed task document")
			continue
		}
		tasks = append(tasks, t)
	}

	r.deliver(func() bool {
		changed := r.loading || r.taskErr != nil || !slices.Equal(r.tasks, tasks)
		r.tasks = tasks
		r.taskErr = nil
		r.loading = false
		r.markLoaded()
		return changed
	})
	r.log.WithField("count", len(tasks)).Debug("tasks loaded")
}

func (r *Repository) applyMembers(docs []docstore.Document) {
	members := make([]models.TeamMember, 0, len(docs))
	for _, doc := range docs {
		m, err := DecodeMember(doc)
		if err != nil {
			r.log.WithError(err).Warn("skipping malformed team member document")
			continue
		}
		members = append(members, m)
	}

	r.deliver(func() bool {
		changed := r.memberErr != nil || !slices.Equal(r.members, members)
		r.members = members
		r.memberErr = nil
		r.markMembersLoaded()
		return changed
	})
	r.log.WithField("count", len(members)).Debug("team members loaded")
}

func (r *Repository) applyError(collection string, err error) {
	r.log.WithError(err).WithField("collection", collection).Error("subscription failed")
	r.deliver(func() bool {
		if collection == TasksCollection {
			r.taskErr = err
			// a failing task channel ends the initial loading state too
			r.loading = false
			r.markLoaded()
		} else {
			r.memberErr = err
			r.markMembersLoaded()
		}
		return true
	})
}

// deliver runs mutate under the write lock and, if it reports a change,
// bumps the version and notifies listeners. Nothing happens once closed.
func (r *Repository) deliver(mutate func() bool) {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if !mutate() {
		r.mu.Unlock()
		return
	}
	r.version++
	snap := r.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (r *Repository) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:     slices.Clone(r.tasks),
		Members:   slices.Clone(r.members),
		Loading:   r.loading,
		LastError: r.lastErrorLocked(),
		Version:   r.version,
	}
}

func (r *Repository) lastErrorLocked() error {
	return errors.Join(r.configErr, r.taskErr, r.memberErr)
}

// OnChange registers fn to run after every state change. fn runs on a
// delivery goroutine and must not call Close. The returned func removes it.
func (r *Repository) OnChange(fn func(Snapshot)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextListen
	r.nextListen++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// Snapshot returns a copy of the current state.
func (r *Repository) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Tasks returns the mirrored tasks, newest first.
func (r *Repository) Tasks() []models.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tasks)
}

// Members returns the mirrored team members ordered by name.
func (r *Repository) Members() []models.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.members)
}

// Task looks a task up by id.
func (r *Repository) Task(id string) (models.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Member looks a team member up by id.
func (r *Repository) Member(id string) (models.TeamMember, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.ID == id {
			return m, true
		}
	}
	return models.TeamMember{}, false
}

// Loading is true until the first task delivery (or task channel failure).
func (r *Repository) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// LastError returns the standing error of each failing channel, joined, or
// nil when every channel is healthy.
func (r *Repository) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErrorLocked()
}

// WaitLoaded blocks until Loading turns false or ctx is done.
func (r *Repository) WaitLoaded(ctx context.Context) error {
	select {
	case <-r.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitMembersLoaded blocks until the first team member delivery (or member
// channel failure) or until ctx is done.
func (r *Repository) WaitMembersLoaded(ctx context.Context) error {
	select {
	case <-r.membersLoaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels both subscriptions. It is idempotent; once it returns the
// state no longer changes and no listener runs.
func (r *Repository) Close() {
	r.deliverMu.Lock()
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.deliverMu.Unlock()
		return
	}
	r.closed = true
	cancels := r.cancels
	r.cancels = nil
	r.mu.Unlock()
	r.deliverMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	r.log.Debug("repository closed")
}
