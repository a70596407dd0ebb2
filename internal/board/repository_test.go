package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-board/internal/docstore"
)

func newTestRepository(t *testing.T) (*Repository, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	repo := NewRepository(context.Background(), store, WithClock(fixedNow))
	t.Cleanup(repo.Close)
	return repo, store
}

func TestRepository_SubscribesWithOrdering(t *testing.T) {
	_, store := newTestRepository(t)
	require.Equal(t, docstore.OrderSpec{Field: "timestamp", Desc: true}, store.sub(TasksCollection).order)
	require.Equal(t, docstore.OrderSpec{Field: "name"}, store.sub(MembersCollection).order)
}

func TestRepository_LoadingUntilFirstTaskDelivery(t *testing.T) {
	repo, store := newTestRepository(t)
	require.True(t, repo.Loading())

	store.push(MembersCollection, memberDoc("m1", "Ada", "QA engineer"))
	require.True(t, repo.Loading(), "member delivery does not end loading")

	store.push(TasksCollection)
	require.False(t, repo.Loading())
	require.NoError(t, repo.WaitLoaded(context.Background()))

	store.pushError(TasksCollection, errors.New("boom"))
	require.False(t, repo.Loading())
}

func TestRepository_TaskErrorEndsLoading(t *testing.T) {
	repo, store := newTestRepository(t)
	store.pushError(TasksCollection, errors.New("permission denied"))
	require.False(t, repo.Loading())
	require.True(t, IsAdapter(repo.LastError()))
}

func TestRepository_IdempotentReplace(t *testing.T) {
	repo, store := newTestRepository(t)
	payload := []docstore.Document{
		taskDoc("t2", "second", "in-progress", 2),
		taskDoc("t1", "first", "todo", 1),
	}

	store.push(TasksCollection, payload...)
	first := repo.Snapshot()
	store.push(TasksCollection, payload...)
	second := repo.Snapshot()

	require.Equal(t, first, second)
	require.Len(t, second.Tasks, 2)
	require.Equal(t, "new", string(second.Tasks[1].Status))
}

func TestRepository_ReplacesWholeCollection(t *testing.T) {
	repo, store := newTestRepository(t)
	store.push(TasksCollection, taskDoc("t1", "a", "new", 1), taskDoc("t2", "b", "new", 2))
	store.push(TasksCollection, taskDoc("t3", "c", "done", 3))

	tasks := repo.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "t3", tasks[0].ID)
	_, ok := repo.Task("t1")
	require.False(t, ok)
}

func TestRepository_SkipsMalformedDocuments(t *testing.T) {
	repo, store := newTestRepository(t)
	bad := taskDoc("bad", "x", "blocked", 1)
	store.push(TasksCollection, taskDoc("t1", "a", "new", 2), bad)

	tasks := repo.Tasks()
	require.Len(t, tasks, 1)
	require.Equal(t, "t1", tasks[0].ID)
	require.NoError(t, repo.LastError())
}

func TestRepository_ChannelFailureIsolation(t *testing.T) {
	repo, store := newTestRepository(t)
	store.push(TasksCollection, taskDoc("t1", "a", "new", 1))
	store.push(MembersCollection, memberDoc("m1", "Ada", "QA engineer"))

	memberErr := errors.New("members unavailable")
	store.pushError(MembersCollection, memberErr)

	require.ErrorIs(t, repo.LastError(), memberErr)
	require.Len(t, repo.Tasks(), 1, "tasks survive a member channel failure")
	require.Len(t, repo.Members(), 1, "previous members stay visible")

	store.push(TasksCollection, taskDoc("t1", "a", "in-progress", 1))
	task, ok := repo.Task("t1")
	require.True(t, ok)
	require.Equal(t, "in-progress", string(task.Status))

	// recovery clears the standing error
	store.push(MembersCollection, memberDoc("m1", "Ada", "QA engineer"))
	require.NoError(t, repo.LastError())
}

func TestRepository_SubscribeFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.subscribe = errors.New("unreachable")
	repo := NewRepository(context.Background(), store)
	defer repo.Close()

	require.False(t, repo.Loading())
	require.ErrorContains(t, repo.LastError(), "unreachable")
}

func TestRepository_NilStore(t *testing.T) {
	repo := NewRepository(context.Background(), nil)
	defer repo.Close()

	require.False(t, repo.Loading())
	require.ErrorIs(t, repo.LastError(), ErrNotConfigured)
}

func TestRepository_OnChange(t *testing.T) {
	repo, store := newTestRepository(t)
	var (
		mu   sync.Mutex
		seen []uint64
	)
	remove := repo.OnChange(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Version)
	})

	store.push(TasksCollection, taskDoc("t1", "a", "new", 1))
	store.push(TasksCollection, taskDoc("t1", "a", "new", 1)) // unchanged, no call
	store.push(MembersCollection, memberDoc("m1", "Ada", "QA engineer"))
	remove()
	store.push(TasksCollection)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []uint64{1, 2}, seen)
}

func TestRepository_UnsubscribeSafety(t *testing.T) {
	repo, store := newTestRepository(t)
	store.push(TasksCollection, taskDoc("t1", "a", "new", 1))
	before := repo.Snapshot()

	// capture the callbacks so a late delivery can be simulated after cancel
	tasksSub := store.sub(TasksCollection)
	membersSub := store.sub(MembersCollection)

	repo.Close()
	repo.Close()
	require.True(t, tasksSub.stopped)
	require.True(t, membersSub.stopped)

	tasksSub.onNext([]docstore.Document{taskDoc("t9", "late", "done", 9)})
	membersSub.onError(errors.New("late"))
	require.Equal(t, before, repo.Snapshot())
}

func TestRepository_CloseDuringDelivery(t *testing.T) {
	repo, store := newTestRepository(t)
	sub := store.sub(TasksCollection)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub.onNext([]docstore.Document{taskDoc("t", "a", "new", int64(i*100+j))})
			}
		}(i)
	}
	time.Sleep(time.Millisecond)
	repo.Close()
	after := repo.Snapshot()
	wg.Wait()
	require.Equal(t, after, repo.Snapshot())
}

func TestRepository_WaitLoadedHonorsContext(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, repo.WaitLoaded(ctx), context.DeadlineExceeded)
}

func TestRepository_TaskLoadDoesNotWaitForMembers(t *testing.T) {
	repo, store := newTestRepository(t)

	store.push(TasksCollection, taskDoc("t1", "first", "new", 1))
	require.NoError(t, repo.WaitLoaded(context.Background()))
	require.Empty(t, repo.Members())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, repo.WaitMembersLoaded(ctx), context.DeadlineExceeded)

	store.push(MembersCollection, memberDoc("m1", "Ada", "QA engineer"))
	require.NoError(t, repo.WaitMembersLoaded(context.Background()))
	require.Len(t, repo.Members(), 1)
}

func TestRepository_MemberErrorEndsMemberWait(t *testing.T) {
	repo, store := newTestRepository(t)
	store.pushError(MembersCollection, errors.New("permission denied"))
	require.NoError(t, repo.WaitMembersLoaded(context.Background()))
	require.True(t, repo.Loading(), "member failure does not end loading")
}

func TestRepository_NilStoreMembersReady(t *testing.T) {
	repo := NewRepository(context.Background(), nil)
	defer repo.Close()
	require.NoError(t, repo.WaitMembersLoaded(context.Background()))
}
