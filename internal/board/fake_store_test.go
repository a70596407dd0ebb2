package board

import (
	"context"
	"fmt"
	"sync"

	"task-board/internal/docstore"
)

type storeCall struct {
	Op         string
	Collection string
	ID         string
	Fields     docstore.Fields
}

type fakeSub struct {
	order   docstore.OrderSpec
	onNext  func([]docstore.Document)
	onError func(error)
	stopped bool
}

// fakeStore records every call and lets tests push notifications by hand.
type fakeStore struct {
	mu        sync.Mutex
	calls     []storeCall
	subs      map[string]*fakeSub
	nextID    int
	failWith  error
	subscribe error
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: make(map[string]*fakeSub)}
}

func (f *fakeStore) Subscribe(_ context.Context, collection string, order docstore.OrderSpec, onNext func([]docstore.Document), onError func(error)) (docstore.CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribe != nil {
		return nil, f.subscribe
	}
	sub := &fakeSub{order: order, onNext: onNext, onError: onError}
	f.subs[collection] = sub
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		sub.stopped = true
	}, nil
}

func (f *fakeStore) record(c storeCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.failWith
}

func (f *fakeStore) Insert(_ context.Context, collection string, fields docstore.Fields) (string, error) {
	if err := f.record(storeCall{Op: "insert", Collection: collection, Fields: fields}); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("doc-%d", f.nextID), nil
}

func (f *fakeStore) Update(_ context.Context, collection, id string, fields docstore.Fields) error {
	return f.record(storeCall{Op: "update", Collection: collection, ID: id, Fields: fields})
}

func (f *fakeStore) Delete(_ context.Context, collection, id string) error {
	return f.record(storeCall{Op: "delete", Collection: collection, ID: id})
}

func (f *fakeStore) sub(collection string) *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[collection]
}

// push delivers docs to the collection's subscriber unless it was cancelled.
func (f *fakeStore) push(collection string, docs ...docstore.Document) {
	sub := f.sub(collection)
	f.mu.Lock()
	stopped := sub == nil || sub.stopped
	f.mu.Unlock()
	if !stopped {
		sub.onNext(docs)
	}
}

func (f *fakeStore) pushError(collection string, err error) {
	sub := f.sub(collection)
	f.mu.Lock()
	stopped := sub == nil || sub.stopped
	f.mu.Unlock()
	if !stopped && sub.onError != nil {
		sub.onError(err)
	}
}

func (f *fakeStore) recorded() []storeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storeCall(nil), f.calls...)
}

func taskDoc(id, title, status string, ts int64) docstore.Document {
	return docstore.Document{ID: id, Fields: docstore.Fields{
		"title":       title,
		"description": title + " description",
		"category":    "frontend",
		"status":      status,
		"timestamp":   float64(ts),
	}}
}

func memberDoc(id, name, role string) docstore.Document {
	return docstore.Document{ID: id, Fields: docstore.Fields{"name": name, "role": role}}
}
