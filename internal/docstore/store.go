// Package docstore is the document store the board runs against: schemaless
// documents grouped into named collections, mutations that resolve
// server-side values, and live subscriptions that push the full ordered
// contents of a collection whenever it changes.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Update when the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrClosed is returned by every operation once the store is closed.
	ErrClosed = errors.New("document store closed")
	// ErrFeedClosed is reported to a subscription whose change feed ended
	// while the subscription was still active.
	ErrFeedClosed = errors.New("change feed closed")
)

// Fields is the body of a document.
type Fields map[string]any

// Document is a raw document as held by the store.
type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"fields"`
}

type serverTimestamp struct{}

// ServerTimestamp is a placeholder field value replaced by the store's clock
// (Unix milliseconds) when the mutation is applied.
var ServerTimestamp any = serverTimestamp{}

// OrderSpec orders a subscription by a single field.
type OrderSpec struct {
	Field string
	Desc  bool
}

// CancelFunc ends a subscription. It is idempotent.
type CancelFunc func()

// Store is the contract the board consumes.
//
// Subscribe delivers the complete ordered contents of the collection on
// establishment and after every change. onError reports channel failures
// without ending the subscription. Callbacks for one subscription never run
// concurrently with each other.
type Store interface {
	Subscribe(ctx context.Context, collection string, order OrderSpec, onNext func([]Document), onError func(error)) (CancelFunc, error)
	Insert(ctx context.Context, collection string, fields Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
}

// ChangeFeed signals that a collection changed. Signals carry no payload;
// subscribers re-read the collection.
type ChangeFeed interface {
	Publish(ctx context.Context, collection string) error
	// Watch returns a channel receiving at least one signal after every
	// Publish for collection. Signals may be coalesced. The channel is
	// closed once ctx is done.
	Watch(ctx context.Context, collection string) (<-chan struct{}, error)
}
