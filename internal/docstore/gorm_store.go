package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"task-board/internal/realtime"
)

// Record is the row backing a document
type Record struct {
	Collection string    `gorm:"primaryKey;size:64"`
	ID         string    `gorm:"primaryKey;size:64"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

// TableName specifies the table name for Record Model
func (Record) TableName() string {
	return "documents"
}

// GormStore is a Store persisting documents through gorm.
type GormStore struct {
	db   *gorm.DB
	feed ChangeFeed
	// local signals subscribers in this process when feed is external, so
	// a failed external publish never hides a write from its own process.
	local *HubFeed
	log   *log.Entry
	now   func() time.Time

	mu     sync.Mutex
	closed bool
	subs   map[*subscription]struct{}
}

var _ Store = (*GormStore)(nil)

// NewGormStore migrates the documents table and returns a store on db. A nil
// feed falls back to an in-process HubFeed. Any other feed is paired with a
// private HubFeed for writes made through this store.
func NewGormStore(db *gorm.DB, feed ChangeFeed, logger *log.Entry) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	var local *HubFeed
	switch feed.(type) {
	case nil:
		feed = NewHubFeed(realtime.NewHub())
	case *HubFeed:
	default:
		local = NewHubFeed(realtime.NewHub())
	}
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &GormStore{
		db:    db,
		feed:  feed,
		local: local,
		log:   logger.WithField("component", "docstore"),
		now:   time.Now,
		subs:  make(map[*subscription]struct{}),
	}, nil
}

func (s *GormStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Insert stores a new document under a generated id.
func (s *GormStore) Insert(ctx context.Context, collection string, fields Fields) (string, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	data, err := encodeFields(resolveServerValues(fields, s.now()))
	if err != nil {
		return "", err
	}
	rec := Record{
		Collection: collection,
		ID:         uuid.NewString(),
		Data:       data,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	s.publish(ctx, collection)
	return rec.ID, nil
}

// Update merges fields into an existing document. A nil value stores null.
func (s *GormStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	if s.isClosed() {
		return ErrClosed
	}
	resolved := resolveServerValues(fields, s.now())
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec Record
		if err := tx.Where("collection = ? AND id = ?", collection, id).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
			}
			return err
		}
		current, err := decodeFields(rec.Data)
		if err != nil {
			return err
		}
		for k, v := range resolved {
			current[k] = v
		}
		data, err := encodeFields(current)
		if err != nil {
			return err
		}
		return tx.Model(&rec).Update("data", data).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	s.publish(ctx, collection)
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	if s.isClosed() {
		return ErrClosed
	}
	result := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&Record{})
	if result.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, result.Error)
	}
	if result.RowsAffected > 0 {
		s.publish(ctx, collection)
	}
	return nil
}

// List returns every document of collection ordered by order. Documents with
// equal keys keep insertion order.
func (s *GormStore) List(ctx context.Context, collection string, order OrderSpec) ([]Document, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at asc").
		Order("id asc").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(recs))
	for _, rec := range recs {
		fields, err := decodeFields(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("list %s: document %s: %w", collection, rec.ID, err)
		}
		docs = append(docs, Document{ID: rec.ID, Fields: fields})
	}
	SortDocuments(docs, order)
	return docs, nil
}

// Subscribe starts a live subscription. ctx bounds establishment only; the
// subscription lives until the returned CancelFunc is called or the store
// is closed.
func (s *GormStore) Subscribe(ctx context.Context, collection string, order OrderSpec, onNext func([]Document), onError func(error)) (CancelFunc, error) {
	if onNext == nil {
		return nil, errors.New("subscribe: onNext is required")
	}
	if s.isClosed() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(context.Background())
	changes, err := s.feed.Watch(subCtx, collection)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}
	var local <-chan struct{}
	if s.local != nil {
		if local, err = s.local.Watch(subCtx, collection); err != nil {
			cancel()
			return nil, fmt.Errorf("watch %s: %w", collection, err)
		}
	}
	sub := &subscription{
		store:      s,
		collection: collection,
		order:      order,
		onNext:     onNext,
		onError:    onError,
		ctx:        subCtx,
		cancel:     cancel,
		changes:    changes,
		local:      local,
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	s.log.WithFields(log.Fields{"collection": collection, "order": order.Field, "desc": order.Desc}).Debug("subscription started")
	go sub.run()
	return sub.stop, nil
}

func (s *GormStore) forget(sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, sub)
}

// Close ends every subscription, waits for their goroutines to finish and
// rejects further calls. It must not be called from a subscription callback.
// The underlying database is left open for its owner to close.
func (s *GormStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.halt()
	}
	for _, sub := range subs {
		<-sub.done
	}
	return nil
}

func (s *GormStore) publish(ctx context.Context, collection string) {
	if s.local != nil {
		_ = s.local.Publish(ctx, collection)
	}
	// the write is committed; a lost signal only delays other processes
	if err := s.feed.Publish(context.WithoutCancel(ctx), collection); err != nil {
		s.log.WithError(err).WithField("collection", collection).Warn("change notification failed")
	}
}

func resolveServerValues(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = now.UnixMilli()
			continue
		}
		out[k] = v
	}
	return out
}

func encodeFields(fields Fields) (string, error) {
	if fields == nil {
		fields = Fields{}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

func decodeFields(data string) (Fields, error) {
	fields := Fields{}
	if data == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fields, nil
}
