package memstore

import (
	"context"

	"github.com/dmitrijs2005/moodstream/internal/common"
	"github.com/dmitrijs2005/moodstream/internal/docstore"
)

type changeSet struct {
	paths []string
}

// subscription serializes snapshot deliveries for one subscriber. The
// snapshot is computed while mu is held, so deliveries are consistent and
// strictly ordered, and no callback can run once Unsubscribe has returned.
type subscription struct {
	store *Store
	id    int64

	// exactly one of these is set
	query   *docstore.Query
	queryCb docstore.QueryCallback
	docPath string
	docCb   docstore.DocCallback

	mu     chan struct{} // capacity-1 semaphore, held across callback runs
	closed bool
}

func (s *Store) register(sub *subscription) {
	s.subMu.Lock()
	s.nextSub++
	sub.id = s.nextSub
	s.subs[sub.id] = sub
	s.subMu.Unlock()
}

// SubscribeQuery opens a live subscription over q. The callback runs once
// with the current result set before SubscribeQuery returns, then once per
// subsequent change.
func (s *Store) SubscribeQuery(ctx context.Context, q docstore.Query, cb docstore.QueryCallback) (docstore.Registration, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, common.ErrClosed
	}

	sub := &subscription{store: s, query: &q, queryCb: cb, mu: make(chan struct{}, 1)}
	s.register(sub)
	sub.deliver()
	return sub, nil
}

// SubscribeDoc opens a live subscription over the document at path. The
// callback receives nil when the document does not exist.
func (s *Store) SubscribeDoc(ctx context.Context, path string, cb docstore.DocCallback) (docstore.Registration, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, common.ErrClosed
	}

	sub := &subscription{store: s, docPath: path, docCb: cb, mu: make(chan struct{}, 1)}
	s.register(sub)
	sub.deliver()
	return sub, nil
}

// notify wakes every subscription affected by the change set. It must be
// called without the store mutex held.
func (s *Store) notify(changed changeSet) {
	if len(changed.paths) == 0 {
		return
	}

	s.subMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.affected(changed) {
			subs = append(subs, sub)
		}
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.deliver()
	}
}

func (sub *subscription) affected(changed changeSet) bool {
	for _, path := range changed.paths {
		if sub.query != nil && matches(path, *sub.query) {
			return true
		}
		if sub.docPath != "" && sub.docPath == path {
			return true
		}
	}
	return false
}

// deliver computes a fresh snapshot and invokes the callback, serialized by
// the subscription semaphore.
func (sub *subscription) deliver() {
	sub.mu <- struct{}{}
	defer func() { <-sub.mu }()

	if sub.closed {
		return
	}

	sub.store.mu.RLock()
	var docs []docstore.Document
	var doc *docstore.Document
	if sub.query != nil {
		docs = sub.store.queryLocked(*sub.query)
	} else if rec, ok := sub.store.docs[sub.docPath]; ok {
		doc = snapshotDoc(sub.docPath, rec)
	}
	sub.store.mu.RUnlock()

	// in-memory snapshots cannot fail to load
	if sub.query != nil {
		sub.queryCb(docs, nil)
	} else {
		sub.docCb(doc, nil)
	}
}

// Unsubscribe closes the subscription. It is idempotent, and once it has
// returned no further callback will be invoked.
func (sub *subscription) Unsubscribe() {
	sub.mu <- struct{}{}
	sub.closed = true
	<-sub.mu

	sub.store.subMu.Lock()
	delete(sub.store.subs, sub.id)
	sub.store.subMu.Unlock()
}
