package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/moodstream/internal/common"
	"github.com/dmitrijs2005/moodstream/internal/docstore"
)

// listenerConn is the subset of *pgx.Conn the notification loop needs.
type listenerConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// connectListener is a seam for testing Start.
var connectListener = func(ctx context.Context, dsn string) (listenerConn, error) {
	return pgx.Connect(ctx, dsn)
}

// Start opens a dedicated connection, LISTENs on the documents channel, and
// wakes affected subscriptions for every notification until ctx is canceled
// or the store is closed. Without Start, subscriptions still see writes made
// through this Store, just not writes committed by other processes.
func (s *Store) Start(ctx context.Context, dsn string) error {
	conn, err := connectListener(ctx, dsn)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(ctx)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelListen = cancel
	s.listenDone = make(chan struct{})

	go func() {
		defer close(s.listenDone)
		defer conn.Close(context.Background())
		for {
			notification, err := conn.WaitForNotification(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Error(ctx, "notification listener stopped", "error", err)
				}
				return
			}
			s.notifyPaths(notification.Payload)
		}
	}()
	return nil
}

// subscription serializes snapshot deliveries for one subscriber. Snapshots
// are recomputed from the database per delivery, so each callback sees a
// consistent committed state, and no callback can run once Unsubscribe has
// returned.
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
	s.subMu <- struct{}{}
	s.nextSub++
	sub.id = s.nextSub
	s.subs[sub.id] = sub
	<-s.subMu
}

// SubscribeQuery opens a live subscription over q. The callback runs once
// with the current result set before SubscribeQuery returns, then once per
// observed change.
func (s *Store) SubscribeQuery(ctx context.Context, q docstore.Query, cb docstore.QueryCallback) (docstore.Registration, error) {
	sub := &subscription{store: s, query: &q, queryCb: cb, mu: make(chan struct{}, 1)}
	s.register(sub)
	sub.deliver(ctx)
	return sub, nil
}

// SubscribeDoc opens a live subscription over the document at path. The
// callback receives nil when the document does not exist.
func (s *Store) SubscribeDoc(ctx context.Context, path string, cb docstore.DocCallback) (docstore.Registration, error) {
	sub := &subscription{store: s, docPath: path, docCb: cb, mu: make(chan struct{}, 1)}
	s.register(sub)
	sub.deliver(ctx)
	return sub, nil
}

// notifyPaths wakes every subscription affected by the changed paths.
func (s *Store) notifyPaths(paths ...string) {
	s.subMu <- struct{}{}
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.affected(paths) {
			subs = append(subs, sub)
		}
	}
	<-s.subMu

	for _, sub := range subs {
		sub.deliver(context.Background())
	}
}

func (sub *subscription) affected(paths []string) bool {
	for _, path := range paths {
		if sub.docPath != "" && sub.docPath == path {
			return true
		}
		if sub.query != nil && queryMatches(path, *sub.query) {
			return true
		}
	}
	return false
}

func queryMatches(path string, q docstore.Query) bool {
	collection := collectionOf(path)
	if q.Collection != "" {
		return collection == q.Collection
	}
	return groupOf(collection) == q.Group
}

// deliver recomputes the snapshot and invokes the callback, serialized by the
// subscription semaphore. A snapshot that fails to load is delivered as an
// error; the subscriber keeps its previous state.
func (sub *subscription) deliver(ctx context.Context) {
	sub.mu <- struct{}{}
	defer func() { <-sub.mu }()

	if sub.closed {
		return
	}

	if sub.query != nil {
		docs, err := sub.store.Query(ctx, *sub.query)
		if err != nil {
			sub.queryCb(nil, err)
			return
		}
		sub.queryCb(docs, nil)
		return
	}

	doc, err := sub.store.Get(ctx, sub.docPath)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			sub.docCb(nil, err)
			return
		}
		doc = nil
	}
	sub.docCb(doc, nil)
}

// Unsubscribe closes the subscription. It is idempotent, and once it has
// returned no further callback will be invoked.
func (sub *subscription) Unsubscribe() {
	sub.mu <- struct{}{}
	sub.closed = true
	<-sub.mu

	sub.store.subMu <- struct{}{}
	delete(sub.store.subs, sub.id)
	<-sub.store.subMu
}
