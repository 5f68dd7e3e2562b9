// Package docstore defines the backend document-database boundary: a
// hierarchical collection/document model with one-shot reads, atomic write
// batches, and live snapshot subscriptions.
//
// A path names a document as slash-separated collection/id pairs, e.g.
// "users/alice" or "users/alice/moods/h7x2". A collection path is a document
// path minus its final id segment. The last collection segment is the
// document's collection group, so "moods" queries span every user's moods
// subcollection at once.
package docstore

import "context"

// Fields is the generic string-keyed payload of a document. A key mapped to
// nil is a stored null, which is distinct from the key being absent.
type Fields map[string]any

// Order is a single sort key of a query.
type Order struct {
	Field string
	Desc  bool
}

// Query selects documents from one collection or from a whole collection
// group, optionally filtered by a single field equality, ordered by the given
// sort keys. Documents comparing equal on every sort key are returned in
// backend insertion order.
type Query struct {
	// Collection is an exact collection path. Mutually exclusive with Group.
	Collection string

	// Group is a collection group name spanning all collections with that
	// final segment.
	Group string

	// Field/Equals form an optional equality filter.
	Field  string
	Equals string

	OrderBy []Order
}

// QueryCallback receives the full, consistent result set of a subscribed
// query. Every invocation replaces the previous one; no diffs are delivered.
// A non-nil err means the snapshot could not be loaded; docs is nil and the
// subscriber keeps its previous state.
type QueryCallback func(docs []Document, err error)

// DocCallback receives the current state of a subscribed document, or nil if
// the document does not exist. A non-nil err means the snapshot could not be
// loaded.
type DocCallback func(doc *Document, err error)

// Registration is an open subscription handle. Unsubscribe is idempotent and
// guarantees that no callback runs after it returns.
type Registration interface {
	Unsubscribe()
}

// Client is the document-database client surface the repository binds to.
// Implementations must deliver an initial snapshot to every subscription
// immediately, then one callback per change, strictly ordered per
// subscription.
//
// Deliveries are serialized per subscription, so a callback must not write
// through the client in a way that matches its own subscription, and must
// not call Unsubscribe on its own registration; either deadlocks the
// delivery.
type Client interface {
	// Get returns the document at path, or common.ErrorNotFound if absent.
	Get(ctx context.Context, path string) (*Document, error)

	// Query runs a one-shot query.
	Query(ctx context.Context, q Query) ([]Document, error)

	// Create adds a document with a backend-assigned id to the collection
	// and returns the new id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)

	// Apply commits a write batch atomically: either every operation takes
	// effect or none does.
	Apply(ctx context.Context, b *Batch) error

	// SubscribeQuery opens a live subscription over a query.
	SubscribeQuery(ctx context.Context, q Query, cb QueryCallback) (Registration, error)

	// SubscribeDoc opens a live subscription over a single document.
	SubscribeDoc(ctx context.Context, path string, cb DocCallback) (Registration, error)

	// Close releases the client. Open subscriptions are unsubscribed.
	Close(ctx context.Context) error
}
