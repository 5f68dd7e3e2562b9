// Package memstore is an in-memory docstore.Client with full subscription
// support. It backs tests and the offline demo mode, and is the reference
// for the subscription semantics the SQL-backed store must match: an initial
// snapshot on subscribe, one ordered callback per change, and no callback
// after Unsubscribe returns.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/moodstream/internal/common"
	"github.com/dmitrijs2005/moodstream/internal/docstore"
)

// newID is a test seam for backend-assigned document ids.
var newID = func() string { return uuid.New().String() }

type record struct {
	fields docstore.Fields
	seq    int64
}

// Store is an in-memory document store safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]*record
	nextSeq int64
	closed  bool

	subMu   sync.Mutex
	subs    map[int64]*subscription
	nextSub int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		docs: make(map[string]*record),
		subs: make(map[int64]*subscription),
	}
}

// Get returns the document at path, or common.ErrorNotFound.
func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, common.ErrClosed
	}

	rec, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", path, common.ErrorNotFound)
	}
	return snapshotDoc(path, rec), nil
}

// Query runs a one-shot query against the current state.
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, common.ErrClosed
	}
	return s.queryLocked(q), nil
}

// Create adds a document with a generated id to the collection.
func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := newID()
	path := collection + "/" + id

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", common.ErrClosed
	}
	s.setLocked(path, fields)
	s.mu.Unlock()

	s.notify(changeSet{paths: []string{path}})
	return id, nil
}

// Apply commits a batch atomically. Every operation is validated against the
// staged state before anything is committed, so a failing batch has no
// effect at all.
func (s *Store) Apply(ctx context.Context, b *docstore.Batch) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return common.ErrClosed
	}

	staged := make(map[string]docstore.Fields, len(b.Ops))
	deleted := make(map[string]bool)

	lookup := func(path string) (docstore.Fields, bool) {
		if deleted[path] {
			return nil, false
		}
		if f, ok := staged[path]; ok {
			return f, true
		}
		if rec, ok := s.docs[path]; ok {
			return rec.fields, true
		}
		return nil, false
	}

	for _, op := range b.Ops {
		switch op.Kind {
		case docstore.OpSet:
			staged[op.Path] = cloneFields(op.Fields)
			delete(deleted, op.Path)
		case docstore.OpUpdate:
			if _, ok := lookup(op.Path); !ok {
				s.mu.Unlock()
				return fmt.Errorf("update %s: %w", op.Path, common.ErrorNotFound)
			}
			staged[op.Path] = cloneFields(op.Fields)
		case docstore.OpArrayUnion:
			cur, ok := lookup(op.Path)
			if !ok {
				s.mu.Unlock()
				return fmt.Errorf("array union %s: %w", op.Path, common.ErrorNotFound)
			}
			next := cloneFields(cur)
			next[op.Field] = unionValues(next[op.Field], op.Values)
			staged[op.Path] = next
		case docstore.OpDelete:
			delete(staged, op.Path)
			deleted[op.Path] = true
		}
	}

	changed := changeSet{}
	for path, fields := range staged {
		s.setLocked(path, fields)
		changed.paths = append(changed.paths, path)
	}
	for path := range deleted {
		if _, ok := s.docs[path]; ok {
			delete(s.docs, path)
			changed.paths = append(changed.paths, path)
		}
	}
	s.mu.Unlock()

	s.notify(changed)
	return nil
}

// Close marks the store closed and unsubscribes every open subscription.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return nil
}

func (s *Store) setLocked(path string, fields docstore.Fields) {
	seq := s.nextSeq
	if rec, ok := s.docs[path]; ok {
		seq = rec.seq // updates keep the original insertion order
	} else {
		s.nextSeq++
	}
	s.docs[path] = &record{fields: cloneFields(fields), seq: seq}
}

func (s *Store) queryLocked(q docstore.Query) []docstore.Document {
	var out []docstore.Document
	for path, rec := range s.docs {
		if !matches(path, q) {
			continue
		}
		doc := snapshotDoc(path, rec)
		if q.Field != "" {
			v, ok := doc.String(q.Field)
			if !ok || v != q.Equals {
				continue
			}
		}
		out = append(out, *doc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.OrderBy {
			c := compareValues(out[i].SortValue(o.Field), out[j].SortValue(o.Field))
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

func matches(path string, q docstore.Query) bool {
	coll := collectionOf(path)
	if q.Collection != "" {
		return coll == q.Collection
	}
	return groupOf(coll) == q.Group
}

func collectionOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

func groupOf(collection string) string {
	i := strings.LastIndexByte(collection, '/')
	return collection[i+1:]
}

func snapshotDoc(path string, rec *record) *docstore.Document {
	return &docstore.Document{Path: path, Fields: cloneFields(rec.fields), Seq: rec.seq}
}

func cloneFields(f docstore.Fields) docstore.Fields {
	out := make(docstore.Fields, len(f))
	for k, v := range f {
		if ss, ok := v.([]string); ok {
			cp := make([]string, len(ss))
			copy(cp, ss)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

func unionValues(cur any, add []string) []string {
	existing, _ := (&docstore.Document{Fields: docstore.Fields{"v": cur}}).StringSlice("v")
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	out := existing
	for _, v := range add {
		if !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int:
		if bv, ok := toInt64(b); ok {
			return compareInt64(int64(av), bv)
		}
	case int64:
		if bv, ok := toInt64(b); ok {
			return compareInt64(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return 0
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
