// Package pgstore implements the docstore client over PostgreSQL. Documents
// live in a single table keyed by path, with the payload as jsonb and an
// insertion sequence for stable ordering. Live subscriptions combine local
// wake-ups after each committed write with LISTEN/NOTIFY wake-ups for writes
// committed by other processes.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/moodstream/internal/common"
	"github.com/dmitrijs2005/moodstream/internal/dbx"
	"github.com/dmitrijs2005/moodstream/internal/docstore"
	"github.com/dmitrijs2005/moodstream/internal/docstore/pgstore/migrations"
	"github.com/dmitrijs2005/moodstream/internal/logging"
)

// notifyChannel is the pg_notify channel raised by the documents trigger.
const notifyChannel = "moodstream_documents"

// datetimeLayout is a fixed-width UTC encoding for timestamps stored in
// jsonb. Fixed width keeps lexicographic text ordering equal to
// chronological ordering, so ORDER BY data->>'datetime' is correct.
const datetimeLayout = "2006-01-02T15:04:05.000000000Z"

var newID = func() string { return uuid.New().String() }

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Store is a PostgreSQL-backed docstore.Client. Construct with New, then
// optionally Start the notification listener for cross-process updates.
type Store struct {
	db     *sql.DB
	logger logging.Logger

	subMu   chan struct{} // capacity-1 semaphore guarding subs
	subs    map[int64]*subscription
	nextSub int64

	cancelListen context.CancelFunc
	listenDone   chan struct{}
}

// New returns a Store over db. The database schema must be current; run
// RunMigrations first.
func New(db *sql.DB, logger logging.Logger) *Store {
	s := &Store{
		db:     db,
		logger: logger.With("component", "pgstore"),
		subMu:  make(chan struct{}, 1),
		subs:   make(map[int64]*subscription),
	}
	return s
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Get returns the document at path.
func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data, seq FROM documents WHERE path = $1`, path)
	var raw []byte
	var seq int64
	if err := row.Scan(&raw, &seq); err != nil {
		if err == sql.ErrNoRows {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return decodeDocument(path, raw, seq)
}

// Query runs a one-shot query.
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	query, args := buildQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []docstore.Document
	for rows.Next() {
		var path string
		var raw []byte
		var seq int64
		if err := rows.Scan(&path, &raw, &seq); err != nil {
			return nil, err
		}
		doc, err := decodeDocument(path, raw, seq)
		if err != nil {
			return nil, err
		}
		result = append(result, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a document with a generated id into collection and returns
// the id.
func (s *Store) Create(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := newID()
	path := collection + "/" + id
	raw, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, collection, collection_group, data) VALUES ($1, $2, $3, $4)`,
		path, collection, groupOf(collection), raw)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	s.notifyPaths(path)
	return id, nil
}

// Apply commits the batch in a single transaction.
func (s *Store) Apply(ctx context.Context, b *docstore.Batch) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, op := range b.Ops {
			if err := applyOp(ctx, tx, op); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	paths := make([]string, len(b.Ops))
	for i, op := range b.Ops {
		paths[i] = op.Path
	}
	s.notifyPaths(paths...)
	return nil
}

func applyOp(ctx context.Context, tx dbx.DBTX, op docstore.Op) error {
	switch op.Kind {
	case docstore.OpSet:
		raw, err := encodeFields(op.Fields)
		if err != nil {
			return err
		}
		collection := collectionOf(op.Path)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (path, collection, collection_group, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data`,
			op.Path, collection, groupOf(collection), raw)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil

	case docstore.OpUpdate:
		raw, err := encodeFields(op.Fields)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE documents SET data = $2 WHERE path = $1`, op.Path, raw)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return requireOneRow(res, op.Path)

	case docstore.OpArrayUnion:
		row := tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = $1 FOR UPDATE`, op.Path)
		var raw []byte
		if err := row.Scan(&raw); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: %s", common.ErrorNotFound, op.Path)
			}
			return fmt.Errorf("db error: %w", err)
		}
		doc, err := decodeDocument(op.Path, raw, 0)
		if err != nil {
			return err
		}
		current, _ := doc.StringSlice(op.Field)
		doc.Fields[op.Field] = unionValues(current, op.Values)
		merged, err := encodeFields(doc.Fields)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE documents SET data = $2 WHERE path = $1`, op.Path, merged)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return requireOneRow(res, op.Path)

	case docstore.OpDelete:
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE path = $1`, op.Path); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown batch op kind %d", op.Kind)
	}
}

func requireOneRow(res sql.Result, path string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, path)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Close stops the listener and closes every open subscription. The *sql.DB
// is owned by the caller and stays open.
func (s *Store) Close(ctx context.Context) error {
	if s.cancelListen != nil {
		s.cancelListen()
		<-s.listenDone
		s.cancelListen = nil
	}

	s.subMu <- struct{}{}
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	<-s.subMu

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return nil
}

// buildQuery renders q as SQL. Sort fields are trusted package-internal
// constants, never caller input.
func buildQuery(q docstore.Query) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT path, data, seq FROM documents WHERE `)
	if q.Collection != "" {
		sb.WriteString(`collection = $1`)
		args = append(args, q.Collection)
	} else {
		sb.WriteString(`collection_group = $1`)
		args = append(args, q.Group)
	}

	if q.Field != "" {
		args = append(args, q.Equals)
		fmt.Fprintf(&sb, ` AND data->>'%s' = $%d`, q.Field, len(args))
	}

	sb.WriteString(` ORDER BY `)
	for _, o := range q.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, `data->>'%s' %s, `, o.Field, dir)
	}
	sb.WriteString(`seq ASC`)

	return sb.String(), args
}

// encodeFields serializes fields to jsonb, normalizing timestamps to the
// fixed-width UTC layout.
func encodeFields(fields docstore.Fields) ([]byte, error) {
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		if t, ok := v.(time.Time); ok {
			normalized[k] = t.UTC().Format(datetimeLayout)
			continue
		}
		normalized[k] = v
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}

func decodeDocument(path string, raw []byte, seq int64) (*docstore.Document, error) {
	var fields docstore.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", path, err)
	}
	return &docstore.Document{Path: path, Fields: fields, Seq: seq}, nil
}

func unionValues(current []string, add []string) []string {
	out := append([]string(nil), current...)
	for _, v := range add {
		seen := false
		for _, cur := range out {
			if cur == v {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}

func collectionOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func groupOf(collection string) string {
	i := strings.LastIndex(collection, "/")
	return collection[i+1:]
}
