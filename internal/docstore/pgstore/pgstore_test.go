package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/moodstream/internal/common"
	"github.com/dmitrijs2005/moodstream/internal/docstore"
	"github.com/dmitrijs2005/moodstream/internal/logging"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	store := New(db, logging.NewTextLogger(io.Discard, slog.LevelError))
	return store, mock, db
}

func TestGet_Found(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT data, seq FROM documents WHERE path = \$1`).
		WithArgs("users/alice").
		WillReturnRows(sqlmock.NewRows([]string{"data", "seq"}).
			AddRow([]byte(`{"first_name":"Alice","last_name":"Anders"}`), int64(7)))

	doc, err := store.Get(context.Background(), "users/alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := doc.String("first_name"); got != "Alice" {
		t.Fatalf("first_name = %q, want Alice", got)
	}
	if doc.Seq != 7 {
		t.Fatalf("seq = %d, want 7", doc.Seq)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT data, seq FROM documents WHERE path = \$1`).
		WithArgs("users/ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "users/ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestCreate_InsertsGeneratedID(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	orig := newID
	newID = func() string { return "fixed-id" }
	defer func() { newID = orig }()

	mock.ExpectExec(`INSERT INTO documents \(path, collection, collection_group, data\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs("users/alice/moods/fixed-id", "users/alice/moods", "moods", []byte(`{"reason":"x"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.Create(context.Background(), "users/alice/moods", docstore.Fields{"reason": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "fixed-id" {
		t.Fatalf("id = %q, want fixed-id", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApply_CommitsBatch(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO documents .* ON CONFLICT \(path\) DO UPDATE SET data = EXCLUDED\.data`).
		WithArgs("users/alice", "users", "users", []byte(`{"first_name":"Alice"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM documents WHERE path = \$1`).
		WithArgs("requests/r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	batch := docstore.NewBatch().
		Set("users/alice", docstore.Fields{"first_name": "Alice"}).
		Delete("requests/r1")
	if err := store.Apply(context.Background(), batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApply_RollsBackWhenUpdateTargetMissing(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE documents SET data = \$2 WHERE path = \$1`).
		WithArgs("users/alice/moods/m1", []byte(`{"reason":"y"}`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	batch := docstore.NewBatch().Update("users/alice/moods/m1", docstore.Fields{"reason": "y"})
	err := store.Apply(context.Background(), batch)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApply_ArrayUnionMergesExistingValues(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT data FROM documents WHERE path = \$1 FOR UPDATE`).
		WithArgs("users/alice/private/follower").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"follower_list":["bob"]}`)))
	mock.ExpectExec(`UPDATE documents SET data = \$2 WHERE path = \$1`).
		WithArgs("users/alice/private/follower", []byte(`{"follower_list":["bob","carol"]}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	batch := docstore.NewBatch().ArrayUnion("users/alice/private/follower", "follower_list", "bob", "carol")
	if err := store.Apply(context.Background(), batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		q        docstore.Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "collection ordered desc",
			q: docstore.Query{
				Collection: "users/alice/moods",
				OrderBy:    []docstore.Order{{Field: "datetime", Desc: true}},
			},
			wantSQL:  `SELECT path, data, seq FROM documents WHERE collection = $1 ORDER BY data->>'datetime' DESC, seq ASC`,
			wantArgs: []any{"users/alice/moods"},
		},
		{
			name: "group with two sort keys",
			q: docstore.Query{
				Group:   "moods",
				OrderBy: []docstore.Order{{Field: "datetime", Desc: true}, {Field: "owner"}},
			},
			wantSQL:  `SELECT path, data, seq FROM documents WHERE collection_group = $1 ORDER BY data->>'datetime' DESC, data->>'owner' ASC, seq ASC`,
			wantArgs: []any{"moods"},
		},
		{
			name: "equality filter",
			q: docstore.Query{
				Collection: "requests",
				Field:      "to",
				Equals:     "bob",
			},
			wantSQL:  `SELECT path, data, seq FROM documents WHERE collection = $1 AND data->>'to' = $2 ORDER BY seq ASC`,
			wantArgs: []any{"requests", "bob"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := buildQuery(tt.q)
			if gotSQL != tt.wantSQL {
				t.Fatalf("sql = %q, want %q", gotSQL, tt.wantSQL)
			}
			if len(gotArgs) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", gotArgs, tt.wantArgs)
			}
			for i := range gotArgs {
				if gotArgs[i] != tt.wantArgs[i] {
					t.Fatalf("arg %d = %v, want %v", i, gotArgs[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestEncodeFieldsFixedWidthDatetime(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.FixedZone("CET", 3600))
	raw, err := encodeFields(docstore.Fields{"datetime": at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"datetime":"2026-03-14T08:26:53.589793238Z"}`
	if string(raw) != want {
		t.Fatalf("encoded = %s, want %s", raw, want)
	}
}

func TestSubscribeQuery_InitialAndNotifiedSnapshots(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	rows := func(reason string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"path", "data", "seq"}).
			AddRow("users/alice/moods/m1", []byte(`{"reason":"`+reason+`"}`), int64(1))
	}
	mock.ExpectQuery(`SELECT path, data, seq FROM documents WHERE collection = \$1`).
		WithArgs("users/alice/moods").WillReturnRows(rows("first"))
	mock.ExpectQuery(`SELECT path, data, seq FROM documents WHERE collection = \$1`).
		WithArgs("users/alice/moods").WillReturnRows(rows("second"))

	var mu sync.Mutex
	var snaps [][]docstore.Document
	reg, err := store.SubscribeQuery(context.Background(),
		docstore.Query{Collection: "users/alice/moods"},
		func(docs []docstore.Document, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				t.Errorf("unexpected delivery error: %v", err)
				return
			}
			snaps = append(snaps, docs)
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reg.Unsubscribe()

	// A change in another collection must not trigger a query.
	store.notifyPaths("requests/r1")
	// A change in the watched collection re-runs the snapshot query.
	store.notifyPaths("users/alice/moods/m1")

	mu.Lock()
	defer mu.Unlock()
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	if got, _ := snaps[1][0].String("reason"); got != "second" {
		t.Fatalf("reason = %q, want second", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubscribeQuery_SnapshotErrorReachesSubscriber(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT path, data, seq FROM documents WHERE collection = \$1`).
		WithArgs("users/alice/moods").
		WillReturnRows(sqlmock.NewRows([]string{"path", "data", "seq"}))
	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT path, data, seq FROM documents WHERE collection = \$1`).
		WithArgs("users/alice/moods").
		WillReturnError(boom)

	var mu sync.Mutex
	var errs []error
	reg, err := store.SubscribeQuery(context.Background(),
		docstore.Query{Collection: "users/alice/moods"},
		func(docs []docstore.Document, err error) {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reg.Unsubscribe()

	store.notifyPaths("users/alice/moods/m1")

	mu.Lock()
	defer mu.Unlock()
	if len(errs) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(errs))
	}
	if errs[0] != nil {
		t.Fatalf("initial delivery error = %v, want nil", errs[0])
	}
	if !errors.Is(errs[1], boom) {
		t.Fatalf("second delivery error = %v, want the query failure", errs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubscribeDoc_MissingThenPresent(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	path := "users/alice/private/follower"
	mock.ExpectQuery(`SELECT data, seq FROM documents WHERE path = \$1`).
		WithArgs(path).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT data, seq FROM documents WHERE path = \$1`).
		WithArgs(path).
		WillReturnRows(sqlmock.NewRows([]string{"data", "seq"}).
			AddRow([]byte(`{"follower_list":["bob"]}`), int64(3)))

	var mu sync.Mutex
	var last *docstore.Document
	var calls int
	reg, err := store.SubscribeDoc(context.Background(), path, func(doc *docstore.Document, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			t.Errorf("unexpected delivery error: %v", err)
			return
		}
		last = doc
		calls++
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reg.Unsubscribe()

	mu.Lock()
	if calls != 1 || last != nil {
		mu.Unlock()
		t.Fatalf("initial delivery: calls=%d doc=%v, want 1 and nil", calls, last)
	}
	mu.Unlock()

	store.notifyPaths(path)

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 || last == nil {
		t.Fatalf("after notify: calls=%d doc=%v", calls, last)
	}
	if list, ok := last.StringSlice("follower_list"); !ok || len(list) != 1 || list[0] != "bob" {
		t.Fatalf("follower_list = %v", list)
	}
}

func TestUnsubscribe_StopsDeliveries(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT path, data, seq FROM documents WHERE collection = \$1`).
		WithArgs("requests").
		WillReturnRows(sqlmock.NewRows([]string{"path", "data", "seq"}))

	var calls int
	reg, err := store.SubscribeQuery(context.Background(),
		docstore.Query{Collection: "requests"},
		func(docs []docstore.Document, err error) { calls++ })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reg.Unsubscribe()
	reg.Unsubscribe() // idempotent
	store.notifyPaths("requests/r1")

	if calls != 1 {
		t.Fatalf("calls = %d, want only the initial delivery", calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
