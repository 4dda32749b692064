// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smartkitchen/skhctl/internal/pg"
)

type insert struct {
	sql  string
	args []any
}

// fakeDB is an in-memory pg.DB. ids resolves "table=value" lookups; any insert
// whose arguments contain "BAD" fails.
type fakeDB struct {
	ids       map[string]int64
	lookups   int
	committed []insert
	rolled    int
	execs     []string
	queries   []string
}

var _ pg.DB = (*fakeDB)(nil)

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.queries = append(f.queries, sql)
	return &fakeRows{
		cols: []string{"id", "name"},
		data: [][][]byte{{[]byte("1"), []byte("amy")}, {[]byte("2"), nil}},
	}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lookups++
	table := strings.Trim(strings.Fields(strings.SplitN(sql, " FROM ", 2)[1])[0], `"`)
	id, ok := f.ids[fmt.Sprintf("%s=%v", table, args[0])]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{id: id}
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{db: f}, nil
}

type fakeRow struct {
	id  int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	return nil
}

// fakeTx embeds pgx.Tx so only the methods the seeder calls need bodies.
type fakeTx struct {
	pgx.Tx
	db      *fakeDB
	pending *insert
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	for _, a := range args {
		if s, ok := a.(string); ok && strings.Contains(s, "BAD") {
			return pgconn.CommandTag{}, errors.New("check constraint violated")
		}
	}
	t.pending = &insert{sql: sql, args: args}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.pending != nil {
		t.db.committed = append(t.db.committed, *t.pending)
	}
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.rolled++
	return nil
}

// fakeRows embeds pgx.Rows for the same reason as fakeTx.
type fakeRows struct {
	pgx.Rows
	cols []string
	data [][][]byte
	i    int
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) RawValues() [][]byte { return r.data[r.i-1] }
func (r *fakeRows) Err() error          { return nil }
func (r *fakeRows) Close()              {}
