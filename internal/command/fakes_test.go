// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/smartkitchen/skhctl/internal/mongo"
	"github.com/smartkitchen/skhctl/internal/mongo/mongotest"
	"github.com/smartkitchen/skhctl/internal/pg"
)

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

// fakePG records statements. Every database lookup misses.
type fakePG struct {
	params pg.ConnParams
	execs  []string
	closed bool
}

func (f *fakePG) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("OK"), nil
}

func (f *fakePG) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (f *fakePG) QueryRow(context.Context, string, ...any) pgx.Row {
	return fakeRow{err: pgx.ErrNoRows}
}

func (f *fakePG) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("not supported")
}

func (f *fakePG) Close(context.Context) error {
	f.closed = true
	return nil
}

// stubPostgres replaces dialPostgres and returns the connections it hands out.
func stubPostgres(t *testing.T) *[]*fakePG {
	t.Helper()
	var conns []*fakePG
	orig := dialPostgres
	dialPostgres = func(_ context.Context, p pg.ConnParams) (PGConn, error) {
		c := &fakePG{params: p}
		conns = append(conns, c)
		return c, nil
	}
	t.Cleanup(func() { dialPostgres = orig })
	return &conns
}

type fakeMongo struct {
	*mongotest.Server
	params       mongo.ConnParams
	disconnected bool
}

func (f *fakeMongo) Disconnect(context.Context) error {
	f.disconnected = true
	return nil
}

// stubMongo replaces dialMongo with one in-memory server.
func stubMongo(t *testing.T) *fakeMongo {
	t.Helper()
	fm := &fakeMongo{Server: mongotest.NewServer()}
	orig := dialMongo
	dialMongo = func(_ context.Context, p mongo.ConnParams) (MongoConn, error) {
		fm.params = p
		return fm, nil
	}
	t.Cleanup(func() { dialMongo = orig })
	return fm
}

// isolate points config, cache and dotenv lookups at a temp dir and writes
// cfg as the config file when it is not empty.
func isolate(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "skhctl.yaml")
	if cfg != "" {
		require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	}
	t.Setenv("SKH_CFG_FILE", path)
	t.Setenv("SKH_CACHE", "0")
	t.Setenv("SKH_CACHE_DIR", filepath.Join(dir, "cache"))
	return dir
}

// runApp builds and runs the app, returning stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	argv := append([]string{"skhctl"}, args...)
	app, err := InitApp(context.Background(), argv)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(context.Background(), argv)
	return out.String(), err
}
