// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smartkitchen/skhctl/internal/config"
	"github.com/smartkitchen/skhctl/internal/log"
)

// AdminDatabase is the maintenance database used to create or drop others.
const AdminDatabase = "postgres"

// Execer runs a statement without returning rows.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Querier is an Execer that can also read rows.
type Querier interface {
	Execer
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a Querier that can start transactions. *pgx.Conn satisfies it.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgx.Conn)(nil)

// ConnParams are the parts of a connection URI.
type ConnParams struct {
	Username    string
	Password    string
	Host        string
	Port        string
	DBName      string
	URITemplate string
}

// URI expands the template (or the default one) with the params.
func (c ConnParams) URI() (string, error) {
	tmpl := c.URITemplate
	if tmpl == "" {
		tmpl = config.DefaultPostgresURITemplate
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	return config.ExpandURITemplate(tmpl, map[string]string{
		"username": c.Username,
		"password": c.Password,
		"host":     c.Host,
		"port":     port,
		"dbname":   c.DBName,
	})
}

// WithDB returns a copy pointed at another database.
func (c ConnParams) WithDB(name string) ConnParams {
	c.DBName = name
	return c
}

// Connect opens and pings a connection.
func Connect(ctx context.Context, params ConnParams) (*pgx.Conn, error) {
	if params.Host == "" {
		return nil, fmt.Errorf("postgres host is not set (POSTGRES_HOST)")
	}
	uri, err := params.URI()
	if err != nil {
		return nil, err
	}

	conn, err := pgx.Connect(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres at %s/%s: %w", params.Host, params.DBName, err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping postgres at %s/%s: %w", params.Host, params.DBName, err)
	}

	log.Infof("Connected to PostgreSQL %s/%s", params.Host, params.DBName)
	return conn, nil
}

// Ident quotes a single identifier.
func Ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
