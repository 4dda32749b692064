// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/smartkitchen/skhctl/internal/log"
)

// EnsureDatabase makes sure database name exists. With drop it is dropped and
// recreated, otherwise it is created only when pg_database has no row for it.
// admin must be connected to a different database (usually "postgres").
// Reports whether the database was created.
func EnsureDatabase(ctx context.Context, admin Querier, name string, drop bool) (bool, error) {
	if name == "" {
		return false, errors.New("database name is empty")
	}

	if drop {
		if _, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+Ident(name)); err != nil {
			return false, fmt.Errorf("failed to drop database %s: %w", name, err)
		}
		log.Infof("Database '%s' dropped", name)
	} else {
		var one int
		err := admin.QueryRow(ctx, "SELECT 1 FROM pg_catalog.pg_database WHERE datname = $1", name).Scan(&one)
		switch {
		case err == nil:
			log.Infof("Database '%s' already exists", name)
			return false, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return false, fmt.Errorf("failed to look up database %s: %w", name, err)
		}
	}

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+Ident(name)); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", name, err)
	}
	log.Infof("Created database '%s'", name)
	return true, nil
}

// ApplySchema executes Schema in order. The first failing statement aborts.
func ApplySchema(ctx context.Context, db Execer) error {
	for _, st := range Schema {
		if _, err := db.Exec(ctx, st.SQL); err != nil {
			return fmt.Errorf("failed to apply %s: %w", st.Name, err)
		}
		log.Infof("Applied %s", st.Name)
		log.Tracef("%s", st.SQL)
	}
	log.Infof("All %d schema statements applied", len(Schema))
	return nil
}
