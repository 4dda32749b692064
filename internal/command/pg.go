// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/pg"
)

// pgReport is what the pg command renders.
type pgReport struct {
	Database   string `json:"database" yaml:"database"`
	Created    bool   `json:"created" yaml:"created"`
	Statements int    `json:"statements" yaml:"statements"`
}

// setupPostgres creates the application database through the admin database
// and applies the schema to it.
func setupPostgres(ctx context.Context, params pg.ConnParams, drop bool) (pgReport, error) {
	rep := pgReport{Database: params.DBName}

	err := withPostgres(ctx, params.WithDB(pg.AdminDatabase), func(admin PGConn) error {
		created, err := pg.EnsureDatabase(ctx, admin, params.DBName, drop)
		rep.Created = created
		return err
	})
	if err != nil {
		return rep, err
	}

	err = withPostgres(ctx, params, func(db PGConn) error {
		return pg.ApplySchema(ctx, db)
	})
	if err != nil {
		return rep, err
	}
	rep.Statements = len(pg.Schema)
	log.Infof("PostgreSQL database '%s' is ready", params.DBName)
	return rep, nil
}

func pgCommandAction(ctx context.Context, cmd *cli.Command) error {
	rep, err := setupPostgres(ctx, pgParams(cmd), cmd.Bool("drop-db"))
	if err != nil {
		return err
	}
	return emit(cmd, rep)
}

func pgCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "pg",
		Usage:     "create the PostgreSQL database and apply the schema",
		UsageText: "skhctl pg [options]",
		Flags: append(NewPostgresFlags(m), &cli.BoolFlag{
			Name:    "drop-db",
			Usage:   "drop and recreate the database first",
			Sources: NameSpacedValueChain(m, "postgres.drop"),
		}),
		Action: pgCommandAction,
		Meta:   m,
	}).Build()
}
