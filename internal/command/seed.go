// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/mongo"
	"github.com/smartkitchen/skhctl/internal/pg"
	"github.com/smartkitchen/skhctl/internal/seed"
)

// Default seed directories, relative to the working directory.
const (
	DefaultCSVDir  = "csv"
	DefaultJSONDir = "json"
)

// previewWriter is where row previews go. Structured output keeps stdout
// clean so it stays parseable.
func previewWriter(cmd *cli.Command) io.Writer {
	if !cmd.Bool("preview") {
		return nil
	}
	if cmd.String("output") == "text" {
		return cmd.Root().Writer
	}
	return cmd.Root().ErrWriter
}

// seedSQL loads every CSV file of dir into the application database.
func seedSQL(ctx context.Context, params pg.ConnParams, dir string, preview io.Writer, color bool) ([]seed.TableResult, error) {
	var results []seed.TableResult
	err := withPostgres(ctx, params, func(db PGConn) error {
		var err error
		results, err = seed.NewSQLSeeder(db, preview, color).LoadDir(ctx, dir)
		return err
	})
	return results, err
}

// seedMongo loads every JSON file of dir into the document database.
func seedMongo(ctx context.Context, params mongo.ConnParams, dir string, drop bool) ([]seed.CollectionResult, error) {
	var results []seed.CollectionResult
	err := withMongo(ctx, params, func(srv MongoConn) error {
		var err error
		s := &seed.MongoSeeder{Server: srv, DB: params.DBName, Drop: drop}
		results, err = s.LoadDir(ctx, dir)
		return err
	})
	return results, err
}

func seedSQLCommandAction(ctx context.Context, cmd *cli.Command) error {
	results, err := seedSQL(ctx, pgParams(cmd), cmd.String("csv-dir"), previewWriter(cmd), cmd.Bool("color"))
	if err != nil {
		return err
	}
	return emit(cmd, results)
}

func seedMongoCommandAction(ctx context.Context, cmd *cli.Command) error {
	results, err := seedMongo(ctx, mongoParams(cmd), cmd.String("json-dir"), cmd.Bool("drop"))
	if err != nil {
		return err
	}
	return emit(cmd, results)
}

// newPreviewFlag returns the flag toggling row previews after each table.
func newPreviewFlag(m meta.Meta) *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "preview",
		Usage:   "show the first rows of each seeded table",
		Sources: NameSpacedValueChain(m, "seed.preview"),
		Value:   true,
	}
}

// newDropFlag returns the flag emptying collections before they are loaded.
func newDropFlag(m meta.Meta) *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "drop",
		Usage:   "delete existing documents before loading each collection",
		Sources: NameSpacedValueChain(m, "seed.drop"),
	}
}

// withAlias adds aliases to a flag. Under all the seed directories need
// distinct names, so the short --dir exists only on the seed commands.
func withAlias(f *cli.StringFlag, aliases ...string) *cli.StringFlag {
	f.Aliases = append(f.Aliases, aliases...)
	return f
}

func seedCommandBuilder(m meta.Meta) *cli.Command {
	sql := (&CommandBuilder{
		Name:      "sql",
		Usage:     "load csv files into PostgreSQL",
		UsageText: "skhctl seed sql [options]",
		Flags: append(NewPostgresFlags(m),
			withAlias(NewSeedDirFlag(m, "csv-dir", DefaultCSVDir, "directory of <table>.csv files"), "dir"),
			newPreviewFlag(m),
		),
		Action: seedSQLCommandAction,
		Meta:   m,
	}).Build()

	docs := (&CommandBuilder{
		Name:      "mongo",
		Usage:     "load json files into MongoDB",
		UsageText: "skhctl seed mongo [options]",
		Flags: append(NewMongoFlags(m),
			withAlias(NewSeedDirFlag(m, "json-dir", DefaultJSONDir, "directory of <collection>.json files"), "dir"),
			newDropFlag(m),
		),
		Action: seedMongoCommandAction,
		Meta:   m,
	}).Build()

	return group("seed", "load sample data", m, sql, docs)
}
