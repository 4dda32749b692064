// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/mongo"
)

// mongoReport is what the mongo command renders.
type mongoReport struct {
	Database    string   `json:"database" yaml:"database"`
	Collections []string `json:"collections" yaml:"collections"`
}

// setupMongo recreates the document database with its validated collections.
func setupMongo(ctx context.Context, params mongo.ConnParams) (mongoReport, error) {
	rep := mongoReport{Database: params.DBName}
	err := withMongo(ctx, params, func(srv MongoConn) error {
		return mongo.Setup(ctx, srv, params.DBName)
	})
	if err != nil {
		return rep, err
	}
	for _, c := range mongo.Collections {
		rep.Collections = append(rep.Collections, c.Name)
	}
	return rep, nil
}

func mongoCommandAction(ctx context.Context, cmd *cli.Command) error {
	rep, err := setupMongo(ctx, mongoParams(cmd))
	if err != nil {
		return err
	}
	return emit(cmd, rep)
}

func mongoCommandBuilder(m meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "mongo",
		Usage:     "recreate the MongoDB database and its validated collections",
		UsageText: "skhctl mongo [options]",
		Flags:     NewMongoFlags(m),
		Action:    mongoCommandAction,
		Meta:      m,
	}).Build()
}
