// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"

	awsx "github.com/smartkitchen/skhctl/internal/aws"
	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/mongo"
	"github.com/smartkitchen/skhctl/internal/output"
	"github.com/smartkitchen/skhctl/internal/pg"
)

// PGConn is an open Postgres connection.
type PGConn interface {
	pg.DB
	Close(ctx context.Context) error
}

// MongoConn is an open Mongo client.
type MongoConn interface {
	mongo.Server
	Disconnect(ctx context.Context) error
}

// Connection factories. Tests swap them for fakes.
var (
	dialPostgres = func(ctx context.Context, p pg.ConnParams) (PGConn, error) {
		return pg.Connect(ctx, p)
	}
	dialMongo = func(ctx context.Context, p mongo.ConnParams) (MongoConn, error) {
		return mongo.Connect(ctx, p)
	}
	loadAWSConfig = awsx.LoadAWSConfig
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// pgParams reads the --pg-* flags.
func pgParams(cmd *cli.Command) pg.ConnParams {
	return pg.ConnParams{
		Username:    cmd.String("pg-username"),
		Password:    cmd.String("pg-password"),
		Host:        cmd.String("pg-host"),
		Port:        cmd.String("pg-port"),
		DBName:      cmd.String("pg-db"),
		URITemplate: cmd.String("pg-uri-template"),
	}
}

// mongoParams reads the --mongo-* flags.
func mongoParams(cmd *cli.Command) mongo.ConnParams {
	return mongo.ConnParams{
		Username:    cmd.String("mongo-username"),
		Password:    cmd.String("mongo-password"),
		Host:        cmd.String("mongo-host"),
		DBName:      cmd.String("mongo-db"),
		URITemplate: cmd.String("mongo-uri-template"),
	}
}

// awsConfig resolves credentials from the flags. Explicit keys win over the
// profile; with neither the SDK default chain applies.
func awsConfig(ctx context.Context, cmd *cli.Command) (awsv2.Config, error) {
	var opts []awsx.Option
	if r := cmd.String("region"); r != "" {
		opts = append(opts, awsx.WithRegion(r))
	}
	switch {
	case cmd.String("access-key") != "":
		opts = append(opts, awsx.WithStaticCredentials(cmd.String("access-key"), cmd.String("secret-key")))
	case cmd.String("profile") != "":
		opts = append(opts, awsx.WithProfile(cmd.String("profile")))
	}
	return loadAWSConfig(ctx, opts...)
}

// withPostgres connects, runs fn and closes the connection.
func withPostgres(ctx context.Context, p pg.ConnParams, fn func(PGConn) error) error {
	conn, err := dialPostgres(ctx, p)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			log.Debugf("postgres close: %v", err)
		}
	}()
	return fn(conn)
}

// withMongo connects, runs fn and disconnects.
func withMongo(ctx context.Context, p mongo.ConnParams, fn func(MongoConn) error) error {
	conn, err := dialMongo(ctx, p)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Disconnect(ctx); err != nil {
			log.Debugf("mongo disconnect: %v", err)
		}
	}()
	return fn(conn)
}

// emit renders a command report per --output and --color.
func emit(cmd *cli.Command, v any) error {
	return output.RenderReport(cmd.Root().Writer, cmd.String("output"), v, cmd.Bool("color"))
}
