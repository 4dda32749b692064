// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/enrich"
	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/provision"
	"github.com/smartkitchen/skhctl/internal/seed"
)

// Stage names accepted by all --skip, in execution order.
const (
	StageAWS       = "aws"
	StagePostgres  = "pg"
	StageMongo     = "mongo"
	StageSeedSQL   = "seed-sql"
	StageSeedMongo = "seed-mongo"
	StageVideos    = "videos"
	StageImages    = "images"
)

// StageNames lists every stage in execution order.
var StageNames = []string{
	StageAWS, StagePostgres, StageMongo, StageSeedSQL, StageSeedMongo, StageVideos, StageImages,
}

// allReport collects the reports of the stages that ran.
type allReport struct {
	Completed []string                `json:"completed" yaml:"completed"`
	AWS       *provision.Report       `json:"aws,omitempty" yaml:"aws,omitempty"`
	Postgres  *pgReport               `json:"pg,omitempty" yaml:"pg,omitempty"`
	Mongo     *mongoReport            `json:"mongo,omitempty" yaml:"mongo,omitempty"`
	Tables    []seed.TableResult      `json:"tables,omitempty" yaml:"tables,omitempty"`
	Documents []seed.CollectionResult `json:"documents,omitempty" yaml:"documents,omitempty"`
	Videos    *enrich.Result          `json:"videos,omitempty" yaml:"videos,omitempty"`
	Images    *enrich.Result          `json:"images,omitempty" yaml:"images,omitempty"`
}

type stage struct {
	name string
	run  func(context.Context, *cli.Command, *allReport) error
}

func allStages() []stage {
	return []stage{
		{StageAWS, func(ctx context.Context, cmd *cli.Command, rep *allReport) error {
			r, err := provisionUp(ctx, cmd, "skip-steps")
			rep.AWS = r
			if err != nil {
				return err
			}
			// Later stages connect to the database that was just created.
			if r.DBEndpoint != "" {
				if err := cmd.Set("pg-host", r.DBEndpoint); err != nil {
					return err
				}
				if err := cmd.Set("pg-port", strconv.Itoa(int(r.DBPort))); err != nil {
					return err
				}
			}
			return nil
		}},
		{StagePostgres, func(ctx context.Context, cmd *cli.Command, rep *allReport) error {
			r, err := setupPostgres(ctx, pgParams(cmd), cmd.Bool("drop-db"))
			rep.Postgres = &r
			return err
		}},
		{StageMongo, func(ctx context.Context, cmd *cli.Command, rep *allReport) error {
			r, err := setupMongo(ctx, mongoParams(cmd))
			rep.Mongo = &r
			return err
		}},
		{StageSeedSQL, func(ctx context.Context, cmd *cli.Command, rep *allReport) error {
			var err error
			rep.Tables, err = seedSQL(ctx, pgParams(cmd), cmd.String("csv-dir"), previewWriter(cmd), cmd.Bool("color"))
			return err
		}},
		{StageSeedMongo, func(ctx context.Context, cmd *cli.Command, rep *allReport) error {
			var err error
			rep.Documents, err = seedMongo(ctx, mongoParams(cmd), cmd.String("json-dir"), cmd.Bool("drop"))
			return err
		}},
		{StageVideos, func(ctx context.Context, cmd *cli.Command, rep *allReport) error {
			r, err := runEnrich(ctx, cmd, enrich.Videos, mongoParams(cmd))
			rep.Videos = &r
			return err
		}},
		{StageImages, func(ctx context.Context, cmd *cli.Command, rep *allReport) error {
			r, err := runEnrich(ctx, cmd, enrich.Images, mongoParams(cmd))
			rep.Images = &r
			return err
		}},
	}
}

// runStages runs stages in order, aborting on the first failure.
func runStages(ctx context.Context, cmd *cli.Command, stages []stage, skip []string, rep *allReport) error {
	for _, s := range stages {
		if slices.Contains(skip, s.name) {
			log.Infof("Skipping stage %s", s.name)
			continue
		}
		log.Infof("Running stage %s", s.name)
		if err := s.run(ctx, cmd, rep); err != nil {
			return fmt.Errorf("stage %s failed: %w", s.name, err)
		}
		rep.Completed = append(rep.Completed, s.name)
	}
	return nil
}

func allCommandAction(ctx context.Context, cmd *cli.Command) error {
	var rep allReport
	err := runStages(ctx, cmd, allStages(), splitList(cmd.String("skip")), &rep)
	if emitErr := emit(cmd, rep); emitErr != nil {
		log.WithError(emitErr).Error("failed to render report")
	}
	return err
}

func allCommandBuilder(m meta.Meta) *cli.Command {
	var flags []cli.Flag
	flags = append(flags, NewAWSFlags(m)...)
	flags = append(flags, NewProvisionFlags(m, "skip-steps")...)
	flags = append(flags, NewPostgresFlags(m)...)
	flags = append(flags, NewMongoFlags(m)...)
	flags = append(flags, NewEnrichFlags(m)...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:    "drop-db",
			Usage:   "drop and recreate the PostgreSQL database first",
			Sources: NameSpacedValueChain(m, "postgres.drop"),
		},
		NewSeedDirFlag(m, "csv-dir", DefaultCSVDir, "directory of <table>.csv files"),
		NewSeedDirFlag(m, "json-dir", DefaultJSONDir, "directory of <collection>.json files"),
		newPreviewFlag(m),
		newDropFlag(m),
		&cli.StringFlag{
			Name:    "skip",
			Usage:   "comma-separated stages to skip (" + strings.Join(StageNames, ",") + ")",
			Sources: NameSpacedValueChain(m, "skip"),
			Validator: func(value string) error {
				return FlagValidators(value, StagesValidator)
			},
		},
	)

	return (&CommandBuilder{
		Name:      "all",
		Usage:     "provision, set up, seed and enrich everything in one run",
		UsageText: "skhctl all [options]",
		Flags:     flags,
		Action:    allCommandAction,
		Meta:      m,
	}).Build()
}
