// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/enrich"
	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/mongo"
)

// Search endpoints. Tests point them at local servers.
var (
	unsplashURL = enrich.UnsplashURL
	googleURL   = enrich.GoogleURL
	youtubeURL  = enrich.YouTubeURL
)

// searcherFor builds the cached searcher for kind from the enrich flags.
// Images try Unsplash first and fall back to Google; only configured providers
// take part. Missing credentials are a setup error.
func searcherFor(cmd *cli.Command, kind enrich.Kind) (enrich.Searcher, error) {
	client := enrich.NewHTTPClient(cmd.Int("retries"))

	if kind.Name == enrich.Videos.Name {
		key := cmd.String("youtube-key")
		if key == "" {
			return nil, errors.New("a YouTube API key is required (--youtube-key or YOUTUBE_API_KEY)")
		}
		return &enrich.Cached{
			Namespace: kind.Name,
			Searcher: &enrich.YouTube{
				Client:     client,
				BaseURL:    youtubeURL,
				APIKey:     key,
				MaxResults: cmd.Int("max-results"),
			},
		}, nil
	}

	var providers []enrich.Searcher
	if key := cmd.String("unsplash-key"); key != "" {
		providers = append(providers, &enrich.Unsplash{
			Client:    client,
			BaseURL:   unsplashURL,
			AccessKey: key,
			Color:     cmd.String("unsplash-color"),
		})
	}
	if key, cx := cmd.String("google-key"), cmd.String("google-cx"); key != "" && cx != "" {
		providers = append(providers, &enrich.Google{
			Client:  client,
			BaseURL: googleURL,
			APIKey:  key,
			CX:      cx,
		})
	}
	if len(providers) == 0 {
		return nil, errors.New("an image search provider is required (UNSPLASH_ACCESS_KEY, or GOOGLE_API_KEY with GOOGLE_PROJECT_CX)")
	}

	return &enrich.Cached{
		Namespace: kind.Name,
		Searcher:  enrich.Fallback{Searchers: providers},
	}, nil
}

// runEnrich updates the --file when one is given, otherwise the collection
// of kind in the document database.
func runEnrich(ctx context.Context, cmd *cli.Command, kind enrich.Kind, params mongo.ConnParams) (enrich.Result, error) {
	s, err := searcherFor(cmd, kind)
	if err != nil {
		return enrich.Result{}, err
	}

	if path := cmd.String("file"); path != "" {
		return enrich.EnrichFile(ctx, path, kind, s, enrich.FileOptions{
			DryRun: cmd.Bool("dry-run"),
			Out:    cmd.Root().Writer,
			Color:  cmd.Bool("color"),
		})
	}

	var res enrich.Result
	err = withMongo(ctx, params, func(srv MongoConn) error {
		var err error
		res, err = enrich.EnrichMongo(ctx, srv, params.DBName, kind, s)
		return err
	})
	return res, err
}

func enrichCommandAction(kind enrich.Kind) func(context.Context, *cli.Command) error {
	return func(ctx context.Context, cmd *cli.Command) error {
		res, err := runEnrich(ctx, cmd, kind, mongoParams(cmd))
		if err != nil {
			return err
		}
		if cmd.Bool("dry-run") && cmd.String("file") != "" {
			return nil
		}
		return emit(cmd, res)
	}
}

// newFileFlags returns the flags that redirect enrich to a seed file.
func newFileFlags(m meta.Meta, kind enrich.Kind) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "update this JSON seed file instead of the " + kind.Collection + " collection",
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Usage:   "with --file, show the changes as a diff without writing",
			Sources: NameSpacedValueChain(m, "enrich.dry_run"),
		},
	}
}

func enrichCommandBuilder(m meta.Meta) *cli.Command {
	var subs []*cli.Command
	for _, kind := range []enrich.Kind{enrich.Videos, enrich.Images} {
		usage := "add YouTube links to recipes"
		if kind.Name == enrich.Images.Name {
			usage = "add photo links to ingredients"
		}
		subs = append(subs, (&CommandBuilder{
			Name:      kind.Name,
			Usage:     usage,
			UsageText: "skhctl enrich " + kind.Name + " [options]",
			Flags: append(append(NewMongoFlags(m),
				NewEnrichFlags(m)...),
				newFileFlags(m, kind)...),
			Action: enrichCommandAction(kind),
			Meta:   m,
		}).Build())
	}
	return group("enrich", "look up media links for recipes and ingredients", m, subs...)
}
