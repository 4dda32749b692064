// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/cacheutil"
	"github.com/smartkitchen/skhctl/internal/config"
	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	// The arg[1] immediately following the binary (arg[0]) is the skhctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}
	config.SetNamespace(ns)

	// A missing config file is normal; flags then rely on env and defaults.
	cfg, err := config.Load()
	if err != nil {
		log.Debugf("no config file loaded: %v", err)
	}

	m := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		Namespace:   ns,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "skhctl",
		Usage: "Smart Kitchen Helper environment control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "skhctl version info",
				HideDefault: true,
			},
		},
		Before: purgeCache,
	}

	app.Commands = append(app.Commands,
		allCommandBuilder(m),
		awsCommandBuilder(m),
		enrichCommandBuilder(m),
		mongoCommandBuilder(m),
		pgCommandBuilder(m),
		seedCommandBuilder(m),
		completionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	sortFlags(app.Commands)

	return app, nil
}

func sortFlags(cmds []*cli.Command) {
	for _, cmd := range cmds {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
		sortFlags(cmd.Commands)
	}
}

// purgeCache drops cached search results older than cache.clean hours.
func purgeCache(ctx context.Context, _ *cli.Command) (context.Context, error) {
	hours, err := config.GetInt("cache.clean", 0)
	if err != nil || hours <= 0 {
		return ctx, nil
	}
	removed, err := cacheutil.Purge(hours)
	if err != nil {
		log.WithError(err).Warnf("Could not purge cache entries older than %dh", hours)
	}
	log.Debugf("purged %d cache entries older than %dh", removed, hours)
	return ctx, nil
}
