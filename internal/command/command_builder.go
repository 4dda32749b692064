// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/meta"
)

// CommandBuilder constructs a leaf cli.Command using a consistent pattern. It
// wires metadata, appends the global flags and sets up validators.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags: append(cb.Flags, NewGlobalFlags(cb.Meta)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: cb.Action,
	}
}

// group returns a parent command that only dispatches to its subcommands.
func group(name, usage string, m meta.Meta, subs ...*cli.Command) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Metadata: map[string]any{
			"meta": m,
		},
		Commands: subs,
	}
}
