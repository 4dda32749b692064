// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v3"

	awsx "github.com/smartkitchen/skhctl/internal/aws"
	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/provision"
)

// provisionParams reads the aws up flags. The database settings are the
// --pg-* flags so the created RDS instance matches what pg and seed connect to.
func provisionParams(cmd *cli.Command, stepFlag string) provision.Params {
	return provision.Params{
		Prefix:       cmd.String("prefix"),
		AMI:          cmd.String("ami"),
		InstanceType: cmd.String("instance-type"),
		KeyName:      cmd.String("key-name"),
		BucketName:   cmd.String("bucket"),
		GitRepoURL:   cmd.String("git-repo"),
		DB: provision.DBParams{
			Name:          cmd.String("pg-db"),
			Username:      cmd.String("pg-username"),
			Password:      cmd.String("pg-password"),
			InstanceClass: cmd.String("db-class"),
		},
		Wait:    cmd.Duration("wait"),
		RDSWait: cmd.Duration("rds-wait"),
		EnvFile: cmd.String("env-file"),
		Skip:    splitList(cmd.String(stepFlag)),
	}
}

// provisionUp creates the environment and always records whatever was
// created in the state file, so a failed run can still be torn down.
func provisionUp(ctx context.Context, cmd *cli.Command, stepFlag string) (*provision.Report, error) {
	params := provisionParams(cmd, stepFlag).WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	cfg, err := awsConfig(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	rep, upErr := provision.New(awsx.NewClients(cfg), params).Up(ctx)
	if rep != nil {
		state := cmd.String("state")
		if err := rep.Save(state); err != nil {
			return rep, errors.Join(upErr, err)
		}
		log.Infof("Recorded created resources in %s", state)
	}
	return rep, upErr
}

func awsUpCommandAction(ctx context.Context, cmd *cli.Command) error {
	rep, err := provisionUp(ctx, cmd, "skip")
	if rep != nil {
		if emitErr := emit(cmd, rep); emitErr != nil {
			log.WithError(emitErr).Error("failed to render report")
		}
	}
	return err
}

func awsDownCommandAction(ctx context.Context, cmd *cli.Command) error {
	state := cmd.String("state")
	rep, err := provision.LoadReport(state)
	if err != nil {
		return err
	}

	if rep.Region != "" && cmd.String("region") == "" {
		if err := cmd.Set("region", rep.Region); err != nil {
			return err
		}
	}
	cfg, err := awsConfig(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	if err := provision.New(awsx.NewClients(cfg), provision.Params{}.WithDefaults()).Down(ctx, rep); err != nil {
		return err
	}

	if err := os.Remove(state); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	log.Infof("All resources recorded in %s were deleted", state)
	return nil
}

func awsCommandBuilder(m meta.Meta) *cli.Command {
	up := (&CommandBuilder{
		Name:      "up",
		Usage:     "provision the VPC, web tier and RDS database",
		UsageText: "skhctl aws up [options]",
		Flags: append(append(NewAWSFlags(m),
			NewProvisionFlags(m, "skip")...),
			NewPostgresFlags(m)...),
		Action: awsUpCommandAction,
		Meta:   m,
	}).Build()

	down := (&CommandBuilder{
		Name:      "down",
		Usage:     "delete every resource recorded by aws up",
		UsageText: "skhctl aws down [options]",
		Flags:     append(NewAWSFlags(m), NewStateFlag(m)),
		Action:    awsDownCommandAction,
		Meta:      m,
	}).Build()

	return group("aws", "provision or tear down the AWS environment", m, up, down)
}
