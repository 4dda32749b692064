// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"strings"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/config"
	"github.com/smartkitchen/skhctl/internal/meta"
	"github.com/smartkitchen/skhctl/internal/output"
	"github.com/smartkitchen/skhctl/internal/provision"
)

// NameSpacedValueChain builds a value source chain for a flag. The env vars
// come first, then key under the command namespace in the config file, then
// the global key.
func NameSpacedValueChain(m meta.Meta, key string, envs ...string) cli.ValueSourceChain {
	chain := cli.EnvVars(envs...)

	path := m.ConfigFile()
	if path == "" {
		return chain
	}

	if m.Namespace != "" {
		src := yaml.YAML(m.Namespace+"."+key, altsrc.StringSourcer(path))
		chain.Chain = append(chain.Chain, src)
	}

	src := yaml.YAML(key, altsrc.StringSourcer(path))
	chain.Chain = append(chain.Chain, src)

	return chain
}

// NewGlobalFlags returns the flags every leaf command carries.
func NewGlobalFlags(m meta.Meta) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: NameSpacedValueChain(m, "color", "SKH_COLOR"),
			Value:   output.ColorDefault(),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "report format (" + strings.Join(output.Formats, ", ") + ")",
			Sources: NameSpacedValueChain(m, "output", "SKH_OUTPUT"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
	}
}

// NewPostgresFlags returns the connection flags for the application database.
func NewPostgresFlags(m meta.Meta) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "pg-username",
			Usage:   "postgres user",
			Sources: NameSpacedValueChain(m, "postgres.username", "POSTGRES_USERNAME"),
			Value:   provision.DefaultDBUser,
		},
		&cli.StringFlag{
			Name:    "pg-password",
			Usage:   "postgres password",
			Sources: NameSpacedValueChain(m, "postgres.password", "POSTGRES_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "pg-host",
			Usage:   "postgres host",
			Sources: NameSpacedValueChain(m, "postgres.host", "POSTGRES_HOST"),
		},
		&cli.StringFlag{
			Name:    "pg-port",
			Usage:   "postgres port",
			Sources: NameSpacedValueChain(m, "postgres.port", "POSTGRES_PORT"),
			Value:   "5432",
		},
		&cli.StringFlag{
			Name:    "pg-db",
			Usage:   "application database name",
			Sources: NameSpacedValueChain(m, "postgres.db", "POSTGRES_DB"),
			Value:   provision.DefaultDBName,
		},
		&cli.StringFlag{
			Name:    "pg-uri-template",
			Usage:   "connection URI template with {username} {password} {host} {port} {dbname}",
			Sources: NameSpacedValueChain(m, "postgres.uri_template", "POSTGRES_URI_TEMPLATE"),
			Value:   config.DefaultPostgresURITemplate,
		},
	}
}

// NewMongoFlags returns the connection flags for the document database.
func NewMongoFlags(m meta.Meta) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "mongo-username",
			Usage:   "mongo user",
			Sources: NameSpacedValueChain(m, "mongo.username", "MONGO_USERNAME"),
		},
		&cli.StringFlag{
			Name:    "mongo-password",
			Usage:   "mongo password",
			Sources: NameSpacedValueChain(m, "mongo.password", "MONGO_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "mongo-host",
			Usage:   "mongo host, optionally with :port",
			Sources: NameSpacedValueChain(m, "mongo.host", "MONGO_HOST"),
		},
		&cli.StringFlag{
			Name:    "mongo-db",
			Usage:   "mongo database name",
			Sources: NameSpacedValueChain(m, "mongo.db", "MONGO_DB"),
		},
		&cli.StringFlag{
			Name:    "mongo-uri-template",
			Usage:   "connection URI template with {username} {password} {host} {dbname}",
			Sources: NameSpacedValueChain(m, "mongo.uri_template", "MONGO_URI_TEMPLATE"),
			Value:   config.DefaultMongoURITemplate,
		},
	}
}

// NewAWSFlags returns the credential and region flags.
func NewAWSFlags(m meta.Meta) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region",
			Sources: NameSpacedValueChain(m, "aws.region", "AWS_DEFAULT_REGION", "AWS_REGION"),
		},
		&cli.StringFlag{
			Name:    "access-key",
			Usage:   "AWS access key id",
			Sources: NameSpacedValueChain(m, "aws.access_key", "AWS_ACCESS_KEYID"),
		},
		&cli.StringFlag{
			Name:    "secret-key",
			Usage:   "AWS secret access key",
			Sources: NameSpacedValueChain(m, "aws.secret_key", "AWS_ACCESS_SECRET"),
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "shared config profile, used when no access key is given",
			Sources: NameSpacedValueChain(m, "aws.profile", "AWS_PROFILE"),
		},
	}
}

// NewStateFlag returns the --state flag naming the provisioning record.
func NewStateFlag(m meta.Meta) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "state",
		Usage:   "file recording the created AWS resources",
		Sources: NameSpacedValueChain(m, "aws.state", "SKH_STATE_FILE"),
		Value:   provision.DefaultStateFile,
	}
}

// NewProvisionFlags returns the flags of aws up. stepFlag names the flag that
// takes the steps to skip; it differs under all, where --skip names stages.
func NewProvisionFlags(m meta.Meta, stepFlag string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "name prefix for created resources",
			Sources: NameSpacedValueChain(m, "aws.prefix", "SKH_PREFIX"),
			Value:   provision.DefaultPrefix,
		},
		&cli.StringFlag{
			Name:    "ami",
			Usage:   "AMI id for the web and bastion instances",
			Sources: NameSpacedValueChain(m, "aws.ami", "AMI_ID"),
		},
		&cli.StringFlag{
			Name:    "instance-type",
			Usage:   "EC2 instance type",
			Sources: NameSpacedValueChain(m, "aws.instance_type", "INSTANCE_TYPE"),
			Value:   provision.DefaultInstance,
		},
		&cli.StringFlag{
			Name:    "key-name",
			Usage:   "EC2 key pair for SSH access",
			Sources: NameSpacedValueChain(m, "aws.key_name", "KEY_NAME"),
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "S3 bucket for the application code (generated when empty)",
			Sources: NameSpacedValueChain(m, "aws.bucket", "S3_BUCKET"),
		},
		&cli.StringFlag{
			Name:    "git-repo",
			Usage:   "git repository holding the web application",
			Sources: NameSpacedValueChain(m, "aws.git_repo", "GIT_REPO_URL"),
		},
		&cli.StringFlag{
			Name:    "db-class",
			Usage:   "RDS instance class",
			Sources: NameSpacedValueChain(m, "aws.db_class", "DB_INSTANCE_CLASS"),
			Value:   provision.DefaultDBClass,
		},
		&cli.DurationFlag{
			Name:    "wait",
			Usage:   "how long to wait for each AWS resource to become ready",
			Sources: NameSpacedValueChain(m, "aws.wait"),
			Value:   provision.DefaultWait,
		},
		&cli.DurationFlag{
			Name:    "rds-wait",
			Usage:   "how long to wait for the RDS instance to become available",
			Sources: NameSpacedValueChain(m, "aws.rds_wait"),
			Value:   provision.DefaultRDSWait,
		},
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "dotenv file updated with the database endpoint",
			Sources: NameSpacedValueChain(m, "env_file", "SKH_ENV_FILE"),
			Value:   config.DefaultEnvFile,
		},
		&cli.StringFlag{
			Name:    stepFlag,
			Usage:   "comma-separated provisioning steps to skip (" + strings.Join(provision.StepNames, ",") + ")",
			Sources: NameSpacedValueChain(m, "aws.skip"),
			Validator: func(value string) error {
				return FlagValidators(value, StepsValidator)
			},
		},
		NewStateFlag(m),
	}
}

// NewEnrichFlags returns the search provider flags.
func NewEnrichFlags(m meta.Meta) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "unsplash-key",
			Usage:   "Unsplash access key",
			Sources: NameSpacedValueChain(m, "enrich.unsplash_key", "UNSPLASH_ACCESS_KEY"),
		},
		&cli.StringFlag{
			Name:    "unsplash-color",
			Usage:   "Unsplash color filter for ingredient photos",
			Sources: NameSpacedValueChain(m, "enrich.unsplash_color"),
			Value:   "white",
		},
		&cli.StringFlag{
			Name:    "google-key",
			Usage:   "Google Custom Search API key",
			Sources: NameSpacedValueChain(m, "enrich.google_key", "GOOGLE_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "google-cx",
			Usage:   "Google Programmable Search engine id",
			Sources: NameSpacedValueChain(m, "enrich.google_cx", "GOOGLE_PROJECT_CX"),
		},
		&cli.StringFlag{
			Name:    "youtube-key",
			Usage:   "YouTube Data API key",
			Sources: NameSpacedValueChain(m, "enrich.youtube_key", "YOUTUBE_API_KEY"),
		},
		&cli.IntFlag{
			Name:    "max-results",
			Usage:   "YouTube candidates compared by view count",
			Sources: NameSpacedValueChain(m, "enrich.max_results"),
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "retries",
			Usage:   "retries for a failed search request",
			Sources: NameSpacedValueChain(m, "enrich.retries"),
			Value:   2,
		},
	}
}

// NewSeedDirFlag returns the directory flag of a seed command.
func NewSeedDirFlag(m meta.Meta, name, value, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    name,
		Usage:   usage,
		Sources: NameSpacedValueChain(m, "seed."+strings.ReplaceAll(name, "-", "_")),
		Value:   value,
	}
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
