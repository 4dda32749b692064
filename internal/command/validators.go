// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/smartkitchen/skhctl/internal/output"
	"github.com/smartkitchen/skhctl/internal/provision"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator rejects positional arguments; no command takes any.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Args().Present() {
		return fmt.Errorf("unexpected argument %q", c.Args().First())
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

// StepsValidator checks a comma-separated list of provisioning steps.
func StepsValidator(value any) error {
	return listValidator(value, provision.StepNames)
}

// StagesValidator checks a comma-separated list of all stages.
func StagesValidator(value any) error {
	return listValidator(value, StageNames)
}

func listValidator(value any, valid []string) error {
	for _, v := range splitList(value.(string)) {
		if !slices.Contains(valid, v) {
			return fmt.Errorf("unknown value %q, must be in %s", v, strings.Join(valid, ","))
		}
	}
	return nil
}
