// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/smartkitchen/skhctl/internal/config"
)

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// loaded configuration, context, the config namespace the command was invoked
// under, and the starting working directory.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	Namespace   string
	StartingDir string
}

// ConfigFile is the YAML file flags fall back to, or "" when none was loaded.
func (m Meta) ConfigFile() string {
	return m.Config.Source
}
