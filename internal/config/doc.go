// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for skhctl's user
// configuration, plus the .env helpers shared with the application that
// skhctl provisions. The YAML configuration is expected in the user's
// configuration directory, typically:
//   - Linux/macOS: $XDG_CONFIG_HOME/skhctl.yaml or $HOME/.config/skhctl.yaml
//   - Windows: %APPDATA%/skhctl.yaml
//
// SKH_CFG_FILE overrides the location.
package config
