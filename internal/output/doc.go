// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output renders command results as a text table, JSON, or YAML, and
// renders row previews as lipgloss tables.
package output
