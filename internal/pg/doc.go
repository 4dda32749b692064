// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package pg creates the relational side of Smart Kitchen Helper: the
// database itself, twelve tables with their CHECK constraints, the foreign key
// and lookup indexes, and the triggers that keep updated_at and recipe
// ratings current.
package pg
