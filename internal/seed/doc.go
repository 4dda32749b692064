// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package seed bulk loads CSV files into PostgreSQL tables and JSON files into
// MongoDB collections. Bad rows and documents are logged and counted, never
// fatal.
package seed
