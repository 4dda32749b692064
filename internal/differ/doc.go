// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ renders the difference between two JSON documents. enrich
// uses it to show what a dry run would write.
package differ
