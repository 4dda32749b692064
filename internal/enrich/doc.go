// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package enrich looks up recipe videos and ingredient images with third-party
// search APIs and writes the URLs into MongoDB documents or a seed JSON file.
//
// Searchers are composed: Cached wraps Fallback, which wraps the concrete
// providers. Only the Google searcher holds mutable state, its quota flag.
package enrich
