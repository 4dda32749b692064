// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package mongo connects to the document store and (re)creates its
// collections with $jsonSchema validators. Seed and enrich reach collections
// through the Server and Collection interfaces so they can be tested without
// a running mongod.
package mongo
