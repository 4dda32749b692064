// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicateFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "empty args",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "only program and command",
			args:     []string{"skhctl", "pg"},
			expected: []string{"skhctl", "pg"},
		},
		{
			name:     "no duplicates",
			args:     []string{"skhctl", "pg", "--output", "text", "--drop-db"},
			expected: []string{"skhctl", "pg", "--output", "text", "--drop-db"},
		},
		{
			name:     "duplicate flag with value - last wins",
			args:     []string{"skhctl", "pg", "--output", "json", "--drop-db", "--output", "text"},
			expected: []string{"skhctl", "pg", "--drop-db", "--output", "text"},
		},
		{
			name:     "duplicate boolean flag",
			args:     []string{"skhctl", "pg", "--drop-db", "--color", "--drop-db"},
			expected: []string{"skhctl", "pg", "--color", "--drop-db"},
		},
		{
			name:     "duplicate flag with equals syntax",
			args:     []string{"skhctl", "pg", "--output=json", "--drop-db", "--output=text"},
			expected: []string{"skhctl", "pg", "--drop-db", "--output=text"},
		},
		{
			name:     "mixed equals and space syntax - same flag",
			args:     []string{"skhctl", "pg", "--output=json", "--output", "text"},
			expected: []string{"skhctl", "pg", "--output", "text"},
		},
		{
			name:     "nested subcommand preserved",
			args:     []string{"skhctl", "seed", "sql", "--csv-dir", "a", "--csv-dir", "b"},
			expected: []string{"skhctl", "seed", "sql", "--csv-dir", "b"},
		},
		{
			name:     "short flags deduplicated",
			args:     []string{"skhctl", "pg", "-o", "json", "-o", "text"},
			expected: []string{"skhctl", "pg", "-o", "text"},
		},
		{
			name:     "triple duplicate",
			args:     []string{"skhctl", "pg", "--output", "a", "--output", "b", "--output", "c"},
			expected: []string{"skhctl", "pg", "--output", "c"},
		},
		{
			name:     "lone dash is positional",
			args:     []string{"skhctl", "pg", "-", "--output", "a"},
			expected: []string{"skhctl", "pg", "-", "--output", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deduplicateFlags(tt.args))
		})
	}
}

func TestInjectConfigSet(t *testing.T) {
	sets := map[string][]string{
		"pg.local":    {"--pg-host localhost", "--pg-port 5433"},
		"seed.sample": {"--csv-dir 'sample data/csv'"},
		"all.skipaws": {"--skip aws"},
		"pg.emptyset": nil,
	}
	lookup := func(key string) []string { return sets[key] }

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "no set",
			args:     []string{"skhctl", "pg", "--drop-db"},
			expected: []string{"skhctl", "pg", "--drop-db"},
		},
		{
			name:     "set expanded in place",
			args:     []string{"skhctl", "pg", "@local", "--drop-db"},
			expected: []string{"skhctl", "pg", "--pg-host", "localhost", "--pg-port", "5433", "--drop-db"},
		},
		{
			name:     "quoted words kept together",
			args:     []string{"skhctl", "seed", "sql", "@sample"},
			expected: []string{"skhctl", "seed", "sql", "--csv-dir", "sample data/csv"},
		},
		{
			name:     "unknown set removed",
			args:     []string{"skhctl", "pg", "@nope"},
			expected: []string{"skhctl", "pg"},
		},
		{
			name:     "empty set removed",
			args:     []string{"skhctl", "pg", "@emptyset", "-o", "json"},
			expected: []string{"skhctl", "pg", "-o", "json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, injectConfigSet(tt.args, lookup))
		})
	}
}

func TestInjectThenDeduplicate(t *testing.T) {
	lookup := func(string) []string { return []string{"--output json", "--pg-host cfg"} }
	args := injectConfigSet([]string{"skhctl", "pg", "@x", "--output", "yaml"}, lookup)
	assert.Equal(t, []string{"skhctl", "pg", "--pg-host", "cfg", "--output", "yaml"}, deduplicateFlags(args))
}

func TestSplitFields(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitFields("  a \t b\n"))
	assert.Equal(t, []string{"--x", "one two"}, splitFields(`--x "one two"`))
	assert.Equal(t, []string{"--csv-dir", "sample data/csv"}, splitFields(`--csv-dir 'sample data/csv'`))
	assert.Empty(t, splitFields("   "))
	assert.Equal(t, []string{"--x", `"open`}, splitFields(`--x "open`))
}

func TestHandleNakedCommand(t *testing.T) {
	assert.Equal(t, []string{"skhctl", "--help"}, handleNakedCommand([]string{"skhctl"}))
	assert.Equal(t, []string{"skhctl", "pg"}, handleNakedCommand([]string{"skhctl", "pg"}))
}
