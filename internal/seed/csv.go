// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/smartkitchen/skhctl/internal/pg"
)

// ReadCSV returns the header and rows of path. Empty cells are nil so they
// insert as NULL. Surrounding whitespace in header names is dropped. Rows may
// be ragged; the seeder decides what to do with them.
func ReadCSV(path string) ([]string, [][]*string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([][]*string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]*string, len(rec))
		for i, cell := range rec {
			if cell == "" {
				continue
			}
			row[i] = &cell
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// TableName maps a CSV file to its table: the lower-cased file stem.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// CSVFiles lists the *.csv files in dir, known tables first in creation order,
// then the rest by name.
func CSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	rank := func(path string) int {
		name := TableName(path)
		for i, t := range pg.Tables {
			if t.Name == name {
				return i
			}
		}
		return len(pg.Tables)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	slices.SortStableFunc(files, func(a, b string) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(TableName(a), TableName(b))
	})
	return files, nil
}
