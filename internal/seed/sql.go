// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/output"
	"github.com/smartkitchen/skhctl/internal/pg"
)

// PreviewRows is how many rows are shown after each table loads.
const PreviewRows = 5

// errSkip marks a row that was not attempted because a lookup failed.
var errSkip = errors.New("row skipped")

// TableResult counts what happened to one CSV file.
type TableResult struct {
	Table    string `json:"table" yaml:"table"`
	Inserted int    `json:"inserted" yaml:"inserted"`
	Failed   int    `json:"failed" yaml:"failed"`
	Skipped  int    `json:"skipped" yaml:"skipped"`
}

// SQLSeeder loads CSV files into PostgreSQL one row per transaction.
type SQLSeeder struct {
	DB pg.DB

	// Preview receives a table of the first rows of each loaded table. Nil
	// disables the preview.
	Preview io.Writer
	Color   bool

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int

	ids map[string]*int64
}

// NewSQLSeeder returns a seeder writing previews to w.
func NewSQLSeeder(db pg.DB, w io.Writer, color bool) *SQLSeeder {
	return &SQLSeeder{DB: db, Preview: w, Color: color}
}

// LoadDir loads every CSV file in dir. Only a missing directory is an error;
// per-file problems are logged and counted.
func (s *SQLSeeder) LoadDir(ctx context.Context, dir string) ([]TableResult, error) {
	files, err := CSVFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list csv files in %s: %w", dir, err)
	}
	if len(files) == 0 {
		log.Warnf("No csv files found in %s", dir)
	}

	results := make([]TableResult, 0, len(files))
	for _, f := range files {
		res, err := s.LoadFile(ctx, f)
		if err != nil {
			log.WithError(err).Errorf("Skipping %s", f)
		}
		results = append(results, res)
	}
	return results, nil
}

// LoadFile loads one CSV file into the table named by its stem.
func (s *SQLSeeder) LoadFile(ctx context.Context, path string) (TableResult, error) {
	table := TableName(path)
	res := TableResult{Table: table}

	header, rows, err := ReadCSV(path)
	if err != nil {
		return res, err
	}
	if len(header) == 0 {
		log.Warnf("%s is empty", path)
		return res, nil
	}

	for _, row := range rows {
		cols, vals, err := s.prepare(ctx, table, header, row)
		if err != nil {
			if errors.Is(err, errSkip) {
				res.Skipped++
			} else {
				res.Failed++
			}
			log.Warnf("Skipping row %s of %s: %v", formatRow(row), table, err)
			continue
		}
		if err := s.insert(ctx, table, cols, vals); err != nil {
			res.Failed++
			log.Errorf("Error inserting row %s into %s: %v", formatRow(row), table, err)
			continue
		}
		res.Inserted++
		log.Debugf("Inserted into %s: %s", table, formatRow(row))
	}

	if err := s.advanceSequence(ctx, table); err != nil {
		log.WithError(err).Warnf("Could not advance id sequence of %s", table)
	}

	log.Infof("Data insertion completed for table '%s': %s inserted, %s failed, %s skipped",
		table,
		humanize.Comma(int64(res.Inserted)),
		humanize.Comma(int64(res.Failed)),
		humanize.Comma(int64(res.Skipped)))

	if s.Preview != nil {
		if err := s.preview(ctx, table); err != nil {
			log.WithError(err).Warnf("Could not preview %s", table)
		}
	}
	return res, nil
}

// prepare maps a CSV row to insert columns and values, resolving lookups and
// hashing passwords. Short rows are padded with NULL; rows with more cells
// than the header fail.
func (s *SQLSeeder) prepare(ctx context.Context, table string, header []string, row []*string) ([]string, []any, error) {
	if len(row) > len(header) {
		return nil, nil, fmt.Errorf("row has %d fields, header has %d", len(row), len(header))
	}
	cols := make([]string, 0, len(header))
	vals := make([]any, 0, len(header))

	for i, col := range header {
		var v *string
		if i < len(row) {
			v = row[i]
		}

		if l, ok := lookupFor(table, col); ok {
			cols = append(cols, l.ID)
			if v == nil {
				vals = append(vals, nil)
				continue
			}
			id, err := s.resolve(ctx, l, *v)
			if err != nil {
				return nil, nil, err
			}
			vals = append(vals, id)
			continue
		}

		if table == "users" && col == "password" {
			cols = append(cols, "password_hash")
			if v == nil {
				vals = append(vals, nil)
				continue
			}
			hash, err := s.hash(*v)
			if err != nil {
				return nil, nil, err
			}
			vals = append(vals, hash)
			continue
		}

		cols = append(cols, col)
		if v == nil {
			vals = append(vals, nil)
		} else {
			vals = append(vals, *v)
		}
	}
	return cols, vals, nil
}

// resolve returns the id for l's key value. Results, including misses, are
// memoised for the life of the seeder.
func (s *SQLSeeder) resolve(ctx context.Context, l Lookup, value string) (int64, error) {
	if s.ids == nil {
		s.ids = map[string]*int64{}
	}
	key := l.Table + "\x00" + l.Key + "\x00" + value
	if id, ok := s.ids[key]; ok {
		if id == nil {
			return 0, fmt.Errorf("%w: no %s with %s %q", errSkip, l.Table, l.Key, value)
		}
		return *id, nil
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 LIMIT 1", pg.Ident(l.ID), pg.Ident(l.Table), pg.Ident(l.Key))
	var id int64
	err := s.DB.QueryRow(ctx, q, value).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		s.ids[key] = nil
		return 0, fmt.Errorf("%w: no %s with %s %q", errSkip, l.Table, l.Key, value)
	case err != nil:
		return 0, fmt.Errorf("lookup of %s %q failed: %w", l.Table, value, err)
	}
	s.ids[key] = &id
	return id, nil
}

func (s *SQLSeeder) hash(password string) (string, error) {
	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// insert runs one INSERT in its own transaction.
func (s *SQLSeeder) insert(ctx context.Context, table string, cols []string, vals []any) error {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pg.Ident(c)
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pg.Ident(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, q, vals...); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// advanceSequence moves a table's serial sequence past its largest id.
func (s *SQLSeeder) advanceSequence(ctx context.Context, table string) error {
	t, ok := pg.LookupTable(table)
	if !ok {
		return nil
	}
	q := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence($1, $2), COALESCE((SELECT MAX(%s) FROM %s), 0) + 1, false)",
		pg.Ident(t.PrimaryKey), pg.Ident(t.Name))
	_, err := s.DB.Exec(ctx, q, t.Name, t.PrimaryKey)
	return err
}

// preview renders the first PreviewRows rows of table as text.
func (s *SQLSeeder) preview(ctx context.Context, table string) error {
	q := fmt.Sprintf("SELECT * FROM %s LIMIT %d", pg.Ident(table), PreviewRows)
	rows, err := s.DB.Query(ctx, q, pgx.QueryResultFormats{pgtype.TextFormatCode})
	if err != nil {
		return err
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	var cells [][]*string
	for rows.Next() {
		raw := rows.RawValues()
		row := make([]*string, len(raw))
		for i, b := range raw {
			if b != nil {
				v := string(b)
				row[i] = &v
			}
		}
		cells = append(cells, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	fmt.Fprintf(s.Preview, "First %d records from '%s':\n", PreviewRows, table)
	output.RenderRows(s.Preview, columns, cells, s.Color)
	return nil
}

func formatRow(row []*string) string {
	parts := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			parts[i] = "NULL"
		} else {
			parts[i] = *v
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
