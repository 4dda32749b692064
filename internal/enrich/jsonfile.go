// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/smartkitchen/skhctl/internal/differ"
	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/mongo"
)

// FileIndent is the indentation of rewritten seed files.
const FileIndent = "    "

// FileOptions controls EnrichFile.
type FileOptions struct {
	// DryRun writes a diff to Out instead of rewriting the file.
	DryRun bool
	Out    io.Writer
	Color  bool
}

// EnrichFile updates the array of entries in the JSON file at path in place.
func EnrichFile(ctx context.Context, path string, kind Kind, s Searcher, opts FileOptions) (Result, error) {
	res := Result{Target: kind.Name}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	if t := bytes.TrimSpace(data); len(t) == 0 || t[0] != '[' {
		return res, fmt.Errorf("%s does not hold a JSON array", path)
	}
	docs, err := mongo.DecodeExtJSON(data)
	if err != nil {
		return res, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	before, err := mongo.EncodeExtJSON(docs, FileIndent)
	if err != nil {
		return res, err
	}

	for i, doc := range docs {
		query := str(doc, kind.QueryField)
		if query == "" {
			res.Skipped++
			continue
		}
		if cur := str(doc, kind.URLField); !kind.fileNeeds(cur) {
			res.Skipped++
			log.Infof("Skipping %s as it already has %s", query, kind.URLField)
			continue
		}

		u, ok := lookup(ctx, s, &res, fmt.Sprintf("'%s'", query), query)
		if !ok {
			continue
		}
		docs[i] = setField(doc, kind.URLField, u)
		res.Updated++
		log.Infof("Updated %s with %s: %s", query, kind.URLField, u)
	}

	after, err := mongo.EncodeExtJSON(docs, FileIndent)
	if err != nil {
		return res, err
	}

	res.log()

	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		if _, err := differ.Diff(out, before, after, opts.Color); err != nil {
			return res, err
		}
		return res, nil
	}

	if res.Updated == 0 {
		return res, nil
	}
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, after, mode); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Infof("Wrote %s", path)
	return res, nil
}
