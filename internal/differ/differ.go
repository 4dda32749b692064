// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/smartkitchen/skhctl/internal/log"
)

// Diff writes an ASCII diff of before and after to w. Both must be JSON
// objects or both JSON arrays. Reports whether they differ.
func Diff(w io.Writer, before, after []byte, color bool) (bool, error) {
	log.Debugf("len(before): %d len(after): %d", len(before), len(after))

	var left, right any
	if err := json.Unmarshal(before, &left); err != nil {
		return false, fmt.Errorf("failed to unmarshal original: %w", err)
	}
	if err := json.Unmarshal(after, &right); err != nil {
		return false, fmt.Errorf("failed to unmarshal update: %w", err)
	}

	differ := gojsondiff.New()

	var delta gojsondiff.Diff
	switch l := left.(type) {
	case map[string]any:
		r, ok := right.(map[string]any)
		if !ok {
			return false, fmt.Errorf("cannot compare an object with %T", right)
		}
		delta = differ.CompareObjects(l, r)
	case []any:
		r, ok := right.([]any)
		if !ok {
			return false, fmt.Errorf("cannot compare an array with %T", right)
		}
		delta = differ.CompareArrays(l, r)
	default:
		return false, fmt.Errorf("cannot compare %T documents", left)
	}

	if !delta.Modified() {
		fmt.Fprintln(w, "No changes.")
		return false, nil
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	}

	diffString, err := formatter.NewAsciiFormatter(left, config).Format(delta)
	if err != nil {
		return true, err
	}

	fmt.Fprintln(w, diffString)
	return true, nil
}
