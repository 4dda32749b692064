// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"
)

// Formats accepted by RenderReport.
var Formats = []string{"text", "json", "yaml"}

// RenderReport writes v to w in format. text flattens v into a two-column
// name/value table, json is indented and yaml uses v's yaml tags. If w is nil,
// os.Stdout is used.
func RenderReport(w io.Writer, format string, v any, color bool) error {
	if w == nil {
		w = os.Stdout
	}

	switch format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = w.Write(b)
		return err
	case "text", "":
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		pairs := Flatten(gjson.ParseBytes(b), "")
		if len(pairs) == 0 {
			return nil
		}
		rows := make([][]string, 0, len(pairs))
		for _, p := range pairs {
			rows = append(rows, []string{p.Name, p.Value})
		}
		_, err = fmt.Fprintln(w, newTable(color, 2).Rows(rows...))
		return err
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Pair is one flattened name/value.
type Pair struct {
	Name  string
	Value string
}

// Flatten walks a JSON document in key order. Nested objects become dotted
// names, arrays of scalars are joined with ", " and arrays of objects are
// indexed (name.0.key).
func Flatten(doc gjson.Result, prefix string) []Pair {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	var out []Pair
	switch {
	case doc.IsObject():
		doc.ForEach(func(k, v gjson.Result) bool {
			out = append(out, Flatten(v, join(k.String()))...)
			return true
		})
	case doc.IsArray():
		items := doc.Array()
		scalar := true
		for _, it := range items {
			if it.IsObject() || it.IsArray() {
				scalar = false
				break
			}
		}
		if scalar {
			vals := make([]string, len(items))
			for i, it := range items {
				vals[i] = it.String()
			}
			out = append(out, Pair{prefix, strings.Join(vals, ", ")})
			break
		}
		for i, it := range items {
			out = append(out, Flatten(it, join(fmt.Sprint(i)))...)
		}
	default:
		if prefix != "" {
			out = append(out, Pair{prefix, doc.String()})
		}
	}
	return out
}
