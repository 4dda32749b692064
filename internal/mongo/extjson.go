// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package mongo

import (
	"bytes"

	"github.com/tidwall/pretty"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// DecodeExtJSON parses relaxed Extended JSON holding one document or an array
// of documents. Key order is kept.
func DecodeExtJSON(data []byte) ([]bson.D, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] != '[' {
		var doc bson.D
		if err := bson.UnmarshalExtJSON(trimmed, false, &doc); err != nil {
			return nil, err
		}
		return []bson.D{doc}, nil
	}

	// Extended JSON has no top-level arrays, so wrap it in a document.
	wrapped := make([]byte, 0, len(trimmed)+10)
	wrapped = append(wrapped, `{"docs":`...)
	wrapped = append(wrapped, trimmed...)
	wrapped = append(wrapped, '}')

	var holder struct {
		Docs []bson.D `bson:"docs"`
	}
	if err := bson.UnmarshalExtJSON(wrapped, false, &holder); err != nil {
		return nil, err
	}
	return holder.Docs, nil
}

// EncodeExtJSON renders docs as a relaxed Extended JSON array indented with
// indent. Keys keep their order and arrays always break across lines.
func EncodeExtJSON(docs []bson.D, indent string) ([]byte, error) {
	var raw bytes.Buffer
	raw.WriteByte('[')
	for i, d := range docs {
		if i > 0 {
			raw.WriteByte(',')
		}
		b, err := bson.MarshalExtJSON(d, false, false)
		if err != nil {
			return nil, err
		}
		raw.Write(b)
	}
	raw.WriteByte(']')

	return pretty.PrettyOptions(raw.Bytes(), &pretty.Options{Indent: indent}), nil
}
