// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/smartkitchen/skhctl/internal/log"
	"github.com/smartkitchen/skhctl/internal/mongo"
)

// CollectionResult counts what happened to one JSON file.
type CollectionResult struct {
	Collection string `json:"collection" yaml:"collection"`
	Inserted   int    `json:"inserted" yaml:"inserted"`
	Deleted    int64  `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Failed     int    `json:"failed" yaml:"failed"`
	Skipped    bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// MongoSeeder loads JSON files into the collections named by their stems.
type MongoSeeder struct {
	Server mongo.Server
	DB     string

	// Drop empties each target collection before loading it.
	Drop bool
}

// LoadDir loads every *.json file in dir in name order.
func (s *MongoSeeder) LoadDir(ctx context.Context, dir string) ([]CollectionResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list json files in %s: %w", dir, err)
	}

	var results []CollectionResult
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		results = append(results, s.LoadFile(ctx, filepath.Join(dir, e.Name())))
	}
	if len(results) == 0 {
		log.Warnf("No json files found in %s", dir)
	}
	return results, nil
}

// LoadFile inserts the document or array of documents in path.
func (s *MongoSeeder) LoadFile(ctx context.Context, path string) CollectionResult {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := CollectionResult{Collection: name}

	data, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Errorf("Could not read '%s'", path)
		res.Failed++
		return res
	}
	if len(bytes.TrimSpace(data)) == 0 {
		log.Infof("File '%s' is empty and will be skipped", filepath.Base(path))
		res.Skipped = true
		return res
	}

	docs, err := mongo.DecodeExtJSON(data)
	if err != nil {
		log.Errorf("Error decoding JSON in file '%s': %v", filepath.Base(path), err)
		res.Failed++
		return res
	}

	if len(docs) == 0 {
		log.Infof("File '%s' holds no documents and will be skipped", filepath.Base(path))
		res.Skipped = true
		return res
	}

	coll := s.Server.Collection(s.DB, name)

	if s.Drop {
		dr, err := coll.DeleteMany(ctx, bson.D{})
		if err != nil {
			log.WithError(err).Errorf("Could not empty collection '%s'", name)
			res.Failed += len(docs)
			return res
		}
		res.Deleted = dr.DeletedCount
		log.Infof("Removed %s documents from collection '%s'", humanize.Comma(dr.DeletedCount), name)
	}

	if len(docs) == 1 {
		if _, err := coll.InsertOne(ctx, docs[0]); err != nil {
			log.WithError(err).Errorf("Error inserting into collection '%s'", name)
			res.Failed++
			return res
		}
		res.Inserted = 1
		log.Infof("Inserted 1 document into collection '%s'", name)
		return res
	}

	ir, err := coll.InsertMany(ctx, docs)
	if ir != nil {
		res.Inserted = len(ir.InsertedIDs)
	}
	if err != nil {
		res.Failed = len(docs) - res.Inserted
		log.WithError(err).Errorf("Error inserting into collection '%s'", name)
	}
	log.Infof("Inserted %s documents into collection '%s'", humanize.Comma(int64(res.Inserted)), name)
	return res
}
