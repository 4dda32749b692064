// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/smartkitchen/skhctl/internal/log"
)

// Setup drops dbName when it exists and creates every collection in
// Collections with its validator.
func Setup(ctx context.Context, srv Server, dbName string) error {
	if dbName == "" {
		return errors.New("database name is empty")
	}

	names, err := srv.DatabaseNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}
	if slices.Contains(names, dbName) {
		if err := srv.DropDatabase(ctx, dbName); err != nil {
			return fmt.Errorf("failed to drop database %s: %w", dbName, err)
		}
		log.Infof("Dropped existing database: %s", dbName)
	}
	log.Infof("Created new database: %s", dbName)

	for _, c := range Collections {
		if err := srv.CreateCollection(ctx, dbName, c.Name, c.Validator); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", c.Name, err)
		}
		log.Infof("Created collection: %s with validation schema", c.Name)
	}
	return nil
}
