// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

//go:build integration

// Package testenv starts throwaway database containers for integration tests.
package testenv

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresUser     = "skhadmin"
	PostgresPassword = "skh-test-pass"
	MongoUser        = "skhadmin"
	MongoPassword    = "skh-test-pass"
)

// Endpoint is where a started container listens.
type Endpoint struct {
	Host string
	Port string
}

// available reports whether a Docker provider can be reached. The provider
// lookup can panic on hosts without a daemon.
func available() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

func start(t *testing.T, req testcontainers.ContainerRequest, port string) Endpoint {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !available() {
		t.Skip("skipping integration test: no container provider")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		_ = c.Terminate(context.Background())
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get host for %s: %v", req.Image, err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("failed to get port for %s: %v", req.Image, err)
	}
	return Endpoint{Host: host, Port: mapped.Port()}
}

// StartPostgres runs postgres:16-alpine for the life of the test.
func StartPostgres(t *testing.T) Endpoint {
	t.Helper()
	return start(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     PostgresUser,
			"POSTGRES_PASSWORD": PostgresPassword,
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2 * time.Minute),
	}, "5432/tcp")
}

// StartMongo runs mongo:7 with a root user for the life of the test.
func StartMongo(t *testing.T) Endpoint {
	t.Helper()
	return start(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		Env: map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": MongoUser,
			"MONGO_INITDB_ROOT_PASSWORD": MongoPassword,
		},
		WaitingFor: wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
	}, "27017/tcp")
}
