// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smartkitchen/skhctl/internal/log"
)

// Dir resolves the base cache directory: SKH_CACHE_DIR when set, otherwise
// os.UserCacheDir()/skhctl. It returns false when neither is available, which
// callers treat as a disabled cache.
func Dir() (string, bool) {
	if c := os.Getenv("SKH_CACHE_DIR"); c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "skhctl"), true
	}
	return "", false
}

// Enabled reports whether caching is on. SKH_CACHE=0 or false turns it off.
func Enabled() bool {
	switch strings.ToLower(os.Getenv("SKH_CACHE")) {
	case "0", "false":
		return false
	}
	return true
}

// Namespace is a cache subdirectory, one per kind of result.
type Namespace []string

// SearchResults is the namespace of media search results for kind, e.g.
// "videos" or "images". Results of different kinds never share entries.
func SearchResults(kind string) Namespace {
	return Namespace{"enrich", kind}
}

// NormalizeKey folds case and whitespace so "Sea  Salt" and "sea salt" share
// one entry.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}

// Path returns where key is stored and whether the file exists.
func (n Namespace) Path(key string) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	p := filepath.Join(append(append([]string{base}, n...), encodeKey(key))...)
	_, err := os.Stat(p)
	return p, err == nil
}

// Read returns the trimmed bytes stored under key.
func (n Namespace) Read(key string) ([]byte, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := n.Path(key)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		log.Debugf("cache read %s: %v", p, err)
		return nil, false
	}
	log.Tracef("cache hit: %s %q", strings.Join(n, "/"), key)
	return bytes.TrimSpace(b), true
}

// Write stores data under key, creating the namespace directory as needed.
// With the cache disabled it does nothing.
func (n Namespace) Write(key string, data []byte) error {
	if !Enabled() {
		return nil
	}
	p, ok := n.Path(key)
	if !ok {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Tracef("cache write: %s %q", strings.Join(n, "/"), key)
	return nil
}

// ReadString returns the non-empty value stored under the normalized key.
func (n Namespace) ReadString(key string) (string, bool) {
	b, ok := n.Read(NormalizeKey(key))
	if !ok || len(b) == 0 {
		return "", false
	}
	return string(b), true
}

// WriteString stores value under the normalized key. Empty values are not
// stored, so a miss is looked up again on the next run.
func (n Namespace) WriteString(key, value string) error {
	if value == "" {
		return nil
	}
	return n.Write(NormalizeKey(key), []byte(value))
}

// Purge removes entries older than hours and returns how many went. hours <= 0
// keeps everything.
func Purge(hours int) (int, error) {
	base, ok := Dir()
	if hours <= 0 || !ok {
		return 0, nil
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	removed := 0
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}

// encodeKey is the hex sha256 of the clear-text key, used as the file name.
func encodeKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
