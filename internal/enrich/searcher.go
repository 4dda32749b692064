// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"errors"

	"github.com/smartkitchen/skhctl/internal/cacheutil"
	"github.com/smartkitchen/skhctl/internal/log"
)

// Searcher finds one URL for query. An empty URL with a nil error means the
// provider had no result.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Fallback tries each searcher in order and returns the first URL found.
type Fallback struct {
	Searchers []Searcher
}

// Search returns "" and nil when no searcher found anything and at least one
// answered cleanly. If every searcher failed the errors are joined.
func (f Fallback) Search(ctx context.Context, query string) (string, error) {
	var errs []error
	for _, s := range f.Searchers {
		u, err := s.Search(ctx, query)
		if err != nil {
			log.Warnf("Search for %q failed: %v", query, err)
			errs = append(errs, err)
			continue
		}
		if u != "" {
			return u, nil
		}
	}
	if len(errs) == len(f.Searchers) && len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", nil
}

// Cached memoises found URLs in memory and in the on-disk cache. Misses are
// not cached so a later run can still find them.
type Cached struct {
	Searcher  Searcher
	Namespace string

	mem map[string]string
}

func (c *Cached) Search(ctx context.Context, query string) (string, error) {
	key := cacheutil.NormalizeKey(query)
	if u, ok := c.mem[key]; ok {
		return u, nil
	}

	ns := cacheutil.SearchResults(c.Namespace)
	if u, ok := ns.ReadString(key); ok {
		c.remember(key, u)
		log.Debugf("Using cached %s result for %q", c.Namespace, query)
		return u, nil
	}

	u, err := c.Searcher.Search(ctx, query)
	if err != nil || u == "" {
		return u, err
	}

	c.remember(key, u)
	if err := ns.WriteString(key, u); err != nil {
		log.WithError(err).Warnf("Could not cache %s result for %q", c.Namespace, query)
	}
	return u, nil
}

func (c *Cached) remember(key, u string) {
	if c.mem == nil {
		c.mem = map[string]string{}
	}
	c.mem[key] = u
}
