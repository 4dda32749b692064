// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/smartkitchen/skhctl/internal/log"
)

// GoogleURL is the custom search endpoint.
const GoogleURL = "https://www.googleapis.com/customsearch/v1"

// ErrQuotaExceeded is returned once Google has answered 429.
var ErrQuotaExceeded = errors.New("google custom search quota exceeded")

// Google searches images with Google Custom Search. After the first 429 every
// call fails fast with ErrQuotaExceeded.
type Google struct {
	Client  *retryablehttp.Client
	BaseURL string
	APIKey  string
	CX      string

	quotaExceeded atomic.Bool
}

// QuotaExceeded reports whether a 429 has been seen.
func (g *Google) QuotaExceeded() bool {
	return g.quotaExceeded.Load()
}

func (g *Google) Search(ctx context.Context, query string) (string, error) {
	if g.quotaExceeded.Load() {
		return "", ErrQuotaExceeded
	}
	if g.APIKey == "" || g.CX == "" {
		return "", errors.New("google search is not configured (GOOGLE_API_KEY, GOOGLE_PROJECT_CX)")
	}
	base := g.BaseURL
	if base == "" {
		base = GoogleURL
	}

	res, err := getJSON(ctx, g.Client, base, url.Values{
		"q":          {query},
		"cx":         {g.CX},
		"key":        {g.APIKey},
		"num":        {"1"},
		"searchType": {"image"},
		"imgSize":    {"medium"},
		"safe":       {"off"},
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
			if g.quotaExceeded.CompareAndSwap(false, true) {
				log.Warnf("Quota exceeded for Google Custom Search API, skipping it from now on")
			}
			return "", ErrQuotaExceeded
		}
		return "", err
	}

	link := res.Get("items.0.link").String()
	if link == "" {
		log.Infof("No images found on Google for query: %s", query)
	}
	return link, nil
}
