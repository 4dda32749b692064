// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"errors"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/smartkitchen/skhctl/internal/log"
)

// UnsplashURL is the photo search endpoint.
const UnsplashURL = "https://api.unsplash.com/search/photos"

// Unsplash searches Unsplash photos.
type Unsplash struct {
	Client    *retryablehttp.Client
	BaseURL   string
	AccessKey string
	// Color optionally filters by dominant color.
	Color string
}

func (u *Unsplash) Search(ctx context.Context, query string) (string, error) {
	if u.AccessKey == "" {
		return "", errors.New("unsplash access key is not set (UNSPLASH_ACCESS_KEY)")
	}
	base := u.BaseURL
	if base == "" {
		base = UnsplashURL
	}

	params := url.Values{
		"query":       {query},
		"client_id":   {u.AccessKey},
		"page":        {"1"},
		"per_page":    {"1"},
		"orientation": {"squarish"},
		"order_by":    {"relevant"},
	}
	if u.Color != "" {
		params.Set("color", u.Color)
	}

	res, err := getJSON(ctx, u.Client, base, params)
	if err != nil {
		return "", err
	}
	link := res.Get("results.0.urls.regular").String()
	if link == "" {
		log.Infof("No images found on Unsplash for query: %s", query)
	}
	return link, nil
}
