// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/smartkitchen/skhctl/internal/log"
)

const (
	// YouTubeURL is the API root; /search and /videos hang off it.
	YouTubeURL = "https://www.googleapis.com/youtube/v3"
	// WatchURL prefixes a video id.
	WatchURL = "https://www.youtube.com/watch?v="
)

// YouTube finds a recipe video. With MaxResults above 1 the most viewed
// candidate wins.
type YouTube struct {
	Client     *retryablehttp.Client
	BaseURL    string
	APIKey     string
	MaxResults int
}

func (y *YouTube) Search(ctx context.Context, recipe string) (string, error) {
	if y.APIKey == "" {
		return "", errors.New("youtube api key is not set (YOUTUBE_API_KEY)")
	}
	base := strings.TrimSuffix(y.BaseURL, "/")
	if base == "" {
		base = YouTubeURL
	}
	n := max(y.MaxResults, 1)

	res, err := getJSON(ctx, y.Client, base+"/search", url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"q":          {recipe + " recipe"},
		"maxResults": {strconv.Itoa(n)},
		"key":        {y.APIKey},
	})
	if err != nil {
		return "", err
	}

	var ids []string
	res.Get("items.#.id.videoId").ForEach(func(_, v gjson.Result) bool {
		if v.String() != "" {
			ids = append(ids, v.String())
		}
		return true
	})
	if len(ids) == 0 {
		log.Infof("No videos found for recipe: %s", recipe)
		return "", nil
	}
	if n == 1 || len(ids) == 1 {
		return WatchURL + ids[0], nil
	}

	stats, err := getJSON(ctx, y.Client, base+"/videos", url.Values{
		"part": {"statistics"},
		"id":   {strings.Join(ids, ",")},
		"key":  {y.APIKey},
	})
	if err != nil {
		return "", err
	}

	best, bestViews := "", int64(-1)
	stats.Get("items").ForEach(func(_, item gjson.Result) bool {
		if views := item.Get("statistics.viewCount").Int(); views > bestViews {
			best, bestViews = item.Get("id").String(), views
		}
		return true
	})
	if best == "" {
		best = ids[0]
	}
	return WatchURL + best, nil
}
