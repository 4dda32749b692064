// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/smartkitchen/skhctl/internal/log"
)

// DefaultRetries is how often a 5xx or transport error is retried.
const DefaultRetries = 2

// StatusError is a non-200 answer from a search API.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d: %s", e.URL, e.Code, e.Body)
}

// NewHTTPClient returns a client that retries 5xx and transport errors at most
// retries times. 429 is never retried; callers treat it as a quota signal.
func NewHTTPClient(retries int) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = max(retries, 0)
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.HTTPClient.Timeout = 30 * time.Second
	c.Logger = leveledLogger{}
	c.CheckRetry = checkRetry
	// Hand back the last response so status errors never carry the query
	// string, which holds the API key.
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// getJSON issues a GET of base with params and parses a 200 body.
func getJSON(ctx context.Context, c *retryablehttp.Client, base string, params url.Values) (gjson.Result, error) {
	u := base
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return gjson.Result{}, fmt.Errorf("GET %s: %w", base, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response from %s: %w", base, err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &StatusError{URL: base, Code: resp.StatusCode, Body: gjson.GetBytes(body, "error.message").String()}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("invalid json from %s", base)
	}
	return gjson.ParseBytes(body), nil
}

// leveledLogger sends retryablehttp's messages to the debug log. Request URLs
// carry API keys, so they are not logged above debug.
type leveledLogger struct{}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (leveledLogger) Error(msg string, kv ...any) { log.Debugf("http error: %s %v", msg, kv) }
func (leveledLogger) Info(msg string, kv ...any)  { log.Tracef("http: %s %v", msg, kv) }
func (leveledLogger) Debug(msg string, kv ...any) { log.Tracef("http: %s %v", msg, kv) }
func (leveledLogger) Warn(msg string, kv ...any)  { log.Debugf("http warn: %s %v", msg, kv) }
