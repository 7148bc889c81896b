// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datafile

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// DefaultRetryDelay is the default delay between retry attempts.
const DefaultRetryDelay = time.Second

// MaxContentSize is the maximum allowed document size (10MB).
const MaxContentSize = 10 * 1024 * 1024

// RemoteOptions configures a Remote.
type RemoteOptions struct {
	// Timeout is the HTTP request timeout.
	// Default: 30s
	Timeout time.Duration

	// Retries is the number of retry attempts on failure.
	// Default: 3
	Retries int

	// RetryDelay is the wait before the first retry. It doubles on each
	// further attempt.
	// Default: 1s
	RetryDelay time.Duration

	// MaxAge is how long fetched data is served without asking the server
	// again. Zero revalidates on every Get.
	MaxAge time.Duration

	// Format overrides format detection from the URL path and the
	// Content-Type header.
	Format Format

	// Headers are added to every request, for API keys and the like.
	Headers map[string]string
}

// WithDefaults returns a copy of the options with default values applied.
func (o RemoteOptions) WithDefaults() RemoteOptions {
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries == 0 {
		o.Retries = DefaultRetries
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// Remote is render data fetched over HTTP(S).
//
// Responses are revalidated with If-None-Match and If-Modified-Since. A new
// document replaces the cached one only once it decodes; when a refresh
// fails or yields an invalid document the previous data keeps being served.
//
// Safe for concurrent use. Concurrent Gets share a single fetch.
type Remote struct {
	url        string
	opts       RemoteOptions
	httpClient *http.Client
	logger     *slog.Logger

	mu           sync.Mutex
	data         interface{}
	hasData      bool
	checksum     string
	etag         string
	lastModified string
	fetchedAt    time.Time
}

// NewRemote creates a Remote for rawURL. Nothing is fetched until Get.
func NewRemote(rawURL string, opts RemoteOptions, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.Default()
	}

	return &Remote{
		url:  rawURL,
		opts: opts.WithDefaults(),
		httpClient: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		logger: logger.With("component", "datafile", "url", rawURL),
	}
}

// Get returns the current data, fetching or revalidating it as needed.
func (r *Remote) Get(ctx context.Context) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasData && r.opts.MaxAge > 0 && time.Since(r.fetchedAt) < r.opts.MaxAge {
		return r.data, nil
	}

	var etag, lastModified string
	if r.hasData {
		etag, lastModified = r.etag, r.lastModified
	}

	resp, err := r.fetchWithRetry(ctx, etag, lastModified)
	if err != nil {
		if r.hasData {
			r.logger.Warn("refresh failed, serving previous data", "error", err)
			return r.data, nil
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", r.url, err)
	}
	r.fetchedAt = time.Now()

	if resp.notModified {
		r.logger.Debug("data not modified")
		return r.data, nil
	}

	checksum := checksum(resp.body)
	if r.hasData && checksum == r.checksum {
		r.etag, r.lastModified = resp.etag, resp.lastModified
		return r.data, nil
	}

	data, err := Decode(bytes.NewReader(resp.body), r.format(resp.contentType), r.url)
	if err != nil {
		if r.hasData {
			r.logger.Warn("rejected invalid data, serving previous data", "error", err)
			return r.data, nil
		}
		return nil, err
	}

	r.data, r.hasData = data, true
	r.checksum = checksum
	r.etag, r.lastModified = resp.etag, resp.lastModified

	r.logger.Info("accepted data",
		"size", len(resp.body),
		"checksum", checksum[:16])

	return r.data, nil
}

// format picks the decoder: explicit option, then URL extension, then
// Content-Type. JSON is the fallback.
func (r *Remote) format(contentType string) Format {
	if r.opts.Format != "" {
		return r.opts.Format
	}
	if u, err := url.Parse(r.url); err == nil {
		if f, err := FormatFromPath(u.Path); err == nil {
			return f
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case strings.Contains(mediaType, "yaml"):
			return FormatYAML
		case strings.Contains(mediaType, "hcl"):
			return FormatHCL
		}
	}
	return FormatJSON
}

type fetchResult struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	notModified  bool
}

// fetchWithRetry performs an HTTP GET with exponential backoff between
// attempts.
func (r *Remote) fetchWithRetry(ctx context.Context, etag, lastModified string) (*fetchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.opts.Retries; attempt++ {
		if attempt > 0 {
			// Cap the exponent to prevent overflow (max 32x multiplier)
			exp := attempt - 1
			if exp > 5 {
				exp = 5
			}
			delay := r.opts.RetryDelay * time.Duration(1<<exp)
			r.logger.Debug("retrying HTTP fetch",
				"attempt", attempt+1,
				"delay", delay.String())

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := r.doFetch(ctx, etag, lastModified)
		if err == nil {
			return resp, nil
		}

		lastErr = err
		r.logger.Debug("HTTP fetch attempt failed",
			"attempt", attempt+1,
			"error", err)
	}

	return nil, fmt.Errorf("all %d retry attempts failed: %w", r.opts.Retries+1, lastErr)
}

// doFetch performs a single conditional GET.
func (r *Remote) doFetch(ctx context.Context, etag, lastModified string) (*fetchResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, r.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}
	for key, value := range r.opts.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", "mustache-engine/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	result := &fetchResult{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxContentSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if len(body) > MaxContentSize {
			return nil, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxContentSize)
		}
		result.body = body
		return result, nil

	case http.StatusNotModified:
		result.notModified = true
		if result.etag == "" {
			result.etag = etag
		}
		return result, nil

	case http.StatusUnauthorized:
		return nil, fmt.Errorf("authentication failed (401 Unauthorized)")

	case http.StatusForbidden:
		return nil, fmt.Errorf("access denied (403 Forbidden)")

	case http.StatusNotFound:
		return nil, fmt.Errorf("resource not found (404 Not Found)")

	default:
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("server error: %s", resp.Status)
		}
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
}

func checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
