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
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions() RemoteOptions {
	return RemoteOptions{Retries: 1, RetryDelay: time.Millisecond, Timeout: 5 * time.Second}
}

func TestRemote_ConditionalRequests(t *testing.T) {
	var requests, conditional atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(`{"name": "remote"}`))
	}))
	defer ts.Close()

	remote := NewRemote(ts.URL+"/data.json", fastOptions(), nil)

	for i := 0; i < 3; i++ {
		data, err := remote.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"name": "remote"}, data)
	}

	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, int32(2), conditional.Load())
}

func TestRemote_MaxAge(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"n": 1}`))
	}))
	defer ts.Close()

	opts := fastOptions()
	opts.MaxAge = time.Hour
	remote := NewRemote(ts.URL, opts, nil)

	for i := 0; i < 3; i++ {
		_, err := remote.Get(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestRemote_KeepsPreviousData(t *testing.T) {
	var body atomic.Value
	var status atomic.Int32
	body.Store(`{"version": 1}`)
	status.Store(http.StatusOK)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	defer ts.Close()

	remote := NewRemote(ts.URL+"/data.json", fastOptions(), nil)
	ctx := context.Background()

	data, err := remote.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"version": float64(1)}, data)

	// Invalid documents are rejected.
	body.Store(`{"version": `)
	data, err = remote.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"version": float64(1)}, data)

	// So are failed refreshes.
	status.Store(http.StatusInternalServerError)
	data, err = remote.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"version": float64(1)}, data)

	// A valid document is accepted again.
	status.Store(http.StatusOK)
	body.Store(`{"version": 2}`)
	data, err = remote.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"version": float64(2)}, data)
}

func TestRemote_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, "", "resource not found (404 Not Found)"},
		{"unauthorized", http.StatusUnauthorized, "", "authentication failed"},
		{"forbidden", http.StatusForbidden, "", "access denied"},
		{"server error", http.StatusBadGateway, "", "server error: 502 Bad Gateway"},
		{"teapot", http.StatusTeapot, "", "unexpected status: 418"},
		{"invalid first document", http.StatusOK, "{", "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := NewRemote(ts.URL, fastOptions(), nil).Get(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRemote_Retries(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer ts.Close()

	opts := fastOptions()
	opts.Retries = 2
	data, err := NewRemote(ts.URL, opts, nil).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ok": true}, data)
	assert.Equal(t, int32(3), requests.Load())
}

func TestRemote_CancelledDuringBackoff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	opts := RemoteOptions{Retries: 5, RetryDelay: time.Hour}
	_, err := NewRemote(ts.URL, opts, nil).Get(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRemote_HeadersAndFormat(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write([]byte("name: yaml\n"))
	}))
	defer ts.Close()

	opts := fastOptions()
	opts.Headers = map[string]string{"X-API-Key": "secret"}
	data, err := NewRemote(ts.URL+"/data", opts, nil).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "yaml"}, data)
}

func TestRemote_Format(t *testing.T) {
	tests := []struct {
		url         string
		opt         Format
		contentType string
		want        Format
	}{
		{"http://x/data.yaml", "", "application/json", FormatYAML},
		{"http://x/vars.hcl?v=1", "", "", FormatHCL},
		{"http://x/data", "", "application/x-yaml", FormatYAML},
		{"http://x/data", "", "text/x-hcl", FormatHCL},
		{"http://x/data", "", "text/plain", FormatJSON},
		{"http://x/data", "", "", FormatJSON},
		{"http://x/data.json", FormatYAML, "", FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.url+" "+tt.contentType, func(t *testing.T) {
			r := NewRemote(tt.url, RemoteOptions{Format: tt.opt}, nil)
			assert.Equal(t, tt.want, r.format(tt.contentType))
		})
	}
}

func TestRemote_TooLarge(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat(" ", MaxContentSize+1)))
	}))
	defer ts.Close()

	_, err := NewRemote(ts.URL, fastOptions(), nil).Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum size")
}

func TestOpen(t *testing.T) {
	src, err := Open("", nil)
	require.NoError(t, err)
	data, err := src.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)

	src, err = Open("https://example.invalid/data.json", nil)
	require.NoError(t, err)
	assert.IsType(t, &Remote{}, src)

	_, err = Open("missing.json", nil)
	assert.Error(t, err)
}
