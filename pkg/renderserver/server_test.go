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

package renderserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mustache-engine/pkg/mustache"
	"mustache-engine/pkg/templating"
)

func newTestEngine(t *testing.T, opts templating.Options) *templating.TemplateEngine {
	t.Helper()
	engine, err := templating.NewWithOptions(map[string]string{
		"index":        "<h1>{{title}}</h1>",
		"broken":       "ok\n{{missing(title)}}",
		"partials/nav": "nav",
	}, opts)
	require.NoError(t, err)
	return engine
}

func staticData(v interface{}) DataFunc {
	return func(context.Context) (interface{}, error) { return v, nil }
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func TestServer_Endpoints(t *testing.T) {
	engine := newTestEngine(t, templating.Options{})
	handler := NewServer("", engine, staticData(map[string]interface{}{"title": "<Home>"}), nil).Handler()

	tests := []struct {
		name            string
		method          string
		path            string
		body            string
		wantStatus      int
		wantContentType string
		wantBody        string
		wantContains    []string
	}{
		{
			name:            "render with default data",
			method:          http.MethodGet,
			path:            "/render/index",
			wantStatus:      http.StatusOK,
			wantContentType: "text/html; charset=utf-8",
			wantBody:        "<h1>&lt;Home&gt;</h1>",
		},
		{
			name:       "render with posted data",
			method:     http.MethodPost,
			path:       "/render/index",
			body:       `{"title": "Posted"}`,
			wantStatus: http.StatusOK,
			wantBody:   "<h1>Posted</h1>",
		},
		{
			name:       "empty post keeps the default data",
			method:     http.MethodPost,
			path:       "/render/index",
			wantStatus: http.StatusOK,
			wantBody:   "<h1>&lt;Home&gt;</h1>",
		},
		{
			name:       "nested template name",
			method:     http.MethodGet,
			path:       "/render/partials/nav",
			wantStatus: http.StatusOK,
			wantBody:   "nav",
		},
		{
			name:         "invalid JSON body",
			method:       http.MethodPost,
			path:         "/render/index",
			body:         "{",
			wantStatus:   http.StatusBadRequest,
			wantContains: []string{"invalid JSON body"},
		},
		{
			name:         "unknown template",
			method:       http.MethodGet,
			path:         "/render/nope",
			wantStatus:   http.StatusNotFound,
			wantContains: []string{"template 'nope' not found", "partials/nav"},
		},
		{
			name:         "render error",
			method:       http.MethodGet,
			path:         "/render/broken",
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: []string{"Template: broken | Line 2", "Missing filter", "Template Context"},
		},
		{
			name:            "health",
			method:          http.MethodGet,
			path:            "/healthz",
			wantStatus:      http.StatusOK,
			wantContentType: "text/plain; charset=utf-8",
			wantBody:        "ok\n",
		},
		{
			name:         "unknown route",
			method:       http.MethodGet,
			path:         "/elsewhere",
			wantStatus:   http.StatusNotFound,
			wantContains: []string{"no route for /elsewhere"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantContentType != "" {
				assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			for _, want := range tt.wantContains {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestServer_Templates(t *testing.T) {
	handler := NewServer("", newTestEngine(t, templating.Options{}), nil, nil).Handler()

	rec := do(t, handler, http.MethodGet, "/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Templates []string `json:"templates"`
		Count     int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"broken", "index", "partials/nav"}, body.Templates)
	assert.Equal(t, 3, body.Count)
}

func TestServer_TextContentType(t *testing.T) {
	engine := newTestEngine(t, templating.Options{ContentType: mustache.Text})
	handler := NewServer("", engine, staticData(map[string]interface{}{"title": "<Home>"}), nil).Handler()

	rec := do(t, handler, http.MethodGet, "/render/index", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<h1><Home></h1>", rec.Body.String())
}

func TestServer_DataError(t *testing.T) {
	failing := func(context.Context) (interface{}, error) {
		return nil, errors.New("upstream down")
	}
	handler := NewServer("", newTestEngine(t, templating.Options{}), failing, nil).Handler()

	tests := []struct {
		name     string
		method   string
		body     string
		wantCode int
		wantBody string
	}{
		{"get needs the data source", http.MethodGet, "", http.StatusBadGateway, "failed to load data: upstream down"},
		{"empty post needs the data source", http.MethodPost, "", http.StatusBadGateway, "failed to load data: upstream down"},
		{"post body replaces the data source", http.MethodPost, `{"title":"x"}`, http.StatusOK, "<h1>x</h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, tt.method, "/render/index", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestServer_BodyReadError(t *testing.T) {
	handler := NewServer("", newTestEngine(t, templating.Options{}), nil, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/render/index", iotest.ErrReader(errors.New("connection reset")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to read body: connection reset")
}

func TestServer_NoData(t *testing.T) {
	handler := NewServer("", newTestEngine(t, templating.Options{}), nil, nil).Handler()

	rec := do(t, handler, http.MethodGet, "/render/index", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1></h1>", rec.Body.String())
}

func TestServer_BodyTooLarge(t *testing.T) {
	handler := NewServer("", newTestEngine(t, templating.Options{}), nil, nil).Handler()

	body := `{"title": "` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec := do(t, handler, http.MethodPost, "/render/index", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServer_GracefulShutdown(t *testing.T) {
	server := NewServer("localhost:0", newTestEngine(t, templating.Options{}), nil, nil)
	assert.Equal(t, "localhost:0", server.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
