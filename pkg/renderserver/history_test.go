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
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mustache-engine/pkg/templating"
)

func templates(records []RenderRecord) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Template)
	}
	return names
}

func TestHistory(t *testing.T) {
	h := newHistory(3)
	assert.Empty(t, h.last(10))

	h.add(RenderRecord{Template: "a"})
	h.add(RenderRecord{Template: "b"})
	assert.Equal(t, []string{"a", "b"}, templates(h.last(10)))
	assert.Equal(t, []string{"b"}, templates(h.last(1)))

	h.add(RenderRecord{Template: "c"})
	h.add(RenderRecord{Template: "d"})
	h.add(RenderRecord{Template: "e"})
	assert.Equal(t, []string{"c", "d", "e"}, templates(h.last(10)))
	assert.Equal(t, []string{"d", "e"}, templates(h.last(2)))
	assert.Equal(t, []string{"c", "d", "e"}, templates(h.last(-1)))
	assert.Empty(t, h.last(0))
}

func TestHistory_MinimumSize(t *testing.T) {
	h := newHistory(0)
	h.add(RenderRecord{Template: "a"})
	h.add(RenderRecord{Template: "b"})
	assert.Equal(t, []string{"b"}, templates(h.last(5)))
}

func TestServer_RenderHistory(t *testing.T) {
	handler := NewServer("", newTestEngine(t, templating.Options{}), nil, nil).Handler()

	do(t, handler, http.MethodGet, "/render/index", "")
	do(t, handler, http.MethodGet, "/render/broken", "")
	do(t, handler, http.MethodGet, "/render/partials/nav", "")

	rec := do(t, handler, http.MethodGet, "/debug/renders?n=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Renders []RenderRecord `json:"renders"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)

	assert.Equal(t, "broken", body.Renders[0].Template)
	assert.Contains(t, body.Renders[0].Error, "Missing filter")
	assert.Equal(t, "partials/nav", body.Renders[1].Template)
	assert.Empty(t, body.Renders[1].Error)
	assert.Equal(t, 3, body.Renders[1].Bytes)

	rec = do(t, handler, http.MethodGet, "/debug/renders", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)

	rec = do(t, handler, http.MethodGet, "/debug/renders?n=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
