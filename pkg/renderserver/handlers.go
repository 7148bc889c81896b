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
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"mustache-engine/pkg/mustache"
	"mustache-engine/pkg/templating"
)

// maxBodyBytes caps POSTed render data.
const maxBodyBytes = 1 << 20

// handleIndex lists the templates.
//
// GET /templates
//
//	{
//	  "templates": ["index", "partials/nav"],
//	  "count": 2
//	}
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names := s.renderer.TemplateNames()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": names,
		"count":     len(names),
	})
}

// handleRender renders one template. A non-empty POST body is decoded as
// JSON and used as the data; otherwise the data comes from the DataFunc.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var data interface{}
	var posted bool
	if r.Method == http.MethodPost {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			} else {
				writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
			}
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &data); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
				return
			}
			posted = true
		}
	}

	if !posted && s.data != nil {
		var err error
		data, err = s.data(r.Context())
		if err != nil {
			s.logger.Warn("Loading render data failed", "error", err)
			writeError(w, http.StatusBadGateway, "failed to load data: "+err.Error())
			return
		}
	}

	start := time.Now()
	output, err := s.renderer.Render(name, data)

	record := RenderRecord{
		Time:     start,
		Template: name,
		Duration: time.Since(start),
		Bytes:    len(output),
	}
	if err != nil {
		record.Error = err.Error()
	}
	s.history.add(record)

	if err != nil {
		s.writeRenderError(w, name, err)
		return
	}

	if s.renderer.ContentType() == mustache.HTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = io.WriteString(w, output)
}

func (s *Server) writeRenderError(w http.ResponseWriter, name string, err error) {
	var notFound *templating.TemplateNotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}

	s.logger.Warn("Render failed", "template", name, "error", err)
	source, _ := s.renderer.GetRawTemplate(name)
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error":  templating.FormatRenderErrorShort(err, name),
		"detail": templating.FormatRenderError(err, name, source),
	})
}

// handleHistory lists recent renders.
//
// GET /debug/renders?n=20
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	n := DefaultHistorySize
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = parsed
	}

	records := s.history.last(n)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"renders": records,
		"count":   len(records),
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, "ok\n")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "no route for "+r.URL.Path)
}
