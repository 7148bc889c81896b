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

package templating

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mustache-engine/pkg/mustache"
)

// LayeredLoader is a mustache data source that searches several data
// sources in order. The first layer that knows a name wins, so an
// in-memory layer placed first overrides files of a directory layer.
//
// Template IDs are prefixed with the index of their layer ("1:page.mustache")
// so that partials are resolved relative to the template that includes
// them, in the layer it came from.
type LayeredLoader struct {
	layers []mustache.DataSource
}

// NewLayeredLoader creates a LayeredLoader over layers. Nil layers are skipped.
func NewLayeredLoader(layers ...mustache.DataSource) *LayeredLoader {
	l := &LayeredLoader{}
	for _, layer := range layers {
		if layer != nil {
			l.layers = append(l.layers, layer)
		}
	}
	return l
}

// TemplateID resolves name in the first layer that knows it. relativeTo
// is only passed to the layer that produced it.
func (l *LayeredLoader) TemplateID(name, relativeTo string) (string, bool) {
	relLayer, relID := -1, ""
	if relativeTo != "" {
		if i, id, ok := splitLayeredID(relativeTo); ok {
			relLayer, relID = i, id
		}
	}

	for i, layer := range l.layers {
		rel := ""
		if i == relLayer {
			rel = relID
		}
		if id, ok := layer.TemplateID(name, rel); ok {
			return strconv.Itoa(i) + ":" + id, true
		}
	}
	return "", false
}

// TemplateString returns the source of a template ID produced by TemplateID.
func (l *LayeredLoader) TemplateString(id string) (string, error) {
	i, inner, ok := splitLayeredID(id)
	if !ok || i >= len(l.layers) {
		return "", fmt.Errorf("template not found: %s", id)
	}
	return l.layers[i].TemplateString(inner)
}

// Names returns the sorted, deduplicated template names of all layers
// that can list their templates.
func (l *LayeredLoader) Names() ([]string, error) {
	seen := make(map[string]bool)
	for _, layer := range l.layers {
		var names []string
		switch lister := layer.(type) {
		case interface{ Names() []string }:
			names = lister.Names()
		case interface{ Names() ([]string, error) }:
			var err error
			if names, err = lister.Names(); err != nil {
				return nil, err
			}
		}
		for _, name := range names {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func splitLayeredID(id string) (int, string, bool) {
	prefix, inner, found := strings.Cut(id, ":")
	if !found {
		return 0, "", false
	}
	i, err := strconv.Atoi(prefix)
	if err != nil || i < 0 {
		return 0, "", false
	}
	return i, inner, true
}
