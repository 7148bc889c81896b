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
	"sync"
	"time"
)

// DefaultHistorySize is the number of renders kept for /debug/renders.
const DefaultHistorySize = 100

// RenderRecord describes one served render.
type RenderRecord struct {
	Time     time.Time     `json:"time"`
	Template string        `json:"template"`
	Duration time.Duration `json:"duration_ns"`
	Bytes    int           `json:"bytes"`
	Error    string        `json:"error,omitempty"`
}

// history is a fixed-size circular log of renders. When full, new records
// overwrite the oldest ones.
type history struct {
	records []RenderRecord
	head    int // index of the next write
	count   int
	mu      sync.RWMutex
}

func newHistory(size int) *history {
	if size < 1 {
		size = 1
	}
	return &history{records: make([]RenderRecord, size)}
}

func (h *history) add(record RenderRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.head] = record
	h.head = (h.head + 1) % len(h.records)
	if h.count < len(h.records) {
		h.count++
	}
}

// last returns up to n of the most recent records, oldest first.
func (h *history) last(n int) []RenderRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > h.count || n < 0 {
		n = h.count
	}

	result := make([]RenderRecord, n)
	size := len(h.records)
	start := (h.head - n + size) % size
	for i := 0; i < n; i++ {
		result[i] = h.records[(start+i)%size]
	}

	return result
}
