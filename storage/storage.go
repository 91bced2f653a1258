// Package storage persists the append-only Run/Snapshot/Event stream
// (spec.md §5/§6), grounded on
// original_source/sub-bridge/backend/storage.py's "degrade to a no-op
// store when the real backend is unavailable" shape — there it's
// sqlmodel-absent, here it's a JSONL file that can't be opened. Storage
// failures must never abort a tick (§5), so every write here is
// best-effort and swallows its own errors after one log line.
package storage

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Polymythic/LLMsubmarineBridgeSimulator/engine"
)

// Record is one append-only line: a Run-scoped Event or Snapshot,
// matching spec.md §5's `Event(run_id, type, payload_json, ts)` /
// `Snapshot(run_id, heading, speed, depth, ts)` shape flattened into one
// row kind.
type Record struct {
	RunID   string         `json:"run_id"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	TS      string         `json:"ts"`
}

// JSONLStore appends newline-delimited JSON Records to a file, standing
// in for the original's SQLite-via-sqlmodel engine. Kept deliberately
// simple (append-only, no query surface) since spec.md scopes persistence
// itself out of the simulation's testable behavior.
type JSONLStore struct {
	runID string
	mu    sync.Mutex
	f     *os.File // nil if the file could not be opened; writes become no-ops
}

var _ engine.EventSink = (*JSONLStore)(nil)

// Open creates (or appends to) path and starts a new run id. A failure to
// open the file degrades to a no-op store rather than failing startup,
// mirroring init_engine's "sqlmodel unavailable -> return None" fallback.
func Open(path string) *JSONLStore {
	runID := time.Now().UTC().Format("20060102T150405.000000000Z")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("storage: could not open %s, falling back to no-op store: %v", path, err)
		return &JSONLStore{runID: runID}
	}
	return &JSONLStore{runID: runID, f: f}
}

// Append implements engine.EventSink.
func (s *JSONLStore) Append(eventType string, payload map[string]any) {
	s.write(Record{RunID: s.runID, Type: eventType, Payload: payload, TS: time.Now().UTC().Format(time.RFC3339Nano)})
}

// InsertSnapshot records ownship heading/speed/depth, grounded on
// storage.py's insert_snapshot.
func (s *JSONLStore) InsertSnapshot(heading, speed, depth float64) {
	s.write(Record{
		RunID: s.runID, Type: "snapshot",
		Payload: map[string]any{"heading": heading, "speed": speed, "depth": depth},
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *JSONLStore) write(rec Record) {
	if s.f == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.f)
	if err := enc.Encode(rec); err != nil {
		log.Printf("storage: write failed, dropping record: %v", err)
	}
}

// Close flushes and closes the underlying file, if any.
func (s *JSONLStore) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}

// NoopStore discards everything; used when persistence is disabled.
type NoopStore struct{}

var _ engine.EventSink = NoopStore{}

func (NoopStore) Append(eventType string, payload map[string]any) {}
