// Package debuglog captures a per-event audit trail of a replay run:
// the description of each event pushed and a JSON Patch diff between
// the state snapshots taken immediately before and after it, so a
// failed or suspicious game can be inspected after the fact without
// replaying it.
package debuglog

import (
	"encoding/json"
	"fmt"

	"github.com/wI2L/jsondiff"
)

// Entry is one step of a replay: either a successful event (Patch set)
// or a terminal failure (Error set, Patch nil).
type Entry struct {
	Description string          `json:"description"`
	Patch       jsondiff.Patch  `json:"patch,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Log accumulates Entry values across one game's replay.
type Log struct {
	Entries []Entry `json:"entries"`
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Record diffs before and after (both arbitrary JSON-marshalable state
// snapshots) and appends the resulting patch under description.
func (l *Log) Record(description string, before, after any) error {
	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		return fmt.Errorf("diff state for %q: %w", description, err)
	}
	l.Entries = append(l.Entries, Entry{Description: description, Patch: patch})
	return nil
}

// Fail appends a terminal error entry, used when an event or Finish()
// fails and no "after" snapshot exists.
func (l *Log) Fail(description string, err error) {
	l.Entries = append(l.Entries, Entry{Description: description, Error: err.Error()})
}

// MarshalJSON implements json.Marshaler so the log serializes as a
// bare array, matching the reference's debug_log[game_id] = log shape.
func (l *Log) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries)
}
