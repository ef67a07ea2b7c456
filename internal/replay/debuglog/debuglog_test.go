package debuglog

import (
	"encoding/json"
	"errors"
	"testing"
)

type snapshot struct {
	Runs int    `json:"runs"`
	Name string `json:"name"`
}

func TestRecordAppendsPatch(t *testing.T) {
	log := New()

	before := snapshot{Runs: 0, Name: "Lovers"}
	after := snapshot{Runs: 1, Name: "Lovers"}

	if err := log.Record("run scores", before, after); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(log.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(log.Entries))
	}

	entry := log.Entries[0]
	if entry.Description != "run scores" {
		t.Errorf("description = %q", entry.Description)
	}
	if entry.Error != "" {
		t.Errorf("unexpected error field: %q", entry.Error)
	}
	if len(entry.Patch) == 0 {
		t.Errorf("expected a non-empty patch for changed runs")
	}
}

func TestRecordNoChangeYieldsEmptyPatch(t *testing.T) {
	log := New()
	same := snapshot{Runs: 3, Name: "Tigers"}

	if err := log.Record("no-op", same, same); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(log.Entries[0].Patch) != 0 {
		t.Errorf("expected empty patch for identical snapshots, got %d ops", len(log.Entries[0].Patch))
	}
}

func TestFailAppendsErrorEntryWithoutPatch(t *testing.T) {
	log := New()
	log.Fail("event 12 (kind 2)", errors.New("unexpected base runner"))

	if len(log.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(log.Entries))
	}

	entry := log.Entries[0]
	if entry.Error != "unexpected base runner" {
		t.Errorf("error = %q", entry.Error)
	}
	if entry.Patch != nil {
		t.Errorf("expected nil patch on failure entry")
	}
}

func TestMarshalJSONIsBareArray(t *testing.T) {
	log := New()
	log.Fail("boom", errors.New("fatal"))

	raw, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("log did not marshal as a bare array: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d decoded entries, want 1", len(entries))
	}
}

func TestMixedSuccessAndFailureEntries(t *testing.T) {
	log := New()
	if err := log.Record("pitch", snapshot{Runs: 0}, snapshot{Runs: 0}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	log.Fail("strikeout misattributed", errors.New("nobody at bat"))

	if len(log.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(log.Entries))
	}
	if log.Entries[1].Error == "" {
		t.Errorf("expected second entry to carry the failure")
	}
}
