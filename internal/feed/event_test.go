package feed

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestOrderingAndTerminal(t *testing.T) {
	a := &Event{Metadata: Metadata{Play: 4, SubPlay: 0, SiblingIDs: make([]uuid.UUID, 2)}}
	b := &Event{Metadata: Metadata{Play: 4, SubPlay: 1, SiblingIDs: make([]uuid.UUID, 2)}}

	if !a.Before(b) {
		t.Fatalf("expected a before b")
	}
	if a.IsTerminal() {
		t.Fatalf("a should not be terminal")
	}
	if !b.IsTerminal() {
		t.Fatalf("b should be terminal")
	}

	play, sub := b.Next()
	if play != 5 || sub != 0 {
		t.Fatalf("Next() = (%d, %d), want (5, 0)", play, sub)
	}
}

func TestSortEvents(t *testing.T) {
	events := []*Event{
		{Metadata: Metadata{Play: 2, SubPlay: 0}},
		{Metadata: Metadata{Play: 1, SubPlay: 1}},
		{Metadata: Metadata{Play: 1, SubPlay: 0}},
	}
	SortEvents(events)
	want := [][2]uint16{{1, 0}, {1, 1}, {2, 0}}
	for i, e := range events {
		if e.Metadata.Play != want[i][0] || e.Metadata.SubPlay != want[i][1] {
			t.Fatalf("events[%d] = (%d,%d), want %v", i, e.Metadata.Play, e.Metadata.SubPlay, want[i])
		}
	}
}

func TestIsComplete(t *testing.T) {
	if IsComplete(nil) {
		t.Fatalf("empty feed should not be complete")
	}
	events := []*Event{
		{Kind: 1},
		{Kind: 216},
	}
	if !IsComplete(events) {
		t.Fatalf("feed ending in kind 216 should be complete")
	}
	events[len(events)-1].Kind = 9
	if IsComplete(events) {
		t.Fatalf("feed ending in kind 9 should not be complete")
	}
}

func TestUnmarshalTradeExtra(t *testing.T) {
	raw := `{
		"id": "11111111-1111-1111-1111-111111111111",
		"metadata": {
			"play": 1, "subPlay": 0, "siblingIds": [],
			"aTeamId": "22222222-2222-2222-2222-222222222222",
			"aPlayerId": "33333333-3333-3333-3333-333333333333",
			"aPlayerName": "Alice",
			"bTeamId": "44444444-4444-4444-4444-444444444444",
			"bPlayerId": "55555555-5555-5555-5555-555555555555",
			"bPlayerName": "Bob"
		},
		"type": 113,
		"description": "Alice was traded to the Moist Talkers for Bob."
	}`

	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Metadata.Extra == nil || e.Metadata.Extra.Kind != ExtraTrade {
		t.Fatalf("expected trade extra, got %+v", e.Metadata.Extra)
	}
	if e.Metadata.Extra.Trade.APlayerName != "Alice" || e.Metadata.Extra.Trade.BPlayerName != "Bob" {
		t.Fatalf("trade fields not decoded: %+v", e.Metadata.Extra.Trade)
	}
}

func TestUnmarshalSwapExtra(t *testing.T) {
	raw := `{
		"id": "11111111-1111-1111-1111-111111111111",
		"metadata": {
			"play": 1, "subPlay": 0, "siblingIds": [],
			"teamId": "22222222-2222-2222-2222-222222222222",
			"aPlayerId": "33333333-3333-3333-3333-333333333333",
			"aPlayerName": "Alice",
			"bPlayerId": "55555555-5555-5555-5555-555555555555",
			"bPlayerName": "Bob"
		},
		"type": 114,
		"description": "Alice and Bob were swapped in Feedback."
	}`

	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Metadata.Extra == nil || e.Metadata.Extra.Kind != ExtraSwap {
		t.Fatalf("expected swap extra, got %+v", e.Metadata.Extra)
	}
}

func TestNameTableLookupAndDuplicate(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	table := NewNameTable(map[uuid.UUID]string{a: "Alice", b: "Bob"})

	id, err := table.Lookup("Alice")
	if err != nil || id != a {
		t.Fatalf("Lookup(Alice) = (%v, %v), want (%v, nil)", id, err, a)
	}

	if _, err := table.Lookup("Nobody"); err == nil {
		t.Fatalf("expected error looking up unknown name")
	}

	c := uuid.New()
	dup := NewNameTable(map[uuid.UUID]string{a: "Alice", c: "Alice"})
	if _, err := dup.Lookup("Alice"); err == nil {
		t.Fatalf("expected error looking up a collided name")
	}
}

func TestPhrasePredicates(t *testing.T) {
	if !IsWalk("Alice draws a walk.") {
		t.Errorf("expected walk match")
	}
	if !IsHomeRun("Alice hits a grand slam!") {
		t.Errorf("expected grand slam to count as home run")
	}
	if HitBase("Alice hits a Double!") != 1 {
		t.Errorf("expected double to map to base 1")
	}
	name, ok := FieldersChoiceRunner("Alice out at second.")
	if !ok || name != "Alice" {
		t.Errorf("FieldersChoiceRunner = (%q, %v), want (Alice, true)", name, ok)
	}
}
