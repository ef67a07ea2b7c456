package feed

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NameTable is the bidirectional map between player id and the display
// name seen in the current game's event descriptions: a forward map is
// kept implicitly by boxscore.Team.PlayerNames; NameTable provides the
// reverse lookup the engine needs to resolve a runner named only in
// prose (fielder's choice: "Alice out at second").
type NameTable struct {
	byName map[string]uuid.UUID
}

// NewNameTable builds a reverse lookup from a forward id->name map.
// A duplicate name mapping to two different ids is a fatal attribution
// hazard and is reported by Lookup, not by construction, since the
// table is rebuilt every time the forward map changes.
func NewNameTable(forward map[uuid.UUID]string) *NameTable {
	byName := make(map[string]uuid.UUID, len(forward))
	dup := make(map[string]bool)
	for id, name := range forward {
		if existing, ok := byName[name]; ok && existing != id {
			dup[name] = true
			continue
		}
		byName[name] = id
	}
	for name := range dup {
		delete(byName, name)
	}
	return &NameTable{byName: byName}
}

// Lookup resolves a display name to its player id. Returns an error if
// the name is unknown or was a duplicate across two players (a fatal
// attribution failure per the error model).
func (t *NameTable) Lookup(name string) (uuid.UUID, error) {
	id, ok := t.byName[name]
	if !ok {
		return uuid.UUID{}, fmt.Errorf("could not determine id for baserunner %q", name)
	}
	return id, nil
}

// TrimTrailingPeriod strips one trailing "." from a parsed name
// fragment, used when description suffixes leave a stray period from
// sentence punctuation.
func TrimTrailingPeriod(s string) string {
	return strings.TrimSuffix(s, ".")
}
