// Package feed decodes the raw per-game event stream into typed
// records and provides the ordering utilities the replay engine needs
// to detect sibling groups and their terminal events.
package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExtraKind tags the shape of Metadata.Extra.
type ExtraKind int

const (
	ExtraNone ExtraKind = iota
	ExtraSwap
	ExtraIncineration
	ExtraTrade
)

// Swap describes a within-team player swap (event kind 114).
type Swap struct {
	TeamID      uuid.UUID `json:"teamId"`
	APlayerID   uuid.UUID `json:"aPlayerId"`
	APlayerName string    `json:"aPlayerName"`
	BPlayerID   uuid.UUID `json:"bPlayerId"`
	BPlayerName string    `json:"bPlayerName"`
}

// Incineration describes an incineration replacement (event kind 116).
type Incineration struct {
	TeamID        uuid.UUID `json:"teamId"`
	OutPlayerID   uuid.UUID `json:"outPlayerId"`
	InPlayerID    uuid.UUID `json:"inPlayerId"`
	InPlayerName  string    `json:"inPlayerName"`
}

// Trade describes a cross-team trade (event kind 113).
type Trade struct {
	ATeamID     uuid.UUID `json:"aTeamId"`
	APlayerID   uuid.UUID `json:"aPlayerId"`
	APlayerName string    `json:"aPlayerName"`
	BTeamID     uuid.UUID `json:"bTeamId"`
	BPlayerID   uuid.UUID `json:"bPlayerId"`
	BPlayerName string    `json:"bPlayerName"`
}

// Extra is the tagged-variant "extra data" subobject of Metadata. An
// unrecognized tag is tolerated when the event kind that carried it
// does not require it, and is a fatal decode error when it does (kinds
// 113/114/116 assert a matching variant in the replay dispatch).
type Extra struct {
	Kind         ExtraKind
	Swap         *Swap
	Incineration *Incineration
	Trade        *Trade
}

// Metadata is the `(play, sub_play)` ordinal pair plus the event's
// sibling-group membership and optional per-kind extras.
type Metadata struct {
	Play       uint16      `json:"play"`
	SubPlay    uint16      `json:"subPlay"`
	SiblingIDs []uuid.UUID `json:"siblingIds"`

	APlayerID *uuid.UUID `json:"aPlayerId,omitempty"`
	BPlayerID *uuid.UUID `json:"bPlayerId,omitempty"`
	Winner    *uuid.UUID `json:"winner,omitempty"`
	Weather   *int       `json:"weather,omitempty"`
	Mod       *string    `json:"mod,omitempty"`

	Extra *Extra `json:"-"`
}

// Event is one atom in the feed, fully decoded.
type Event struct {
	ID       uuid.UUID `json:"id"`
	Metadata Metadata  `json:"metadata"`

	PlayerTags []uuid.UUID `json:"playerTags"`
	TeamTags   []uuid.UUID `json:"teamTags"`
	Created    time.Time   `json:"created"`
	Kind       uint16      `json:"type"`
	Day        uint16      `json:"day,omitempty"`
	Description string     `json:"description"`

	AwayPitcher     *uuid.UUID `json:"awayPitcher,omitempty"`
	AwayPitcherName *string    `json:"awayPitcherName,omitempty"`
	HomePitcher     *uuid.UUID `json:"homePitcher,omitempty"`
	HomePitcherName *string    `json:"homePitcherName,omitempty"`

	BaseRunners    []uuid.UUID `json:"baseRunners,omitempty"`
	BasesOccupied  []uint16    `json:"basesOccupied,omitempty"`
}

// HasPitcherData reports whether this event carried the (rare)
// away/home pitcher backfill fields.
func (e *Event) HasPitcherData() bool {
	return e.AwayPitcher != nil && e.HomePitcher != nil
}

// Before reports whether e sorts strictly before other by
// (play, sub_play).
func (e *Event) Before(other *Event) bool {
	if e.Metadata.Play != other.Metadata.Play {
		return e.Metadata.Play < other.Metadata.Play
	}
	return e.Metadata.SubPlay < other.Metadata.SubPlay
}

// IsTerminal reports whether e is the last sibling in its sibling
// group: sub_play == len(sibling_ids)-1.
func (e *Event) IsTerminal() bool {
	return int(e.Metadata.SubPlay) == len(e.Metadata.SiblingIDs)-1
}

// Next computes the (play, sub_play) pair expected to follow e.
func (e *Event) Next() (play, subPlay uint16) {
	if int(e.Metadata.SubPlay)+1 == len(e.Metadata.SiblingIDs) {
		return e.Metadata.Play + 1, 0
	}
	return e.Metadata.Play, e.Metadata.SubPlay + 1
}

// SortEvents orders a feed slice by (play, sub_play) in place.
func SortEvents(events []*Event) {
	// insertion sort is sufficient: feeds are a few hundred events and
	// arrive nearly sorted already, so the hand-written stable insertion
	// sort below is used instead of the stdlib sort.
	sortStable(events)
}

func sortStable(events []*Event) {
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].Before(events[j-1]); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

// IsComplete checks the feed-completeness invariant: the final event
// (by ordering) must be the terminal "game over" kind.
func IsComplete(events []*Event) bool {
	if len(events) == 0 {
		return false
	}
	last := events[len(events)-1]
	return last.Kind == 216 || last.Kind == 11
}

// UnmarshalJSON decodes wire events, including the heterogeneous
// metadata.extra subobject keyed by which fields are present; a shape
// that matches none of the known extra variants is left nil (tolerated
// unless the dispatching event kind requires it).
func (e *Event) UnmarshalJSON(data []byte) error {
	type wireMetadata struct {
		Play       uint16      `json:"play"`
		SubPlay    uint16      `json:"subPlay"`
		SiblingIDs []uuid.UUID `json:"siblingIds"`
		APlayerID  *uuid.UUID  `json:"aPlayerId,omitempty"`
		BPlayerID  *uuid.UUID  `json:"bPlayerId,omitempty"`
		Winner     *uuid.UUID  `json:"winner,omitempty"`
		Weather    *int        `json:"weather,omitempty"`
		Mod        *string     `json:"mod,omitempty"`

		TeamID        *uuid.UUID `json:"teamId,omitempty"`
		OutPlayerID   *uuid.UUID `json:"outPlayerId,omitempty"`
		InPlayerID    *uuid.UUID `json:"inPlayerId,omitempty"`
		InPlayerName  *string    `json:"inPlayerName,omitempty"`
		APlayerName   *string    `json:"aPlayerName,omitempty"`
		BPlayerName   *string    `json:"bPlayerName,omitempty"`
		ATeamID       *uuid.UUID `json:"aTeamId,omitempty"`
		BTeamID       *uuid.UUID `json:"bTeamId,omitempty"`
	}

	type wireEvent struct {
		ID              uuid.UUID    `json:"id"`
		Metadata        wireMetadata `json:"metadata"`
		PlayerTags      []uuid.UUID  `json:"playerTags"`
		TeamTags        []uuid.UUID  `json:"teamTags"`
		Created         time.Time    `json:"created"`
		Kind            uint16       `json:"type"`
		Day             uint16       `json:"day,omitempty"`
		Description     string       `json:"description"`
		AwayPitcher     *uuid.UUID   `json:"awayPitcher,omitempty"`
		AwayPitcherName *string      `json:"awayPitcherName,omitempty"`
		HomePitcher     *uuid.UUID   `json:"homePitcher,omitempty"`
		HomePitcherName *string      `json:"homePitcherName,omitempty"`
		BaseRunners     []uuid.UUID  `json:"baseRunners,omitempty"`
		BasesOccupied   []uint16     `json:"basesOccupied,omitempty"`
	}

	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode feed event: %w", err)
	}

	e.ID = w.ID
	e.Metadata = Metadata{
		Play:       w.Metadata.Play,
		SubPlay:    w.Metadata.SubPlay,
		SiblingIDs: w.Metadata.SiblingIDs,
		APlayerID:  w.Metadata.APlayerID,
		BPlayerID:  w.Metadata.BPlayerID,
		Winner:     w.Metadata.Winner,
		Weather:    w.Metadata.Weather,
		Mod:        w.Metadata.Mod,
	}
	e.PlayerTags = w.PlayerTags
	e.TeamTags = w.TeamTags
	e.Created = w.Created
	e.Kind = w.Kind
	e.Day = w.Day
	e.Description = w.Description
	e.AwayPitcher = w.AwayPitcher
	e.AwayPitcherName = w.AwayPitcherName
	e.HomePitcher = w.HomePitcher
	e.HomePitcherName = w.HomePitcherName
	e.BaseRunners = w.BaseRunners
	e.BasesOccupied = w.BasesOccupied

	switch {
	case w.Metadata.ATeamID != nil && w.Metadata.BTeamID != nil:
		e.Metadata.Extra = &Extra{Kind: ExtraTrade, Trade: &Trade{
			ATeamID:     *w.Metadata.ATeamID,
			APlayerID:   valOrZero(w.Metadata.APlayerID),
			APlayerName: valOrEmpty(w.Metadata.APlayerName),
			BTeamID:     *w.Metadata.BTeamID,
			BPlayerID:   valOrZero(w.Metadata.BPlayerID),
			BPlayerName: valOrEmpty(w.Metadata.BPlayerName),
		}}
	case w.Metadata.TeamID != nil && w.Metadata.APlayerID != nil && w.Metadata.BPlayerID != nil:
		e.Metadata.Extra = &Extra{Kind: ExtraSwap, Swap: &Swap{
			TeamID:      *w.Metadata.TeamID,
			APlayerID:   *w.Metadata.APlayerID,
			APlayerName: valOrEmpty(w.Metadata.APlayerName),
			BPlayerID:   *w.Metadata.BPlayerID,
			BPlayerName: valOrEmpty(w.Metadata.BPlayerName),
		}}
	case w.Metadata.TeamID != nil && w.Metadata.OutPlayerID != nil && w.Metadata.InPlayerID != nil:
		e.Metadata.Extra = &Extra{Kind: ExtraIncineration, Incineration: &Incineration{
			TeamID:       *w.Metadata.TeamID,
			OutPlayerID:  *w.Metadata.OutPlayerID,
			InPlayerID:   *w.Metadata.InPlayerID,
			InPlayerName: valOrEmpty(w.Metadata.InPlayerName),
		}}
	}

	return nil
}

func valOrZero(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.UUID{}
	}
	return *id
}

func valOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
