package boxscore

import "github.com/google/uuid"

// Zero is the reserved "unknown pitcher" sentinel id, used transiently
// before the first pitcher of a game is named by the feed.
var Zero uuid.UUID

// Team owns one side's identity, lineup, and accumulated stats for a
// single game.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Shorthand string    `json:"shorthand"`
	Emoji     string    `json:"emoji"`

	PlayerNames map[uuid.UUID]string `json:"playerNames"`

	// Lineup is one stack of ids per batting-order position; the top of
	// each stack is the player currently active there. Pitchers is a
	// single stack tracking every pitcher who has appeared.
	Lineup   [][]uuid.UUID `json:"lineup"`
	Pitchers []uuid.UUID   `json:"pitchers"`

	PitcherOfRecord uuid.UUID `json:"pitcherOfRecord"`
	SavingPitcher   uuid.UUID `json:"savingPitcher,omitempty"`

	Stats      map[uuid.UUID]*Stats `json:"stats"`
	InningRuns map[int]int          `json:"inningRuns"`
	LeftOnBase int                  `json:"leftOnBase"`
	Won        bool                 `json:"won"`
}

// NewTeam returns a Team seeded with the placeholder pitcher, matching
// the reference engine's practice of reserving slot zero for a pitcher
// that has not yet been named by the feed.
func NewTeam() *Team {
	t := &Team{
		PlayerNames: make(map[uuid.UUID]string),
		Pitchers:    []uuid.UUID{Zero},
		Stats:       make(map[uuid.UUID]*Stats),
		InningRuns:  make(map[int]int),
	}
	t.Stats[Zero] = &Stats{GamesStarted: 1}
	return t
}

// Runs sums the per-inning run buckets.
func (t *Team) Runs() int {
	total := 0
	for _, r := range t.InningRuns {
		total += r
	}
	return total
}

// Hits sums Hits() across every player on the team.
func (t *Team) Hits() int {
	total := 0
	for _, s := range t.Stats {
		total += s.Hits()
	}
	return total
}

// StatsFor returns (creating if necessary) the Stats record for player.
func (t *Team) StatsFor(player uuid.UUID) *Stats {
	s, ok := t.Stats[player]
	if !ok {
		s = &Stats{}
		t.Stats[player] = s
	}
	return s
}

// Positions iterates every lineup position stack plus the pitcher
// stack, the full set of places a traded or substituted player id might
// need to be swapped.
func (t *Team) Positions() [][]uuid.UUID {
	all := make([][]uuid.UUID, 0, len(t.Lineup)+1)
	all = append(all, t.Lineup...)
	all = append(all, t.Pitchers)
	return all
}

// PushOntoPositionTopping swaps out onto every position (lineup slot or
// pitcher stack) whose top id is out, pushing in as the new top.
func (t *Team) PushOntoPositionTopping(out, in uuid.UUID) {
	for i := range t.Lineup {
		pos := t.Lineup[i]
		if len(pos) > 0 && pos[len(pos)-1] == out {
			t.Lineup[i] = append(pos, in)
		}
	}
	if n := len(t.Pitchers); n > 0 && t.Pitchers[n-1] == out {
		t.Pitchers = append(t.Pitchers, in)
	}
}

// SwapOntoPositions pushes b onto whichever position currently tops
// with a, or pushes a onto whichever tops with b - never both, so a
// single position can't be pushed twice by the same swap.
func (t *Team) SwapOntoPositions(a, b uuid.UUID) {
	swapTop := func(pos []uuid.UUID) []uuid.UUID {
		if len(pos) == 0 {
			return pos
		}
		switch pos[len(pos)-1] {
		case a:
			return append(pos, b)
		case b:
			return append(pos, a)
		default:
			return pos
		}
	}
	for i := range t.Lineup {
		t.Lineup[i] = swapTop(t.Lineup[i])
	}
	t.Pitchers = swapTop(t.Pitchers)
}

// CurrentPitcher is the top of the pitcher stack.
func (t *Team) CurrentPitcher() uuid.UUID {
	return t.Pitchers[len(t.Pitchers)-1]
}
