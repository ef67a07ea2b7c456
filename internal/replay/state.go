// Package replay implements the deterministic box-score replay engine:
// a single-game, single-threaded state machine that consumes an
// ordered event feed and emits a fully attributed Game record.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldnotes/boxscore/internal/boxscore"
	"github.com/fieldnotes/boxscore/internal/feed"
	"github.com/fieldnotes/boxscore/internal/replay/errs"
	"github.com/fieldnotes/boxscore/internal/roster"
)

// RosterLoader resolves a team's identity and lineup at a point in
// time; satisfied by *roster.Resolver in production and a fake in
// tests.
type RosterLoader interface {
	Load(ctx context.Context, teamID uuid.UUID, at time.Time) (*roster.Roster, error)
}

// firedOut remembers the most recent fielded out, so a following
// sacrifice-advance event can attribute its RBI and sacrifice credit to
// the right batter.
type firedOut struct {
	Kind   uint16
	Batter uuid.UUID
}

// State is the full shadow state the engine carries alongside the
// in-progress Game, advanced one event at a time by Push.
type State struct {
	rosterLoader RosterLoader

	game         *boxscore.Game
	gameStarted  bool
	gameFinished bool

	inning         int
	topOfInning    bool
	halfInningOuts int

	atBat          *uuid.UUID
	lastFieldedOut *firedOut
	rbiCredit      *uuid.UUID

	onBase            onBaseList
	onBaseStartOfPlay onBaseList

	lastRunsCmp int
	saveSituation [2]SaveTag

	expectedPlay    uint16
	expectedSubPlay uint16
}

// New constructs a State for one game: empty teams, inning 1, top of
// inning, a placeholder pitcher reserved on each side until the feed
// names the real ones.
func New(sim string, season int, gameID uuid.UUID, rosterLoader RosterLoader) *State {
	game := &boxscore.Game{
		Sim:    sim,
		Season: season,
		GameID: gameID,
		Away:   boxscore.NewTeam(),
		Home:   boxscore.NewTeam(),
	}

	return &State{
		rosterLoader:    rosterLoader,
		game:            game,
		inning:          1,
		topOfInning:     true,
		lastRunsCmp:     0,
		expectedPlay:    0,
		expectedSubPlay: 0,
	}
}

// Push applies one event in feed order. Must be called with events in
// ascending (play, sub_play) order; the caller is responsible for
// sorting the feed first.
func (s *State) Push(ctx context.Context, event *feed.Event) error {
	if err := s.pushInner(ctx, event); err != nil {
		return fmt.Errorf("event %s (kind %d): %w", event.ID, event.Kind, err)
	}
	return nil
}

// Snapshot returns a deep copy of the in-progress Game, suitable for
// diffing against a later snapshot to build a debug log entry. It
// copies through a JSON round-trip, mirroring the marshaled-state
// comparison the debug log performs.
func (s *State) Snapshot() (*boxscore.Game, error) {
	raw, err := json.Marshal(s.game)
	if err != nil {
		return nil, fmt.Errorf("snapshot game %s: %w", s.game.GameID, err)
	}
	var copy boxscore.Game
	if err := json.Unmarshal(raw, &copy); err != nil {
		return nil, fmt.Errorf("snapshot game %s: %w", s.game.GameID, err)
	}
	return &copy, nil
}

func (s *State) pushInner(ctx context.Context, event *feed.Event) error {
	if err := s.checkSequencing(event); err != nil {
		return err
	}

	if err := s.backfillPitchers(event); err != nil {
		return err
	}

	if err := s.dispatch(ctx, event); err != nil {
		return err
	}

	s.expectedPlay, s.expectedSubPlay = event.Next()

	if event.IsTerminal() {
		s.lastFieldedOut = nil
		s.rbiCredit = nil

		if s.halfInningOuts < 3 {
			if err := s.reconcileBaseRunners(event); err != nil {
				return err
			}
		}

		s.lastRunsCmp = s.runsCmp()
		s.onBaseStartOfPlay = s.onBase.clone()
	}

	return nil
}

// checkSequencing asserts the event arrives in the expected (play,
// sub_play) position, tolerating the empty-event-before-half-inning
// case: a kind-2 event one play ahead of expectation with the same
// sub_play resynchronizes instead of failing.
func (s *State) checkSequencing(event *feed.Event) error {
	if event.Metadata.Play == s.expectedPlay && event.Metadata.SubPlay == s.expectedSubPlay {
		return nil
	}
	if event.Kind == 2 && event.Metadata.Play == s.expectedPlay+1 && event.Metadata.SubPlay == s.expectedSubPlay {
		s.expectedPlay = event.Metadata.Play
		return nil
	}
	return errs.NewStructuralMismatchError(fmt.Sprintf(
		"expected (%d, %d), got (%d, %d)",
		s.expectedPlay, s.expectedSubPlay, event.Metadata.Play, event.Metadata.SubPlay,
	))
}

// backfillPitchers handles the rare mid-game arrival of the
// away/home pitcher backfill fields, which names both starters in one
// shot if they were still unknown.
func (s *State) backfillPitchers(event *feed.Event) error {
	if s.game.Away.Pitchers[0] != boxscore.Zero {
		return nil
	}
	if !event.HasPitcherData() {
		return nil
	}
	if len(s.game.Away.Pitchers) != 1 || len(s.game.Home.Pitchers) != 1 {
		return errs.NewInvariantViolationError("roster change occurred while pitchers were unknown")
	}

	assignments := []struct {
		team    *boxscore.Team
		pitcher uuid.UUID
		name    string
	}{
		{s.game.Away, *event.AwayPitcher, valOrEmptyStr(event.AwayPitcherName)},
		{s.game.Home, *event.HomePitcher, valOrEmptyStr(event.HomePitcherName)},
	}
	for _, a := range assignments {
		a.team.Pitchers[0] = a.pitcher
		if stats, ok := a.team.Stats[boxscore.Zero]; ok {
			delete(a.team.Stats, boxscore.Zero)
			a.team.Stats[a.pitcher] = stats
		}
		a.team.PlayerNames[a.pitcher] = a.name
	}

	current := s.pitcher()
	for i := range s.onBase.entries {
		if s.onBase.entries[i].PitcherID == boxscore.Zero {
			s.onBase.entries[i].PitcherID = current
		}
	}
	return nil
}

func valOrEmptyStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// reconcileBaseRunners checks the derived on-base list against the
// event's merged base_runners/bases_occupied snapshot at the terminal
// event of a sibling group, advancing minimum bases the snapshot
// confirms and failing on any runner neither side can account for.
func (s *State) reconcileBaseRunners(event *feed.Event) error {
	if event.BaseRunners == nil || event.BasesOccupied == nil {
		return nil
	}

	known := make(map[uuid.UUID]int, len(event.BaseRunners))
	for i, id := range event.BaseRunners {
		if i < len(event.BasesOccupied) {
			known[id] = int(event.BasesOccupied[i])
		}
	}

	for i := range s.onBase.entries {
		r := &s.onBase.entries[i]
		if r.MinimumBase >= 3 {
			return errs.NewInvariantViolationError(fmt.Sprintf("baserunner %s should have scored", r.PlayerID))
		}
		pos, ok := known[r.PlayerID]
		if !ok {
			return errs.NewAttributionFailureError(fmt.Sprintf("baserunner %s missing from event", r.PlayerID))
		}
		if pos < r.MinimumBase {
			return errs.NewInvariantViolationError(fmt.Sprintf(
				"baserunner %s on base %d but should be on at least %d", r.PlayerID, pos, r.MinimumBase,
			))
		}
		r.MinimumBase = pos
		delete(known, r.PlayerID)
	}

	if len(known) > 0 {
		return errs.NewAttributionFailureError(fmt.Sprintf("baserunners %v not known to us", keysOf(known)))
	}
	return nil
}

func keysOf(m map[uuid.UUID]int) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Finish closes out the game: finalizes pitcher-of-record and save
// credit, fails if a placeholder id is left in stats or player names,
// and stamps games_batted/games_pitched.
func (s *State) Finish() (*boxscore.Game, error) {
	if !s.gameFinished {
		return nil, errs.NewInvariantViolationError("game incomplete")
	}
	if err := s.ensurePitchersKnown(); err != nil {
		return nil, err
	}
	if s.game.Away.Won == s.game.Home.Won {
		return nil, errs.NewInvariantViolationError("winner mismatch")
	}

	for _, team := range s.game.Teams() {
		if err := s.finalizeTeam(team); err != nil {
			return nil, err
		}
	}

	return s.game, nil
}

func (s *State) finalizeTeam(team *boxscore.Team) error {
	if team.PitcherOfRecord == boxscore.Zero {
		if team.Won {
			team.PitcherOfRecord = mostOutsReliever(team)
		} else {
			team.PitcherOfRecord = team.Pitchers[0]
		}
	}
	if team.PitcherOfRecord == boxscore.Zero {
		return errs.NewInvariantViolationError("placeholder pitcher id listed as winning or losing pitcher")
	}
	if team.Won {
		team.StatsFor(team.PitcherOfRecord).Wins = 1
	} else {
		team.StatsFor(team.PitcherOfRecord).Losses = 1
	}

	s.finalizeSave(team)

	totalOuts := 0
	for _, stats := range team.Stats {
		totalOuts += stats.OutsRecorded
	}
	if totalOuts%3 != 0 {
		return errs.NewInvariantViolationError("fractional total innings pitched")
	}
	if _, ok := team.Stats[boxscore.Zero]; ok {
		return errs.NewInvariantViolationError("placeholder pitcher id present in stats")
	}
	if _, ok := team.PlayerNames[boxscore.Zero]; ok {
		return errs.NewInvariantViolationError("placeholder pitcher id present in player names")
	}

	for _, stats := range team.Stats {
		if stats.IsBatting() {
			stats.GamesBatted++
		}
		if stats.IsPitching() {
			stats.GamesPitched++
		}
	}
	return nil
}

func (s *State) finalizeSave(team *boxscore.Team) {
	if !team.Won {
		return
	}
	finisher := team.CurrentPitcher()
	if finisher == team.PitcherOfRecord {
		return
	}
	idx := s.teamIndex(team)
	outs := team.StatsFor(finisher).OutsRecorded
	if saveEligible(s.saveSituation[idx], outs) {
		team.StatsFor(finisher).Saves = 1
		team.SavingPitcher = finisher
	}
}

func mostOutsReliever(team *boxscore.Team) uuid.UUID {
	var best uuid.UUID
	bestOuts := -1
	for _, p := range team.Pitchers[1:] {
		outs := team.StatsFor(p).OutsRecorded
		if outs > bestOuts {
			bestOuts = outs
			best = p
		}
	}
	return best
}

func (s *State) ensurePitchersKnown() error {
	for _, team := range s.game.Teams() {
		if team.Pitchers[0] == boxscore.Zero {
			return errs.NewInvariantViolationError("initial pitchers are unknown")
		}
	}
	return nil
}

func (s *State) offense() *boxscore.Team {
	if s.topOfInning {
		return s.game.Away
	}
	return s.game.Home
}

func (s *State) defense() *boxscore.Team {
	if s.topOfInning {
		return s.game.Home
	}
	return s.game.Away
}

func (s *State) offenseOf(team *boxscore.Team) *boxscore.Team {
	if team == s.game.Home {
		return s.game.Away
	}
	return s.game.Home
}

func (s *State) teamIndex(team *boxscore.Team) int {
	if team == s.game.Home {
		return 1
	}
	return 0
}

func (s *State) pitcher() uuid.UUID {
	return s.defense().CurrentPitcher()
}

func (s *State) batter() (uuid.UUID, error) {
	if s.atBat == nil {
		return uuid.UUID{}, errs.NewAttributionFailureError("nobody at bat")
	}
	return *s.atBat, nil
}

func (s *State) offenseStats(player uuid.UUID) *boxscore.Stats {
	return s.offense().StatsFor(player)
}

func (s *State) defenseStats(player uuid.UUID) *boxscore.Stats {
	return s.defense().StatsFor(player)
}

func (s *State) recordBatterEvent(f func(*boxscore.Stats)) error {
	batter, err := s.batter()
	if err != nil {
		return err
	}
	f(s.offenseStats(batter))
	return nil
}

func (s *State) recordRunnerEvent(runnerID uuid.UUID, f func(*boxscore.Stats)) {
	f(s.offenseStats(runnerID))
}

func (s *State) recordPitcherEvent(f func(*boxscore.Stats)) {
	f(s.defenseStats(s.pitcher()))
}

func (s *State) risp() bool {
	return s.onBaseStartOfPlay.risp()
}

// runsCmp compares away runs to home runs: negative if away trails,
// zero if tied, positive if away leads.
func (s *State) runsCmp() int {
	switch diff := s.game.Away.Runs() - s.game.Home.Runs(); {
	case diff < 0:
		return -1
	case diff > 0:
		return 1
	}
	return 0
}
