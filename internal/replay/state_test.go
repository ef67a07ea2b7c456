package replay

import (
	"testing"

	"github.com/google/uuid"

	"github.com/fieldnotes/boxscore/internal/boxscore"
	"github.com/fieldnotes/boxscore/internal/feed"
	"github.com/fieldnotes/boxscore/internal/replay/errs"
)

func newState() *State {
	return New("s1", 1, uuid.New(), nil)
}

func TestCheckSequencingAcceptsExpectedOrdinal(t *testing.T) {
	s := newState()
	event := &feed.Event{Metadata: feed.Metadata{Play: 0, SubPlay: 0}}
	if err := s.checkSequencing(event); err != nil {
		t.Fatalf("checkSequencing: %v", err)
	}
}

func TestCheckSequencingRejectsOutOfOrderEvent(t *testing.T) {
	s := newState()
	event := &feed.Event{Metadata: feed.Metadata{Play: 5, SubPlay: 0}}
	err := s.checkSequencing(event)
	if !errs.IsStructuralMismatch(err) {
		t.Fatalf("got %v, want a structural mismatch error", err)
	}
}

func TestCheckSequencingToleratesEmptyEventResync(t *testing.T) {
	s := newState()
	// The expected ordinal is (0, 0); a kind-2 event one play ahead with
	// the same sub_play resynchronizes instead of failing.
	event := &feed.Event{Kind: 2, Metadata: feed.Metadata{Play: 1, SubPlay: 0}}
	if err := s.checkSequencing(event); err != nil {
		t.Fatalf("checkSequencing: %v", err)
	}
	if s.expectedPlay != 1 {
		t.Errorf("expectedPlay = %d, want 1 after resync", s.expectedPlay)
	}
}

func TestReconcileBaseRunnersAdvancesMinimumBase(t *testing.T) {
	s := newState()
	runnerID := uuid.New()
	s.onBase.entries = []runner{{PlayerID: runnerID, MinimumBase: 0}}

	event := &feed.Event{
		BaseRunners:   []uuid.UUID{runnerID},
		BasesOccupied: []uint16{2},
	}
	if err := s.reconcileBaseRunners(event); err != nil {
		t.Fatalf("reconcileBaseRunners: %v", err)
	}
	if s.onBase.entries[0].MinimumBase != 2 {
		t.Errorf("MinimumBase = %d, want 2", s.onBase.entries[0].MinimumBase)
	}
}

func TestReconcileBaseRunnersRejectsMissingRunner(t *testing.T) {
	s := newState()
	runnerID := uuid.New()
	s.onBase.entries = []runner{{PlayerID: runnerID, MinimumBase: 1}}

	event := &feed.Event{BaseRunners: nil, BasesOccupied: nil}
	// Nil snapshot on both sides is a no-op; this event doesn't
	// actually carry a baserunner snapshot to check against.
	if err := s.reconcileBaseRunners(event); err != nil {
		t.Fatalf("reconcileBaseRunners with no snapshot: %v", err)
	}

	event = &feed.Event{BaseRunners: []uuid.UUID{}, BasesOccupied: []uint16{}}
	err := s.reconcileBaseRunners(event)
	if !errs.IsAttributionFailure(err) {
		t.Fatalf("got %v, want an attribution failure for a runner missing from the snapshot", err)
	}
}

func TestReconcileBaseRunnersRejectsRegression(t *testing.T) {
	s := newState()
	runnerID := uuid.New()
	s.onBase.entries = []runner{{PlayerID: runnerID, MinimumBase: 2}}

	event := &feed.Event{
		BaseRunners:   []uuid.UUID{runnerID},
		BasesOccupied: []uint16{1},
	}
	err := s.reconcileBaseRunners(event)
	if !errs.IsInvariantViolation(err) {
		t.Fatalf("got %v, want an invariant violation for a runner moving backward", err)
	}
}

func TestFinishRejectsIncompleteGame(t *testing.T) {
	s := newState()
	_, err := s.Finish()
	if !errs.IsInvariantViolation(err) {
		t.Fatalf("got %v, want an invariant violation for an unfinished game", err)
	}
}

func TestFinishRejectsMatchingWinnerFlags(t *testing.T) {
	s := newState()
	s.gameFinished = true
	s.game.Away.Pitchers[0] = uuid.New()
	s.game.Home.Pitchers[0] = uuid.New()

	_, err := s.Finish()
	if !errs.IsInvariantViolation(err) {
		t.Fatalf("got %v, want an invariant violation when neither team is marked as winner", err)
	}
}

func TestSnapshotIsIndependentOfLaterMutation(t *testing.T) {
	s := newState()
	s.game.Day = 3

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	s.game.Day = 99
	if snap.Day != 3 {
		t.Errorf("snapshot.Day = %d, want 3 (unaffected by the later mutation)", snap.Day)
	}

	pitcher := uuid.New()
	s.game.Away.Stats[pitcher] = &boxscore.Stats{Wins: 1}
	if _, ok := snap.Away.Stats[pitcher]; ok {
		t.Errorf("snapshot shares the Stats map with the live game")
	}
}

func TestBackfillPitchersAssignsBothTeams(t *testing.T) {
	s := newState()
	away := uuid.New()
	home := uuid.New()
	awayName, homeName := "Away Pitcher", "Home Pitcher"

	event := &feed.Event{
		AwayPitcher:     &away,
		AwayPitcherName: &awayName,
		HomePitcher:     &home,
		HomePitcherName: &homeName,
	}

	if err := s.backfillPitchers(event); err != nil {
		t.Fatalf("backfillPitchers: %v", err)
	}
	if s.game.Away.Pitchers[0] != away || s.game.Home.Pitchers[0] != home {
		t.Fatalf("pitchers not assigned: away=%v home=%v", s.game.Away.Pitchers[0], s.game.Home.Pitchers[0])
	}
	if _, ok := s.game.Away.Stats[boxscore.Zero]; ok {
		t.Errorf("placeholder stats entry should have been moved off the zero id")
	}
	if s.game.Away.PlayerNames[away] != awayName {
		t.Errorf("away pitcher name = %q, want %q", s.game.Away.PlayerNames[away], awayName)
	}
}
