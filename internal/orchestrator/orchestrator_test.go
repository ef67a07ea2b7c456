package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fieldnotes/boxscore/internal/boxscore"
	"github.com/fieldnotes/boxscore/internal/feed"
	"github.com/fieldnotes/boxscore/internal/replay/debuglog"
	"github.com/fieldnotes/boxscore/internal/roster"
)

type fakeFetcher struct {
	events []*feed.Event
	err    error
	calls  int
}

func (f *fakeFetcher) FetchGame(ctx context.Context, gameID uuid.UUID) ([]*feed.Event, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeCommitter struct {
	hasGame       bool
	hasGameErr    error
	commitErr     error
	commitFailErr error
	committed     []*boxscore.Game
	failures      []uuid.UUID
}

func (c *fakeCommitter) HasGame(ctx context.Context, gameID uuid.UUID) (bool, error) {
	return c.hasGame, c.hasGameErr
}

func (c *fakeCommitter) CommitGame(ctx context.Context, game *boxscore.Game, log *debuglog.Log, names map[uuid.UUID]string) error {
	if c.commitErr != nil {
		return c.commitErr
	}
	c.committed = append(c.committed, game)
	return nil
}

func (c *fakeCommitter) CommitFailure(ctx context.Context, gameID uuid.UUID, log *debuglog.Log) error {
	c.failures = append(c.failures, gameID)
	return c.commitFailErr
}

type fakeRosterLoader struct{}

func (fakeRosterLoader) Load(ctx context.Context, teamID uuid.UUID, at time.Time) (*roster.Roster, error) {
	return nil, errors.New("roster lookups are not exercised by these cases")
}

func newTestOrchestrator(fetcher Fetcher, committer Committer) *Orchestrator {
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	return New(fetcher, committer, fakeRosterLoader{}, redisClient, 4, 0)
}

func TestRunGameSkipsAlreadyCommittedUnlessForced(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("fetch should not be called")}
	committer := &fakeCommitter{hasGame: true}
	orc := newTestOrchestrator(fetcher, committer)

	gameID := uuid.New()
	if err := orc.RunGame(context.Background(), "sim1", 1, gameID, false); err != nil {
		t.Fatalf("RunGame: %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("expected fetch to be skipped for an already-committed game, got %d calls", fetcher.calls)
	}
}

func TestRunGameForceRefetchesEvenWhenCommitted(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream unavailable")}
	committer := &fakeCommitter{hasGame: true}
	orc := newTestOrchestrator(fetcher, committer)

	err := orc.RunGame(context.Background(), "sim1", 1, uuid.New(), true)
	if err == nil {
		t.Fatalf("expected an error once force bypasses the commit check")
	}
	if fetcher.calls != 1 {
		t.Errorf("expected exactly one fetch attempt, got %d", fetcher.calls)
	}
}

func TestRunGamePropagatesFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream timed out")}
	committer := &fakeCommitter{}
	orc := newTestOrchestrator(fetcher, committer)

	err := orc.RunGame(context.Background(), "sim1", 1, uuid.New(), false)
	if err == nil {
		t.Fatalf("expected fetch failure to propagate")
	}
	if len(committer.committed) != 0 {
		t.Errorf("expected no commit on fetch failure")
	}
}

func TestRunGameRejectsIncompleteFeed(t *testing.T) {
	fetcher := &fakeFetcher{events: []*feed.Event{
		{ID: uuid.New(), Kind: 1, Metadata: feed.Metadata{Play: 0, SubPlay: 0, SiblingIDs: []uuid.UUID{uuid.New()}}},
	}}
	committer := &fakeCommitter{}
	orc := newTestOrchestrator(fetcher, committer)

	err := orc.RunGame(context.Background(), "sim1", 1, uuid.New(), false)
	if err == nil {
		t.Fatalf("expected an error for a feed missing its terminal event")
	}
	if len(committer.committed) != 0 || len(committer.failures) != 0 {
		t.Errorf("expected no commit attempt for an incomplete feed")
	}
}

func TestRunSeasonCollectsErrorsByIndex(t *testing.T) {
	skippedGame := uuid.New()
	failingGame := uuid.New()

	fetcher := &fakeFetcher{err: errors.New("feed not found")}
	committer := &perGameCommitter{committed: map[uuid.UUID]bool{skippedGame: true}}
	orc := newTestOrchestrator(fetcher, committer)

	gameIDs := []uuid.UUID{skippedGame, failingGame}
	errs := orc.RunSeason(context.Background(), "sim1", 1, gameIDs, false)

	if len(errs) != 2 {
		t.Fatalf("got %d results, want 2", len(errs))
	}
	if errs[0] != nil {
		t.Errorf("expected the already-committed game to report no error, got %v", errs[0])
	}
	if errs[1] == nil {
		t.Errorf("expected the uncommitted, unfetchable game to report an error")
	}
}

// perGameCommitter reports only the game ids present (and true) in
// committed as already committed; everything else is new.
type perGameCommitter struct {
	committed map[uuid.UUID]bool
}

func (c *perGameCommitter) HasGame(ctx context.Context, gameID uuid.UUID) (bool, error) {
	return c.committed[gameID], nil
}

func (c *perGameCommitter) CommitGame(ctx context.Context, game *boxscore.Game, log *debuglog.Log, names map[uuid.UUID]string) error {
	return nil
}

func (c *perGameCommitter) CommitFailure(ctx context.Context, gameID uuid.UUID, log *debuglog.Log) error {
	return nil
}
