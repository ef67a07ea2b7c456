// Package orchestrator drives many games through the replay engine
// concurrently: fetching each game's feed, replaying it, and
// committing the result, bounded by a worker semaphore and a
// Redis-backed rate limiter shared across orchestrator processes.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"

	"github.com/fieldnotes/boxscore/internal/boxscore"
	"github.com/fieldnotes/boxscore/internal/feed"
	"github.com/fieldnotes/boxscore/internal/replay"
	"github.com/fieldnotes/boxscore/internal/replay/debuglog"
)

// Fetcher retrieves a game's ordered event feed; satisfied by
// *feed.Client in production and a fake in tests.
type Fetcher interface {
	FetchGame(ctx context.Context, gameID uuid.UUID) ([]*feed.Event, error)
}

// Committer persists replay results; satisfied by *store.Store in
// production and a fake in tests.
type Committer interface {
	HasGame(ctx context.Context, gameID uuid.UUID) (bool, error)
	CommitGame(ctx context.Context, game *boxscore.Game, log *debuglog.Log, names map[uuid.UUID]string) error
	CommitFailure(ctx context.Context, gameID uuid.UUID, log *debuglog.Log) error
}

// Orchestrator drives game replays end to end: fetch, replay, commit.
type Orchestrator struct {
	feed         Fetcher
	store        Committer
	rosterLoader replay.RosterLoader
	limiter      *redis_rate.Limiter
	sem          *semaphore.Weighted
	ratePerSec   int
}

// New builds an Orchestrator. concurrency bounds the number of games
// replayed at once; ratePerSec bounds upstream feed requests per
// second, shared across every orchestrator process via redisClient.
func New(feedClient Fetcher, st Committer, rosterLoader replay.RosterLoader, redisClient *redis.Client, concurrency, ratePerSec int) *Orchestrator {
	return &Orchestrator{
		feed:         feedClient,
		store:        st,
		rosterLoader: rosterLoader,
		limiter:      redis_rate.NewLimiter(redisClient),
		sem:          semaphore.NewWeighted(int64(concurrency)),
		ratePerSec:   ratePerSec,
	}
}

// RunGame replays one game and commits it, unless it is already
// committed and force is false. It blocks until a worker slot and a
// rate-limit token are both available.
func (o *Orchestrator) RunGame(ctx context.Context, sim string, season int, gameID uuid.UUID, force bool) error {
	if !force {
		committed, err := o.store.HasGame(ctx, gameID)
		if err != nil {
			return fmt.Errorf("check commit state for game %s: %w", gameID, err)
		}
		if committed {
			return nil
		}
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire worker slot for game %s: %w", gameID, err)
	}
	defer o.sem.Release(1)

	if err := o.throttle(ctx, "feed"); err != nil {
		return fmt.Errorf("rate limit feed fetch for game %s: %w", gameID, err)
	}

	events, err := o.feed.FetchGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("fetch game %s: %w", gameID, err)
	}
	if !feed.IsComplete(events) {
		return fmt.Errorf("feed for game %s is not yet complete", gameID)
	}

	state := replay.New(sim, season, gameID, o.rosterLoader)
	log := debuglog.New()

	for _, event := range events {
		before, err := state.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot game %s: %w", gameID, err)
		}
		if err := state.Push(ctx, event); err != nil {
			log.Fail(event.Description, err)
			if commitErr := o.store.CommitFailure(ctx, gameID, log); commitErr != nil {
				return fmt.Errorf("%w (and failed to commit debug log: %v)", err, commitErr)
			}
			return err
		}
		after, err := state.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot game %s: %w", gameID, err)
		}
		if diffErr := log.Record(event.Description, before, after); diffErr != nil {
			return fmt.Errorf("record debug log for game %s: %w", gameID, diffErr)
		}
	}

	game, err := state.Finish()
	if err != nil {
		log.Fail("finish", err)
		if commitErr := o.store.CommitFailure(ctx, gameID, log); commitErr != nil {
			return fmt.Errorf("%w (and failed to commit debug log: %v)", err, commitErr)
		}
		return err
	}

	names := collectNames(game)
	if err := o.store.CommitGame(ctx, game, log, names); err != nil {
		return fmt.Errorf("commit game %s: %w", gameID, err)
	}

	return nil
}

// RunSeason replays every game id in gameIDs concurrently, respecting
// the same worker and rate-limit bounds as RunGame. It collects every
// error rather than stopping at the first, so one bad game doesn't
// block the rest of the season.
func (o *Orchestrator) RunSeason(ctx context.Context, sim string, season int, gameIDs []uuid.UUID, force bool) []error {
	errs := make([]error, len(gameIDs))
	results := make(chan struct {
		i   int
		err error
	}, len(gameIDs))

	for i, id := range gameIDs {
		go func(i int, id uuid.UUID) {
			err := o.RunGame(ctx, sim, season, id, force)
			results <- struct {
				i   int
				err error
			}{i, err}
		}(i, id)
	}

	for range gameIDs {
		r := <-results
		errs[r.i] = r.err
	}

	return errs
}

func (o *Orchestrator) throttle(ctx context.Context, origin string) error {
	if o.ratePerSec <= 0 {
		return nil
	}
	for {
		res, err := o.limiter.Allow(ctx, "boxscore:ratelimit:"+origin, redis_rate.PerSecond(o.ratePerSec))
		if err != nil {
			return err
		}
		if res.Allowed > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(res.RetryAfter):
		}
	}
}

func collectNames(game *boxscore.Game) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string)
	for _, team := range game.Teams() {
		for id, name := range team.PlayerNames {
			names[id] = name
		}
	}
	return names
}
