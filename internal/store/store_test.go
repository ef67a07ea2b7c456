package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/fieldnotes/boxscore/internal/boxscore"
	"github.com/fieldnotes/boxscore/internal/replay/debuglog"
	"github.com/fieldnotes/boxscore/internal/testutils"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	root, err := testutils.GetProjectRoot()
	if err != nil {
		t.Fatalf("GetProjectRoot: %v", err)
	}

	ctx := context.Background()
	container, err := testutils.NewPostgresContainer(ctx,
		testutils.WithDatabase("boxscore_store_test"),
		testutils.WithMigrations(filepath.Join(root, "internal", "db", "sql")),
	)
	if err != nil {
		t.Fatalf("NewPostgresContainer: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("terminate container: %v", err)
		}
	})

	db, err := sql.Open("pgx", container.ConnStr)
	if err != nil {
		t.Fatalf("open pgx connection: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db)
}

func sampleGame() *boxscore.Game {
	away := boxscore.NewTeam()
	home := boxscore.NewTeam()
	pitcher := uuid.New()
	away.Pitchers[0] = pitcher
	away.PitcherOfRecord = pitcher
	away.Won = true
	away.StatsFor(pitcher).Wins = 1
	home.Pitchers[0] = uuid.New()
	home.PitcherOfRecord = home.Pitchers[0]

	return &boxscore.Game{
		Sim:    "s1",
		Season: 4,
		Day:    12,
		Kind:   boxscore.KindRegular,
		GameID: uuid.New(),
		Away:   away,
		Home:   home,
	}
}

func TestCommitGameIsRetrievable(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	game := sampleGame()
	log := debuglog.New()
	if err := log.Record("game start", map[string]int{}, map[string]int{}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	names := map[uuid.UUID]string{game.Away.Pitchers[0]: "Jessica Telephone"}

	if err := st.CommitGame(ctx, game, log, names); err != nil {
		t.Fatalf("CommitGame: %v", err)
	}

	has, err := st.HasGame(ctx, game.GameID)
	if err != nil {
		t.Fatalf("HasGame: %v", err)
	}
	if !has {
		t.Fatalf("expected game to be marked committed")
	}

	got, err := st.GetGame(ctx, game.GameID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Sim != game.Sim || got.Season != game.Season || got.Day != game.Day {
		t.Errorf("got %+v, want sim/season/day matching %+v", got, game)
	}
}

func TestCommitGameIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	game := sampleGame()
	log := debuglog.New()

	if err := st.CommitGame(ctx, game, log, nil); err != nil {
		t.Fatalf("first CommitGame: %v", err)
	}

	game.Day = 13
	if err := st.CommitGame(ctx, game, log, nil); err != nil {
		t.Fatalf("second CommitGame: %v", err)
	}

	got, err := st.GetGame(ctx, game.GameID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Day != 13 {
		t.Errorf("got day %d, want the re-committed value 13", got.Day)
	}
}

func TestCommitFailurePersistsLogWithoutGameRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	gameID := uuid.New()
	log := debuglog.New()
	log.Fail("event 4 (kind 2)", errors.New("unattributed baserunner"))

	if err := st.CommitFailure(ctx, gameID, log); err != nil {
		t.Fatalf("CommitFailure: %v", err)
	}

	has, err := st.HasGame(ctx, gameID)
	if err != nil {
		t.Fatalf("HasGame: %v", err)
	}
	if has {
		t.Errorf("expected a failed replay to leave no game_stats row")
	}
}

func TestGetGameMissingReturnsNoRows(t *testing.T) {
	st := newTestStore(t)
	_, err := st.GetGame(context.Background(), uuid.New())
	if err == nil {
		t.Fatalf("expected an error for a never-committed game")
	}
}
