package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/fieldnotes/boxscore/internal/cache"
	"github.com/fieldnotes/boxscore/internal/echo"
	"github.com/fieldnotes/boxscore/internal/feed"
	"github.com/fieldnotes/boxscore/internal/orchestrator"
	"github.com/fieldnotes/boxscore/internal/roster"
	"github.com/fieldnotes/boxscore/internal/store"
)

// ReplayCmd creates the replay command group: replay one game or an
// entire season through the engine and commit the result.
func ReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay games into the commit store",
		Long:  "Fetch a game's event feed, replay it through the box-score engine, and commit the result.",
	}
	cmd.AddCommand(ReplayGameCmd())
	cmd.AddCommand(ReplaySeasonCmd())
	return cmd
}

// ReplayGameCmd replays a single game by id.
func ReplayGameCmd() *cobra.Command {
	var sim string
	var season int
	var force bool
	cmd := &cobra.Command{
		Use:   "game <game-id>",
		Short: "Replay one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid game id %q: %w", args[0], err)
			}

			orc, cleanup, err := buildOrchestrator(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			echo.Header("Replaying Game")
			echo.Infof("Game: %s", gameID)

			if err := orc.RunGame(cmd.Context(), sim, season, gameID, force); err != nil {
				return fmt.Errorf("error: %w", err)
			}

			echo.Successf("✓ Committed game %s", gameID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sim, "sim", "", "sim identifier the game belongs to")
	cmd.Flags().IntVar(&season, "season", 0, "season number the game belongs to")
	cmd.Flags().BoolVar(&force, "force", false, "replay even if already committed")
	return cmd
}

// ReplaySeasonCmd replays every game id passed positionally for a
// given sim and season, driving the orchestrator's bounded
// concurrency across all of them.
func ReplaySeasonCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "season <sim> <season> <game-id>...",
		Short: "Replay every listed game in a season",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := args[0]
			var season int
			if _, err := fmt.Sscanf(args[1], "%d", &season); err != nil {
				return fmt.Errorf("invalid season %q: %w", args[1], err)
			}

			gameIDs := make([]uuid.UUID, 0, len(args)-2)
			for _, raw := range args[2:] {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid game id %q: %w", raw, err)
				}
				gameIDs = append(gameIDs, id)
			}

			orc, cleanup, err := buildOrchestrator(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			echo.Header("Replaying Season")
			echo.Infof("Sim: %s  Season: %d  Games: %d", sim, season, len(gameIDs))

			errsOut := orc.RunSeason(cmd.Context(), sim, season, gameIDs, force)
			failed := 0
			for i, err := range errsOut {
				if err == nil {
					continue
				}
				failed++
				echo.Errorf("game %s: %v", gameIDs[i], err)
			}

			echo.Successf("✓ Replayed %d/%d games", len(gameIDs)-failed, len(gameIDs))
			if failed > 0 {
				return fmt.Errorf("%d game(s) failed to replay", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replay even if already committed")
	return cmd
}

func buildOrchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, func(), error) {
	cfg, err := loadConfigForCmd(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)

	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		redisClient.Close()
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	cacheClient := cache.NewClient(redisClient, cache.Config{
		App:     "boxscore",
		Env:     "prod",
		Version: cfg.Cache.Version,
		Enabled: cfg.Cache.Enabled,
		TTLs: cache.TTLConfig{
			Roster:   time.Duration(cfg.Cache.TTLs.Roster) * time.Second,
			Feed:     time.Duration(cfg.Cache.TTLs.Feed) * time.Second,
			Negative: time.Duration(cfg.Cache.TTLs.Negative) * time.Second,
		},
	})

	rosterLoader := roster.NewResolver(cacheClient, cfg.Feed.RosterURL, time.Duration(cfg.Cache.TTLs.Roster)*time.Second)
	feedClient := feed.NewClient(cfg.Feed.BaseURL)

	orc := orchestrator.New(feedClient, st, rosterLoader, redisClient, cfg.Orchestrator.Concurrency, cfg.Orchestrator.RateLimitPerSec)

	cleanup := func() {
		st.Close()
		redisClient.Close()
	}

	return orc, cleanup, nil
}
