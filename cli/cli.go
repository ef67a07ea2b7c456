// Command boxscore assembles the replay toolkit's command-line interface.
package main

import (
	"github.com/spf13/cobra"

	"github.com/fieldnotes/boxscore/cmd"
	"github.com/fieldnotes/boxscore/internal/echo"
)

// RootCmd is the root command for the boxscore CLI.
var RootCmd = &cobra.Command{
	Use:   "boxscore",
	Short: "Deterministic box-score replay toolkit",
	Long: echo.HeaderStyle().Render("boxscore") + "\n\n" +
		"Replays a game's event feed into an authoritative box score and\n" +
		"commits it to the store.",
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "path to config file")
	RootCmd.AddCommand(cmd.ReplayCmd())
	RootCmd.AddCommand(cmd.DbCmd())
	RootCmd.AddCommand(cmd.CacheCmd())
}
