package main

import (
	"os"

	"github.com/fieldnotes/boxscore/internal/echo"
)

func main() {
	if err := RootCmd.Execute(); err != nil {
		echo.Error(err.Error())
		os.Exit(1)
	}
}
