package boxscore

import "github.com/google/uuid"

// Kind distinguishes regular-season play from postseason and special
// exhibition games.
type Kind int

const (
	KindRegular Kind = iota
	KindPostseason
	KindSpecial
)

// Game is the finished, committed record for one game: two Teams plus
// the season/day/kind descriptor that places it in context.
type Game struct {
	Sim    string    `json:"sim"`
	Season int       `json:"season"`
	Day    int       `json:"day"`
	Kind   Kind      `json:"kind"`
	GameID uuid.UUID `json:"gameId"`

	Away *Team `json:"away"`
	Home *Team `json:"home"`
}

// Teams returns both teams, away then home, for iteration where the
// distinction between offense/defense doesn't matter.
func (g *Game) Teams() []*Team {
	return []*Team{g.Away, g.Home}
}
