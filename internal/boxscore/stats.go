// Package boxscore holds the per-player and per-team box-score records
// the replay state machine fills in, plus the rate-stat methods derived
// from them.
package boxscore

import "github.com/fieldnotes/boxscore/internal/frac"

// Stats is a flat, componentwise-additive record of batting and
// pitching counters for one player in one game.
type Stats struct {
	// Batting
	PlateAppearances        int `json:"plateAppearances"`
	AtBats                  int `json:"atBats"`
	AtBatsWithRISP          int `json:"atBatsWithRisp"`
	HitsWithRISP            int `json:"hitsWithRisp"`
	Singles                 int `json:"singles"`
	Doubles                 int `json:"doubles"`
	Triples                 int `json:"triples"`
	HomeRuns                int `json:"homeRuns"`
	Runs                    int `json:"runs"`
	RunsBattedIn            int `json:"runsBattedIn"`
	Sacrifices              int `json:"sacrifices"`
	StolenBases             int `json:"stolenBases"`
	CaughtStealing          int `json:"caughtStealing"`
	StrikeOuts              int `json:"strikeOuts"`
	DoublePlaysGroundedInto int `json:"doublePlaysGroundedInto"`
	Walks                   int `json:"walks"`
	LeftOnBase              int `json:"leftOnBase"`

	// Pitching
	GamesStarted     int `json:"gamesStarted"`
	GamesFinished    int `json:"gamesFinished"`
	CompleteGames    int `json:"completeGames"`
	Shutouts         int `json:"shutouts"`
	NoHitters        int `json:"noHitters"`
	PerfectGames     int `json:"perfectGames"`
	Wins             int `json:"wins"`
	Losses           int `json:"losses"`
	Saves            int `json:"saves"`
	BattersFaced     int `json:"battersFaced"`
	OutsRecorded     int `json:"outsRecorded"`
	HitsAllowed      int `json:"hitsAllowed"`
	HomeRunsAllowed  int `json:"homeRunsAllowed"`
	EarnedRuns       int `json:"earnedRuns"`
	StruckOuts       int `json:"struckOuts"`
	WalksIssued      int `json:"walksIssued"`
	StrikesPitched   int `json:"strikesPitched"`
	BallsPitched     int `json:"ballsPitched"`
	FlyoutsPitched   int `json:"flyoutsPitched"`
	GroundoutsPitched int `json:"groundoutsPitched"`

	GamesBatted  int `json:"gamesBatted"`
	GamesPitched int `json:"gamesPitched"`
}

// Add returns the componentwise sum of two Stats records.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		PlateAppearances:        s.PlateAppearances + other.PlateAppearances,
		AtBats:                  s.AtBats + other.AtBats,
		AtBatsWithRISP:          s.AtBatsWithRISP + other.AtBatsWithRISP,
		HitsWithRISP:            s.HitsWithRISP + other.HitsWithRISP,
		Singles:                 s.Singles + other.Singles,
		Doubles:                 s.Doubles + other.Doubles,
		Triples:                 s.Triples + other.Triples,
		HomeRuns:                s.HomeRuns + other.HomeRuns,
		Runs:                    s.Runs + other.Runs,
		RunsBattedIn:            s.RunsBattedIn + other.RunsBattedIn,
		Sacrifices:              s.Sacrifices + other.Sacrifices,
		StolenBases:             s.StolenBases + other.StolenBases,
		CaughtStealing:          s.CaughtStealing + other.CaughtStealing,
		StrikeOuts:              s.StrikeOuts + other.StrikeOuts,
		DoublePlaysGroundedInto: s.DoublePlaysGroundedInto + other.DoublePlaysGroundedInto,
		Walks:                   s.Walks + other.Walks,
		LeftOnBase:              s.LeftOnBase + other.LeftOnBase,

		GamesStarted:      s.GamesStarted + other.GamesStarted,
		GamesFinished:     s.GamesFinished + other.GamesFinished,
		CompleteGames:     s.CompleteGames + other.CompleteGames,
		Shutouts:          s.Shutouts + other.Shutouts,
		NoHitters:         s.NoHitters + other.NoHitters,
		PerfectGames:      s.PerfectGames + other.PerfectGames,
		Wins:              s.Wins + other.Wins,
		Losses:            s.Losses + other.Losses,
		Saves:             s.Saves + other.Saves,
		BattersFaced:      s.BattersFaced + other.BattersFaced,
		OutsRecorded:      s.OutsRecorded + other.OutsRecorded,
		HitsAllowed:       s.HitsAllowed + other.HitsAllowed,
		HomeRunsAllowed:   s.HomeRunsAllowed + other.HomeRunsAllowed,
		EarnedRuns:        s.EarnedRuns + other.EarnedRuns,
		StruckOuts:        s.StruckOuts + other.StruckOuts,
		WalksIssued:       s.WalksIssued + other.WalksIssued,
		StrikesPitched:    s.StrikesPitched + other.StrikesPitched,
		BallsPitched:      s.BallsPitched + other.BallsPitched,
		FlyoutsPitched:    s.FlyoutsPitched + other.FlyoutsPitched,
		GroundoutsPitched: s.GroundoutsPitched + other.GroundoutsPitched,

		GamesBatted:  s.GamesBatted + other.GamesBatted,
		GamesPitched: s.GamesPitched + other.GamesPitched,
	}
}

// IsBatting reports whether this record shows any batting activity at
// all, the condition that earns a games_batted credit at Finish.
func (s Stats) IsBatting() bool {
	return s.PlateAppearances > 0
}

// IsPitching reports whether this record shows any pitching activity,
// the condition that earns a games_pitched credit at Finish.
func (s Stats) IsPitching() bool {
	return s.BattersFaced > 0 || s.OutsRecorded > 0 || s.StrikesPitched > 0 || s.BallsPitched > 0
}

// Hits returns the total of the four hit-type counters.
func (s Stats) Hits() int {
	return s.Singles + s.Doubles + s.Triples + s.HomeRuns
}

// TotalBases weights each hit type by bases gained.
func (s Stats) TotalBases() int {
	return s.Singles + 2*s.Doubles + 3*s.Triples + 4*s.HomeRuns
}

// BattingAverage is hits / at_bats.
func (s Stats) BattingAverage() frac.Fraction {
	return frac.New(int64(s.Hits()), uint64(s.AtBats))
}

// OnBasePercentage is (hits+walks) / (at_bats+walks+sacrifices).
func (s Stats) OnBasePercentage() frac.Fraction {
	return frac.New(int64(s.Hits()+s.Walks), uint64(s.AtBats+s.Walks+s.Sacrifices))
}

// SluggingPercentage is total_bases / at_bats.
func (s Stats) SluggingPercentage() frac.Fraction {
	return frac.New(int64(s.TotalBases()), uint64(s.AtBats))
}

// OnBasePlusSlugging is OBP + SLG.
func (s Stats) OnBasePlusSlugging() frac.Fraction {
	return s.OnBasePercentage().Add(s.SluggingPercentage())
}

// EarnedRunAverage is earned_runs * 27 / outs_recorded (earned runs
// allowed per 27 outs, i.e. per nine innings pitched).
func (s Stats) EarnedRunAverage() frac.Fraction {
	return frac.New(int64(s.EarnedRuns)*27, uint64(s.OutsRecorded))
}

// WHIP is (walks_issued+hits_allowed) * 3 / outs_recorded.
func (s Stats) WHIP() frac.Fraction {
	return frac.New(int64(s.WalksIssued+s.HitsAllowed)*3, uint64(s.OutsRecorded))
}

// InningsPitched formats outs_recorded as whole innings plus a
// thirds-of-an-inning remainder, e.g. 19 outs -> "6.1".
func (s Stats) InningsPitched() string {
	whole := s.OutsRecorded / 3
	rem := s.OutsRecorded % 3
	return itoa(whole) + "." + itoa(rem)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// PitchesStrikes formats "total-strikes", or "" if no pitches were
// thrown.
func (s Stats) PitchesStrikes() string {
	total := s.StrikesPitched + s.BallsPitched
	if total <= 0 {
		return ""
	}
	return itoa(total) + "-" + itoa(s.StrikesPitched)
}

// GroundoutsFlyouts formats "groundouts-flyouts", or "" if neither
// occurred.
func (s Stats) GroundoutsFlyouts() string {
	if s.GroundoutsPitched+s.FlyoutsPitched <= 0 {
		return ""
	}
	return itoa(s.GroundoutsPitched) + "-" + itoa(s.FlyoutsPitched)
}

// OPSPlus and ERAPlus are league-relative rate stats centered on 100.
// league is the aggregate Stats across every qualifying player in the
// same context (season, league) as s.

// OPSPlus computes 100 * player_OBP/league_OBP + 100 * player_SLG/league_SLG - 100,
// rounded to the nearest integer, the standard OPS+ formula.
func (s Stats) OPSPlus(league Stats) int {
	obpRatio := s.OnBasePercentage().Div(league.OnBasePercentage())
	slgRatio := s.SluggingPercentage().Div(league.SluggingPercentage())
	hundred := frac.FromInt(100)
	sum := obpRatio.Mul(hundred).Add(slgRatio.Mul(hundred)).Sub(hundred)
	return int(sum.Round())
}

// ERAPlus computes 100 * league_ERA/player_ERA, rounded to the nearest
// integer, the standard ERA+ formula (higher is better, unlike raw ERA).
func (s Stats) ERAPlus(league Stats) int {
	ratio := league.EarnedRunAverage().Div(s.EarnedRunAverage())
	return int(ratio.Mul(frac.FromInt(100)).Round())
}
