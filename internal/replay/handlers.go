package replay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldnotes/boxscore/internal/boxscore"
	"github.com/fieldnotes/boxscore/internal/feed"
	"github.com/fieldnotes/boxscore/internal/replay/errs"
)

func (s *State) dispatch(ctx context.Context, event *feed.Event) error {
	desc := event.Description

	switch event.Kind {
	case 0:
		return s.startEvent(ctx, event)
	case 1:
		return nil // "Play ball!"
	case 2:
		return s.nextHalfInning()
	case 3:
		return s.pitcherChange(event)
	case 4:
		return s.stolenBase(event)
	case 5:
		ok, err := s.walk(event)
		if err != nil {
			return err
		}
		return checkdesc(ok, desc)
	case 6:
		if !feed.IsStrikeout(desc) {
			return checkdesc(false, desc)
		}
		if err := s.recordBatterEvent(func(st *boxscore.Stats) { st.StrikeOuts++ }); err != nil {
			return err
		}
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.StruckOuts++ })
		return s.batterOut()
	case 7, 8:
		if feed.IsFieldersChoiceReach(desc) {
			return nil
		}
		if !(feed.IsFlyout(desc) || feed.IsGroundOut(desc) ||
			containsOutAt(desc) || feed.IsDoublePlay(desc)) {
			return checkdesc(false, desc)
		}
		return s.fieldedOut(event)
	case 9:
		ok, err := s.homeRun(event)
		if err != nil {
			return err
		}
		return checkdesc(ok, desc)
	case 10:
		if feed.IsSacrificeAdvance(desc) {
			return s.sac(event)
		}
		ok, err := s.hit(event)
		if err != nil {
			return err
		}
		return checkdesc(ok, desc)
	case 11:
		return s.gameOver(event)
	case 12:
		return s.plateAppearanceStart(event)
	case 13:
		if !feed.IsStrike(desc) {
			return checkdesc(false, desc)
		}
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.StrikesPitched++ })
		return nil
	case 14:
		if !feed.IsBall(desc) {
			return checkdesc(false, desc)
		}
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.BallsPitched++ })
		return nil
	case 15:
		if !feed.IsFoulBall(desc) {
			return checkdesc(false, desc)
		}
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.StrikesPitched++ })
		return nil
	case 20, 23, 24, 28, 41, 46, 47, 54, 73, 84,
		106, 107, 146, 147, 117, 118, 119, 125, 137,
		193, 209, 216, 223, 252, 262, 263, 264, 265:
		return nil // cosmetic or flavor text
	case 62:
		if desc != feed.MessageFlood {
			return checkdesc(false, desc)
		}
		s.onBase.clear()
		return nil
	case 113:
		return s.trade(event)
	case 114:
		return s.swap(event)
	case 116:
		return s.incineration(event)
	case 130, 131:
		return s.reverbLineup(ctx, event)
	case 132:
		if !(desc == "" || hasSuffix(desc, feed.SuffixRotationShuffled)) {
			return checkdesc(false, desc)
		}
		return nil // a following kind-3 names the new pitcher
	case 214, 215:
		return s.teamWinsGame(event)
	case 261:
		if !hasSuffix(desc, feed.SuffixDoubleStrike) {
			return checkdesc(false, desc)
		}
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.StrikesPitched++ })
		return nil
	default:
		return errs.NewStructuralMismatchError(fmt.Sprintf("unexpected event type %d", event.Kind))
	}
}

func checkdesc(ok bool, desc string) error {
	if ok {
		return nil
	}
	return errs.NewStructuralMismatchError(fmt.Sprintf("unexpected event description: %q", desc))
}

func containsOutAt(desc string) bool {
	_, ok := feed.FieldersChoiceRunner(desc)
	return ok
}

func hasSuffix(s, suffix string) bool { return strings.HasSuffix(s, suffix) }

func hasPrefix(s, prefix string) bool { return strings.HasPrefix(s, prefix) }

func contains(s, substr string) bool { return strings.Contains(s, substr) }

func (s *State) startEvent(ctx context.Context, event *feed.Event) error {
	s.game.Day = int(event.Day)

	if len(event.TeamTags) != 2 {
		return errs.NewStructuralMismatchError("invalid team tag count")
	}
	s.game.Away.ID = event.TeamTags[0]
	s.game.Home.ID = event.TeamTags[1]

	for _, team := range s.game.Teams() {
		data, err := s.rosterLoader.Load(ctx, team.ID, event.Created)
		if err != nil {
			return errs.NewUpstreamError("roster load at game start", err)
		}
		team.Name = data.FullName
		team.Nickname = data.Nickname
		team.Shorthand = data.Shorthand
		team.Emoji = data.Emoji
		for _, player := range data.Lineup {
			team.Lineup = append(team.Lineup, []uuid.UUID{player})
		}
	}

	return nil
}

func (s *State) nextHalfInning() error {
	s.offense().LeftOnBase += s.onBase.len()

	if s.gameStarted {
		s.topOfInning = !s.topOfInning
		if s.topOfInning {
			s.inning++
		}
	} else {
		s.gameStarted = true
	}

	s.offense().InningRuns[s.inning] = 0
	s.halfInningOuts = 0
	s.onBase.clear()

	return nil
}

func (s *State) pitcherChange(event *feed.Event) error {
	if err := s.ensurePitchersKnown(); err != nil {
		return err
	}

	name, ok := feed.NowPitchingName(event.Description)
	if !ok {
		return checkdesc(false, event.Description)
	}
	if len(event.PlayerTags) != 1 {
		return errs.NewStructuralMismatchError("invalid player tag count")
	}

	oldPitcher := s.pitcher()
	defense := s.defense()
	if len(defense.Pitchers) == 1 && s.defenseStats(oldPitcher).OutsRecorded < 15 {
		defense.PitcherOfRecord = boxscore.Zero
	}

	defense.Pitchers = append(defense.Pitchers, event.PlayerTags[0])
	defense.PlayerNames[event.PlayerTags[0]] = name

	s.updateSaveSituation()
	return nil
}

func (s *State) stolenBase(event *feed.Event) error {
	desc := event.Description
	if !(feed.IsCaughtStealing(desc) || feed.IsStolenBase(desc)) {
		return checkdesc(false, desc)
	}
	if len(event.PlayerTags) != 1 {
		return errs.NewStructuralMismatchError("invalid player tag count")
	}
	s.rbiCredit = nil

	runner := event.PlayerTags[0]
	if feed.IsCaughtStealing(desc) {
		s.recordRunnerEvent(runner, func(st *boxscore.Stats) { st.CaughtStealing++ })
		s.halfInningOuts++
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.OutsRecorded++ })
		if _, ok := s.onBase.remove(runner); !ok {
			return errs.NewAttributionFailureError("runner caught stealing wasn't on base")
		}
		return nil
	}

	s.recordRunnerEvent(runner, func(st *boxscore.Stats) { st.StolenBases++ })
	if hasSuffix(desc, feed.SuffixStealsFourth) {
		return s.creditRun(runner)
	}
	return nil
}

func (s *State) walk(event *feed.Event) (bool, error) {
	desc := event.Description
	if feed.IsWalk(desc) {
		batter, err := s.batter()
		if err != nil {
			return false, err
		}
		s.onBase.insert(batter, s.pitcher(), 0)
		s.onBase.fixMinimumBase()
		stats := s.offenseStats(batter)
		stats.PlateAppearances++
		stats.Walks++
		s.rbiCredit = s.atBat
		s.atBat = nil
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.BattersFaced++ })
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.WalksIssued++ })
		return true, nil
	}
	if feed.IsScoringEvent(desc) {
		if len(event.PlayerTags) != 2 {
			return false, errs.NewStructuralMismatchError("invalid player tag count")
		}
		return true, s.creditRun(event.PlayerTags[1])
	}
	return false, nil
}

func (s *State) fieldedOut(event *feed.Event) error {
	desc := event.Description

	switch {
	case containsOutAt(desc):
		name, _ := feed.FieldersChoiceRunner(desc)
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.GroundoutsPitched++ })
		out, err := s.resolveOffensePlayerByName(name)
		if err != nil {
			return err
		}
		removed, ok := s.onBase.remove(out)
		if !ok {
			return errs.NewAttributionFailureError("baserunner out in fielder's choice not on base")
		}
		batter, err := s.batter()
		if err != nil {
			return err
		}
		s.onBase.insert(batter, removed.PitcherID, 0)
		s.onBase.fixMinimumBase()

	case feed.IsDoublePlay(desc):
		s.halfInningOuts++
		s.rbiCredit = nil
		if err := s.recordBatterEvent(func(st *boxscore.Stats) { st.DoublePlaysGroundedInto++ }); err != nil {
			return err
		}
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.GroundoutsPitched++ })
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.OutsRecorded++ })

		batter, err := s.batter()
		if err != nil {
			return err
		}
		switch {
		case s.onBase.len() == 1:
			s.onBase.clear()
			s.offenseStats(batter).LeftOnBase++
		case s.halfInningOuts == 2:
			s.offenseStats(batter).LeftOnBase += s.onBase.len()
			s.offense().LeftOnBase += s.onBase.len()
			s.onBase.clear()
		default:
			if event.BaseRunners == nil {
				return errs.NewAttributionFailureError("unable to determine runner out in double play")
			}
			stillOn := make(map[uuid.UUID]bool, len(event.BaseRunners))
			for _, id := range event.BaseRunners {
				stillOn[id] = true
			}
			var out uuid.UUID
			found := false
			for i := len(s.onBase.entries) - 1; i >= 0; i-- {
				candidate := s.onBase.entries[i].PlayerID
				if !stillOn[candidate] {
					out = candidate
					found = true
					break
				}
			}
			if !found {
				return errs.NewAttributionFailureError("unable to determine runner out in double play")
			}
			s.onBase.remove(out)
			s.offenseStats(batter).LeftOnBase++
		}

	case feed.IsFlyout(desc):
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.FlyoutsPitched++ })
		if s.atBat != nil {
			s.lastFieldedOut = &firedOut{Kind: event.Kind, Batter: *s.atBat}
		}

	case feed.IsGroundOut(desc):
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.GroundoutsPitched++ })
		if s.atBat != nil {
			s.lastFieldedOut = &firedOut{Kind: event.Kind, Batter: *s.atBat}
		}

	default:
		return errs.NewStructuralMismatchError("fielded out description matched no known shape")
	}

	return s.batterOut()
}

func (s *State) resolveOffensePlayerByName(name string) (uuid.UUID, error) {
	table := feed.NewNameTable(s.offense().PlayerNames)
	id, err := table.Lookup(name)
	if err != nil {
		return uuid.UUID{}, errs.NewAttributionFailureError(err.Error())
	}
	return id, nil
}

func (s *State) batterOut() error {
	s.halfInningOuts++
	batter, err := s.batter()
	if err != nil {
		return err
	}
	stats := s.offenseStats(batter)
	stats.LeftOnBase += s.onBase.len()
	stats.PlateAppearances++
	stats.AtBats++
	if s.risp() {
		stats.AtBatsWithRISP++
	}
	s.atBat = nil
	s.recordPitcherEvent(func(st *boxscore.Stats) { st.BattersFaced++ })
	s.recordPitcherEvent(func(st *boxscore.Stats) { st.StrikesPitched++ })
	s.recordPitcherEvent(func(st *boxscore.Stats) { st.OutsRecorded++ })
	return nil
}

func (s *State) creditRun(runnerID uuid.UUID) error {
	removed, ok := s.onBase.remove(runnerID)
	if !ok {
		return errs.NewAttributionFailureError("cannot determine pitcher to charge with earned run")
	}
	s.offense().InningRuns[s.inning]++
	s.recordRunnerEvent(runnerID, func(st *boxscore.Stats) { st.Runs++ })
	if s.rbiCredit != nil {
		s.recordRunnerEvent(*s.rbiCredit, func(st *boxscore.Stats) { st.RunsBattedIn++ })
	}
	s.defenseStats(removed.PitcherID).EarnedRuns++

	runsCmp := s.runsCmp()
	if runsCmp != s.lastRunsCmp && runsCmp != 0 {
		s.offense().PitcherOfRecord = s.offense().CurrentPitcher()
		s.defense().PitcherOfRecord = s.defense().CurrentPitcher()
	}

	return nil
}

func (s *State) homeRun(event *feed.Event) (bool, error) {
	ok, err := s.hit(event)
	if err != nil || !ok {
		return ok, err
	}

	onBase := s.onBase.clone()
	s.onBase.clear()
	for _, r := range onBase.entries {
		if err := s.creditRun(r.PlayerID); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *State) hit(event *feed.Event) (bool, error) {
	desc := event.Description

	common := func(base int) (bool, error) {
		batter, err := s.batter()
		if err != nil {
			return false, err
		}
		s.onBase.insert(batter, s.pitcher(), base)
		s.onBase.fixMinimumBase()
		stats := s.offenseStats(batter)
		stats.PlateAppearances++
		stats.AtBats++
		if s.risp() {
			stats.AtBatsWithRISP++
			stats.HitsWithRISP++
		}
		s.rbiCredit = s.atBat
		s.atBat = nil
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.BattersFaced++ })
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.StrikesPitched++ })
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.HitsAllowed++ })
		s.updateSaveSituation()
		return true, nil
	}

	switch {
	case event.Kind == 9 && feed.IsHomeRun(desc):
		if err := s.recordBatterEvent(func(st *boxscore.Stats) { st.HomeRuns++ }); err != nil {
			return false, err
		}
		s.recordPitcherEvent(func(st *boxscore.Stats) { st.HomeRunsAllowed++ })
		return common(3)
	case event.Kind == 10 && feed.HitBase(desc) == 0:
		if err := s.recordBatterEvent(func(st *boxscore.Stats) { st.Singles++ }); err != nil {
			return false, err
		}
		return common(0)
	case event.Kind == 10 && feed.HitBase(desc) == 1:
		if err := s.recordBatterEvent(func(st *boxscore.Stats) { st.Doubles++ }); err != nil {
			return false, err
		}
		return common(1)
	case event.Kind == 10 && feed.HitBase(desc) == 2:
		if err := s.recordBatterEvent(func(st *boxscore.Stats) { st.Triples++ }); err != nil {
			return false, err
		}
		return common(2)
	case feed.IsScoringEvent(desc):
		if len(event.PlayerTags) != 1 {
			return false, errs.NewStructuralMismatchError("invalid player tag count")
		}
		return true, s.creditRun(event.PlayerTags[0])
	default:
		return false, nil
	}
}

func (s *State) sac(event *feed.Event) error {
	if len(event.PlayerTags) != 1 {
		return errs.NewStructuralMismatchError("invalid player tag count")
	}
	if err := s.creditRun(event.PlayerTags[0]); err != nil {
		return err
	}

	if s.lastFieldedOut == nil {
		return errs.NewAttributionFailureError("sac advance without a prior fielded out")
	}
	lastKind, batter := s.lastFieldedOut.Kind, s.lastFieldedOut.Batter
	risp := s.risp()
	stats := s.offenseStats(batter)

	switch lastKind {
	case 7:
		stats.Sacrifices++
	case 8:
		stats.Sacrifices++
	default:
		return errs.NewInvariantViolationError("sac advance following an unexpected fielded-out kind")
	}
	stats.RunsBattedIn++
	stats.AtBats--
	if risp {
		stats.AtBatsWithRISP--
	}

	return nil
}

func (s *State) gameOver(event *feed.Event) error {
	s.gameFinished = true
	for _, team := range s.game.Teams() {
		finisher := team.CurrentPitcher()
		stats := team.StatsFor(finisher)
		stats.GamesFinished = 1
		if stats.GamesStarted > 0 {
			stats.CompleteGames = 1
			if stats.EarnedRuns == 0 {
				stats.Shutouts = 1
				if stats.HitsAllowed == 0 {
					stats.NoHitters = 1
					if stats.WalksIssued == 0 {
						stats.PerfectGames = 1
					}
				}
			}
		}
	}
	return nil
}

func (s *State) plateAppearanceStart(event *feed.Event) error {
	if len(event.PlayerTags) != 1 {
		return errs.NewStructuralMismatchError("invalid player tag count")
	}
	name, ok := feed.BattingForName(event.Description)
	if !ok {
		return checkdesc(false, event.Description)
	}
	batter := event.PlayerTags[0]
	s.offense().PlayerNames[batter] = name
	s.atBat = &batter

	pitcher := s.pitcher()
	if s.defenseStats(pitcher).BattersFaced == 0 {
		s.updateSaveSituation()
	}
	return nil
}

func (s *State) trade(event *feed.Event) error {
	if !hasSuffix(event.Description, feed.SuffixSwappedFeedback) {
		return checkdesc(false, event.Description)
	}
	if err := s.ensurePitchersKnown(); err != nil {
		return err
	}
	if event.Metadata.Extra == nil || event.Metadata.Extra.Kind != feed.ExtraTrade {
		return errs.NewStructuralMismatchError("missing player trade data")
	}
	trade := event.Metadata.Extra.Trade

	for _, team := range s.game.Teams() {
		switch team.ID {
		case trade.ATeamID:
			team.PlayerNames[trade.BPlayerID] = trade.BPlayerName
		case trade.BTeamID:
			team.PlayerNames[trade.APlayerID] = trade.APlayerName
		}
		team.SwapOntoPositions(trade.APlayerID, trade.BPlayerID)
	}

	if s.atBat != nil {
		switch *s.atBat {
		case trade.APlayerID:
			s.atBat = &trade.BPlayerID
		case trade.BPlayerID:
			s.atBat = &trade.APlayerID
		}
	}

	return nil
}

func (s *State) swap(event *feed.Event) error {
	desc := event.Description
	if !(hasSuffix(desc, feed.SuffixSwappedRoster) || hasSuffix(desc, feed.SuffixShuffledReverb)) {
		return checkdesc(false, desc)
	}
	if err := s.ensurePitchersKnown(); err != nil {
		return err
	}
	if event.Metadata.Extra == nil || event.Metadata.Extra.Kind != feed.ExtraSwap {
		return errs.NewStructuralMismatchError("missing player swap data")
	}
	swap := event.Metadata.Extra.Swap

	for _, team := range s.game.Teams() {
		if team.ID != swap.TeamID {
			continue
		}
		team.PlayerNames[swap.APlayerID] = swap.APlayerName
		team.PlayerNames[swap.BPlayerID] = swap.BPlayerName
		team.SwapOntoPositions(swap.APlayerID, swap.BPlayerID)
	}

	if s.atBat != nil {
		switch *s.atBat {
		case swap.APlayerID:
			s.atBat = &swap.BPlayerID
		case swap.BPlayerID:
			s.atBat = &swap.APlayerID
		}
	}

	return nil
}

func (s *State) incineration(event *feed.Event) error {
	desc := event.Description
	switch {
	case contains(desc, feed.SubstrReplacedIncinerate):
		if err := s.ensurePitchersKnown(); err != nil {
			return err
		}
		if event.Metadata.Extra == nil || event.Metadata.Extra.Kind != feed.ExtraIncineration {
			return errs.NewStructuralMismatchError("missing incineration replacement data")
		}
		replacement := event.Metadata.Extra.Incineration
		for _, team := range s.game.Teams() {
			if team.ID != replacement.TeamID {
				continue
			}
			team.PlayerNames[replacement.InPlayerID] = replacement.InPlayerName
			team.PushOntoPositionTopping(replacement.OutPlayerID, replacement.InPlayerID)
		}
		return nil
	case hasPrefix(desc, feed.PrefixReplacedBy):
		return nil // redundant event
	default:
		return checkdesc(false, desc)
	}
}

func (s *State) reverbLineup(ctx context.Context, event *feed.Event) error {
	for _, team := range s.game.Teams() {
		data, err := s.rosterLoader.Load(ctx, team.ID, event.Created.Add(time.Minute))
		if err != nil {
			return errs.NewUpstreamError("roster load for reverb shuffle", err)
		}
		if len(data.Lineup) != len(team.Lineup) {
			continue
		}
		for i, player := range data.Lineup {
			top := team.Lineup[i][len(team.Lineup[i])-1]
			if top != player {
				team.Lineup[i] = append(team.Lineup[i], player)
			}
		}
	}
	return nil
}

func (s *State) teamWinsGame(event *feed.Event) error {
	if !hasSuffix(event.Description, feed.SuffixCollectedWin) {
		return checkdesc(false, event.Description)
	}
	if len(event.TeamTags) != 1 {
		return errs.NewStructuralMismatchError("invalid team tag count")
	}
	for _, team := range s.game.Teams() {
		if team.ID == event.TeamTags[0] {
			team.Won = true
		}
	}
	if event.Kind == 215 {
		s.game.Kind = boxscore.KindPostseason
	}
	return nil
}

