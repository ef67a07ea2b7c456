package replay

// SaveTag classifies how close a lead is to blowing, evaluated from the
// defense's perspective whenever a new pitcher enters.
type SaveTag string

const (
	// SaveTagNone means either the defense isn't ahead, or it is ahead
	// by more than three runs with the tying run not on deck.
	SaveTagNone SaveTag = ""
	// SaveTagTyingRun means the runners on base plus one offensive run
	// would tie or retake the lead: the tying run is at least on deck.
	SaveTagTyingRun SaveTag = "tying_run"
	// SaveTagLeadThreeOrLess means the defense leads by three runs or
	// fewer, but the tying run is not yet on deck.
	SaveTagLeadThreeOrLess SaveTag = "lead_three_or_less"
)

// updateSaveSituation recomputes the save tag for the team currently on
// defense, given the runs scored so far and the runners presently on
// base against them. Called at pitcher entry and again the first time
// that pitcher faces a batter, since the runner count can change
// between the two.
func (s *State) updateSaveSituation() {
	defense := s.defense()
	offense := s.offense()
	idx := s.teamIndex(defense)

	defenseRuns := defense.Runs()
	offenseRuns := offense.Runs()

	if defenseRuns <= offenseRuns {
		s.saveSituation[idx] = SaveTagNone
		return
	}

	lead := defenseRuns - offenseRuns
	tyingRunAtLeastOnDeck := offenseRuns+1 >= defenseRuns || offenseRuns+s.onBase.len() >= defenseRuns

	switch {
	case tyingRunAtLeastOnDeck:
		s.saveSituation[idx] = SaveTagTyingRun
	case lead <= 3:
		s.saveSituation[idx] = SaveTagLeadThreeOrLess
	default:
		s.saveSituation[idx] = SaveTagNone
	}
}

// saveEligible reports whether a finishing pitcher with the given
// outs-recorded total qualifies for a save under the tag recorded for
// their team, per the save-situation rule.
func saveEligible(tag SaveTag, outsRecorded int) bool {
	switch tag {
	case SaveTagTyingRun:
		return outsRecorded >= 1
	case SaveTagLeadThreeOrLess:
		return outsRecorded >= 3
	default:
		return outsRecorded >= 9
	}
}
