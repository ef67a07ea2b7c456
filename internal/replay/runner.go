package replay

import "github.com/google/uuid"

// runner is one entry of the ordered on-base list: the runner's id,
// the pitcher to charge with an earned run if they score, and the
// minimum base they are known to occupy.
type runner struct {
	PlayerID    uuid.UUID
	PitcherID   uuid.UUID
	MinimumBase int
}

// onBaseList is an insertion-ordered map from runner id to (pitcher,
// minimum base), mirroring the reference engine's IndexMap<Uuid, (Uuid,
// u16)>: insert updates in place if the key exists (preserving its
// position), otherwise appends; remove preserves the order of survivors.
type onBaseList struct {
	entries []runner
}

func (l *onBaseList) insert(player, pitcher uuid.UUID, minimumBase int) {
	for i := range l.entries {
		if l.entries[i].PlayerID == player {
			l.entries[i].PitcherID = pitcher
			l.entries[i].MinimumBase = minimumBase
			return
		}
	}
	l.entries = append(l.entries, runner{PlayerID: player, PitcherID: pitcher, MinimumBase: minimumBase})
}

func (l *onBaseList) remove(player uuid.UUID) (runner, bool) {
	for i := range l.entries {
		if l.entries[i].PlayerID == player {
			r := l.entries[i]
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return r, true
		}
	}
	return runner{}, false
}

// popLast drops the most recently inserted runner.
func (l *onBaseList) popLast() {
	if n := len(l.entries); n > 0 {
		l.entries = l.entries[:n-1]
	}
}

func (l *onBaseList) clear() {
	l.entries = nil
}

func (l *onBaseList) len() int {
	return len(l.entries)
}

func (l *onBaseList) clone() onBaseList {
	out := onBaseList{entries: make([]runner, len(l.entries))}
	copy(out.entries, l.entries)
	return out
}

func (l *onBaseList) has(player uuid.UUID) bool {
	for _, r := range l.entries {
		if r.PlayerID == player {
			return true
		}
	}
	return false
}

// fixMinimumBase walks the list from most-recently-inserted to least,
// enforcing that each earlier (older) runner's minimum base is at
// least as large as the one after it. First base is exclusive (a new
// runner at base 0 trailing another runner at base 0 bumps the older
// one to base 1); every other base ties are allowed, since multiple
// runners can legitimately share a minimum base after certain plays.
func (l *onBaseList) fixMinimumBase() {
	n := len(l.entries)
	if n == 0 {
		return
	}
	last := l.entries[n-1].MinimumBase
	for i := n - 2; i >= 0; i-- {
		base := l.entries[i].MinimumBase
		if base <= last {
			if last == 0 {
				base = 1
			} else {
				base = last
			}
		}
		l.entries[i].MinimumBase = base
		last = base
	}
}

// risp reports whether any runner in the list is in scoring position,
// i.e. on second base or beyond (minimum_base >= 1, where 0 is first).
func (l *onBaseList) risp() bool {
	for _, r := range l.entries {
		if r.MinimumBase >= 1 {
			return true
		}
	}
	return false
}
