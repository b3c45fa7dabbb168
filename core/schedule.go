package core

// Scheduling is pure integer arithmetic over unix seconds. The next
// auction's boundaries derive from the previous auction's scheduled
// reveal end, never from the time settlement actually executed, so
// cumulative drift across cycles is exactly zero.

// GenesisAuction returns auction 1, anchored at the engine's
// deployment time. The genesis instant is the only boundary taken
// from a wall clock.
func GenesisAuction(genesis int64) Auction {
	return Auction{
		ID:        1,
		StartTime: genesis,
		CommitEnd: genesis + CommitDuration,
		RevealEnd: genesis + AuctionDuration,
	}
}

// NextAuction returns auction N+1 scheduled immediately after prev.
// Its start time equals prev.RevealEnd exactly; when settlement ran
// late the new windows are simply already partially (or wholly) in
// the past.
func NextAuction(prev Auction) Auction {
	return Auction{
		ID:        prev.ID + 1,
		StartTime: prev.RevealEnd,
		CommitEnd: prev.RevealEnd + CommitDuration,
		RevealEnd: prev.RevealEnd + AuctionDuration,
	}
}

// PhaseAt reports which window the instant now falls in for auction a.
func PhaseAt(a Auction, now int64) Phase {
	switch {
	case now < a.CommitEnd:
		return PhaseCommit
	case now < a.RevealEnd:
		return PhaseReveal
	default:
		return PhaseRevealEnded
	}
}

// CountdownEnd returns the deadline of the currently running window:
// the commit end during the commit phase, the reveal end otherwise.
func CountdownEnd(a Auction, now int64) int64 {
	if PhaseAt(a, now) == PhaseCommit {
		return a.CommitEnd
	}
	return a.RevealEnd
}
