package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/erfannorozi54/highest-voice/core"
)

// Read views return copies. They are convenience projections for
// external observers and never mutate engine state.

// StatusSnapshot aggregates the current auction's position for
// automation and dashboards.
type StatusSnapshot struct {
	AuctionID       uint64
	Phase           core.Phase
	StartTime       int64
	CommitEnd       int64
	RevealEnd       int64
	Processed       int
	Total           int
	NeedsSettlement bool
	Now             int64
}

// Status returns a point-in-time view of the current auction.
func (e *Engine) Status() StatusSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.current
	now := e.clock.Now()
	total := st.cursor.Total
	if !st.settling {
		total = len(st.order)
	}
	return StatusSnapshot{
		AuctionID:       st.auction.ID,
		Phase:           core.PhaseAt(st.auction, now),
		StartTime:       st.auction.StartTime,
		CommitEnd:       st.auction.CommitEnd,
		RevealEnd:       st.auction.RevealEnd,
		Processed:       st.cursor.Processed,
		Total:           total,
		NeedsSettlement: now >= st.auction.RevealEnd,
		Now:             now,
	}
}

// CurrentAuctionID returns the id of the auction accepting commits
// or reveals (or awaiting settlement).
func (e *Engine) CurrentAuctionID() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.auction.ID
}

// CountdownEnd returns the unix second at which the current phase
// window closes.
func (e *Engine) CountdownEnd() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return core.CountdownEnd(e.current.auction, e.clock.Now())
}

// AuctionInfo returns the schedule and settlement flags of any known
// auction, current or settled.
func (e *Engine) AuctionInfo(id uint64) (core.Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == e.current.auction.ID {
		return e.current.auction, nil
	}
	if a, ok := e.history[id]; ok {
		return a, nil
	}
	return core.Auction{}, ErrUnknownAuction
}

// AuctionResult returns a settled auction's outcome. Asking for an
// auction that has not settled yet fails with ErrNotSettled.
func (e *Engine) AuctionResult(id uint64) (core.Auction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if a, ok := e.history[id]; ok {
		return a, nil
	}
	if id == e.current.auction.ID {
		return core.Auction{}, ErrNotSettled
	}
	return core.Auction{}, ErrUnknownAuction
}

// SettlementProgress returns the cursor position for an auction.
func (e *Engine) SettlementProgress(id uint64) (core.SettlementCursor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.current
	if id == st.auction.ID {
		c := st.cursor
		if !st.settling {
			c.Total = len(st.order)
		}
		return c, nil
	}
	if c, ok := e.finalCursors[id]; ok {
		return c, nil
	}
	return core.SettlementCursor{}, ErrUnknownAuction
}

// WinnerPost returns the artifact minted for a settled auction.
func (e *Engine) WinnerPost(id uint64) (core.WinnerPost, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	post, ok := e.posts[id]
	if !ok {
		if a, settled := e.history[id]; settled && !a.HasWinner() {
			return core.WinnerPost{}, ErrNoWinner
		}
		return core.WinnerPost{}, ErrUnknownAuction
	}
	cp := *post
	cp.AmountPaid = new(big.Int).Set(post.AmountPaid)
	cp.TipsReceived = new(big.Int).Set(post.TipsReceived)
	return cp, nil
}

// PendingReturn reports how much a bidder can claim from the failed
// payout escrow.
func (e *Engine) PendingReturn(addr common.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if owed, ok := e.pending[addr]; ok {
		return new(big.Int).Set(owed)
	}
	return new(big.Int)
}

// StatsOf returns a participant's lifetime stats.
func (e *Engine) StatsOf(addr common.Address) core.ParticipantStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.stats[addr]
	if !ok {
		return core.ParticipantStats{TotalSpend: new(big.Int)}
	}
	cp := *s
	cp.TotalSpend = new(big.Int).Set(s.TotalSpend)
	return cp
}

// TreasuryBalance returns accumulated auction proceeds and tip
// shares.
func (e *Engine) TreasuryBalance() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.treasuryBalance)
}

// TreasuryAddress returns the configured treasury recipient.
func (e *Engine) TreasuryAddress() common.Address {
	return e.treasury
}
